package factory

import (
	"strings"
	"testing"

	"github.com/regscrub/runtime/internal/modules/stage"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/pkg/pipeline"
)

func TestCreateInputModule(t *testing.T) {
	m, err := CreateInputModule(&pipeline.ModuleConfig{
		Type:   "csv",
		Config: map[string]interface{}{"path": "data.csv"},
	})
	if err != nil {
		t.Fatalf("CreateInputModule: %v", err)
	}
	if m == nil {
		t.Fatal("expected module, got nil")
	}
}

func TestCreateInputModuleNilConfig(t *testing.T) {
	m, err := CreateInputModule(nil)
	if err != nil {
		t.Fatalf("CreateInputModule(nil): %v", err)
	}
	if m != nil {
		t.Error("expected nil module for nil config")
	}
}

func TestCreateInputModuleUnknownType(t *testing.T) {
	_, err := CreateInputModule(&pipeline.ModuleConfig{Type: "carrierPigeon"})
	if err == nil {
		t.Fatal("expected error for unknown input type")
	}
	if !strings.Contains(err.Error(), "carrierPigeon") {
		t.Errorf("error %q does not name the unknown type", err)
	}
}

func TestCreateOutputModule(t *testing.T) {
	m, err := CreateOutputModule(&pipeline.ModuleConfig{
		Type: "csv",
		Config: map[string]interface{}{
			"acceptedPath": "accepted.csv",
			"rejectedPath": "rejected.csv",
		},
	})
	if err != nil {
		t.Fatalf("CreateOutputModule: %v", err)
	}
	if m == nil {
		t.Fatal("expected module, got nil")
	}
}

func TestCreateOutputModuleUnknownType(t *testing.T) {
	if _, err := CreateOutputModule(&pipeline.ModuleConfig{Type: "teletype"}); err == nil {
		t.Fatal("expected error for unknown output type")
	}
}

func TestDefaultStagesOrder(t *testing.T) {
	modules, err := DefaultStages(record.NewDiscardLog())
	if err != nil {
		t.Fatalf("DefaultStages: %v", err)
	}

	want := []string{
		stage.TypePrune,
		stage.TypeTimeSplit,
		stage.TypeNameCase,
		stage.TypeMissingName,
		stage.TypeDigitName,
		stage.TypeSpecialCharName,
		stage.TypeRegistrationComplete,
		stage.TypeNumericPhone,
	}
	if len(modules) != len(want) {
		t.Fatalf("got %d stages, want %d", len(modules), len(want))
	}
	for i, m := range modules {
		if m.Name() != want[i] {
			t.Errorf("stage[%d] = %q, want %q", i, m.Name(), want[i])
		}
	}
}

func TestDefaultStagesNilDiscardLog(t *testing.T) {
	if _, err := DefaultStages(nil); err == nil {
		t.Fatal("expected error for nil discard log")
	}
}

func TestCreateStageModulesEmptyUsesDefault(t *testing.T) {
	modules, err := CreateStageModules(nil, record.NewDiscardLog())
	if err != nil {
		t.Fatalf("CreateStageModules: %v", err)
	}
	if len(modules) != 8 {
		t.Errorf("got %d stages, want the 8 default stages", len(modules))
	}
}

func TestCreateStageModulesExplicitChain(t *testing.T) {
	cfgs := []pipeline.ModuleConfig{
		{Type: stage.TypePrune},
		{Type: stage.TypeTimeSplit},
		{Type: stage.TypeShortName},
		{Type: stage.TypePredicate, Config: map[string]interface{}{"expression": `Phone != ""`}},
	}

	modules, err := CreateStageModules(cfgs, record.NewDiscardLog())
	if err != nil {
		t.Fatalf("CreateStageModules: %v", err)
	}
	if len(modules) != 4 {
		t.Fatalf("got %d stages, want 4", len(modules))
	}
	want := []string{stage.TypePrune, stage.TypeTimeSplit, stage.TypeShortName, stage.TypePredicate}
	for i, m := range modules {
		if m.Name() != want[i] {
			t.Errorf("stage[%d] = %q, want %q", i, m.Name(), want[i])
		}
	}
}

func TestCreateStageModulesUnknownType(t *testing.T) {
	cfgs := []pipeline.ModuleConfig{{Type: "frobnicate"}}
	_, err := CreateStageModules(cfgs, record.NewDiscardLog())
	if err == nil {
		t.Fatal("expected error for unknown stage type")
	}
	if !strings.Contains(err.Error(), "frobnicate") || !strings.Contains(err.Error(), "index 0") {
		t.Errorf("error %q should name the type and index", err)
	}
}

func TestCreateStageModulesInvalidPredicate(t *testing.T) {
	cfgs := []pipeline.ModuleConfig{
		{Type: stage.TypePredicate, Config: map[string]interface{}{}},
	}
	if _, err := CreateStageModules(cfgs, record.NewDiscardLog()); err == nil {
		t.Fatal("expected error for predicate without expression")
	}
}
