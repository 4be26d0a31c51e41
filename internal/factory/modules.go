// Package factory provides module creation functions for the pipeline runtime.
// It centralizes the logic for instantiating input, stage, and output modules
// from their configuration using the module registry.
//
// # Module Creation
//
// The factory uses the registry package to look up module constructors by type.
// Built-in modules (csv and database inputs, the cleaning stages, the csv
// output) are registered automatically at startup. Unknown types are an error.
//
// # The Default Chain
//
// When a pipeline configuration names no stages, DefaultStages supplies the
// built-in chain in its fixed order: prune, timeSplit, nameCase, missingName,
// digitName, specialCharName, registrationComplete, numericPhone.
//
// # Adding New Module Types
//
// To add a new module type, see the documentation in internal/registry.
// You do NOT need to modify this factory; just register your constructor.
package factory

import (
	"fmt"

	"github.com/regscrub/runtime/internal/modules/input"
	"github.com/regscrub/runtime/internal/modules/output"
	"github.com/regscrub/runtime/internal/modules/stage"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/internal/registry"
	"github.com/regscrub/runtime/pkg/pipeline"
)

// CreateInputModule creates an input module instance from configuration.
// Uses the registry to look up the constructor by type.
func CreateInputModule(cfg *pipeline.ModuleConfig) (input.Module, error) {
	if cfg == nil {
		return nil, nil
	}

	constructor := registry.GetInputConstructor(cfg.Type)
	if constructor == nil {
		return nil, fmt.Errorf("unknown input module type %q", cfg.Type)
	}
	return constructor(cfg)
}

// CreateStageModules creates stage module instances from configuration.
// An empty configuration list yields the default chain.
//
// The discard log is shared between the prune stage and the output module;
// the caller owns it for the duration of the run.
func CreateStageModules(cfgs []pipeline.ModuleConfig, discards *record.DiscardLog) ([]stage.Module, error) {
	if len(cfgs) == 0 {
		return DefaultStages(discards)
	}

	modules := make([]stage.Module, 0, len(cfgs))
	for i, cfg := range cfgs {
		module, err := createSingleStageModule(cfg, i, discards)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, nil
}

// createSingleStageModule creates a single stage module based on its type.
// Uses the registry to look up the constructor, with special handling for
// the prune stage, which writes into the run's discard log.
func createSingleStageModule(cfg pipeline.ModuleConfig, index int, discards *record.DiscardLog) (stage.Module, error) {
	if cfg.Type == stage.TypePrune {
		module, err := stage.NewPrune(discards)
		if err != nil {
			return nil, fmt.Errorf("invalid prune config at index %d: %w", index, err)
		}
		return module, nil
	}

	constructor := registry.GetStageConstructor(cfg.Type)
	if constructor == nil {
		return nil, fmt.Errorf("unknown stage module type %q at index %d", cfg.Type, index)
	}
	return constructor(cfg, index)
}

// CreateOutputModule creates an output module instance from configuration.
// Uses the registry to look up the constructor by type.
func CreateOutputModule(cfg *pipeline.ModuleConfig) (output.Module, error) {
	if cfg == nil {
		return nil, nil
	}

	constructor := registry.GetOutputConstructor(cfg.Type)
	if constructor == nil {
		return nil, fmt.Errorf("unknown output module type %q", cfg.Type)
	}
	return constructor(cfg)
}

// DefaultStages builds the built-in cleaning chain in its fixed order.
// Stage order is significant: pruning and normalization run before the
// filters that inspect their results.
func DefaultStages(discards *record.DiscardLog) ([]stage.Module, error) {
	prune, err := stage.NewPrune(discards)
	if err != nil {
		return nil, err
	}
	return []stage.Module{
		prune,
		stage.NewTimeSplit(),
		stage.NewNameCase(),
		stage.NewMissingName(),
		stage.NewDigitName(),
		stage.NewSpecialCharName(),
		stage.NewRegistrationComplete(),
		stage.NewNumericPhone(),
	}, nil
}
