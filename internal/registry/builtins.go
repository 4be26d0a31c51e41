// Package registry provides module registries for the regscrub runtime.
// This file registers all built-in modules during initialization.
package registry

import (
	"fmt"

	"github.com/regscrub/runtime/internal/modules/input"
	"github.com/regscrub/runtime/internal/modules/output"
	"github.com/regscrub/runtime/internal/modules/stage"
	"github.com/regscrub/runtime/pkg/pipeline"
)

func init() {
	registerBuiltinInputModules()
	registerBuiltinStageModules()
	registerBuiltinOutputModules()
}

// registerBuiltinInputModules registers all built-in input module types.
func registerBuiltinInputModules() {
	// csv - CSV file input module
	RegisterInput(input.TypeCSV, func(cfg *pipeline.ModuleConfig) (input.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		return input.NewCSVFromConfig(cfg)
	})

	// database - SQL query input module
	RegisterInput(input.TypeDatabase, func(cfg *pipeline.ModuleConfig) (input.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		return input.NewDatabaseFromConfig(cfg)
	})
}

// registerBuiltinStageModules registers all built-in cleaning stage types.
//
// The prune stage is NOT registered here: it writes into a discard log that
// must be shared with the output module, so it is wired by
// factory.CreateStageModules, which owns the log for the run.
func registerBuiltinStageModules() {
	// timeSplit - split the registration timestamp into date and time
	RegisterStage(stage.TypeTimeSplit, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewTimeSplit(), nil
	})

	// nameCase - normalize first and last name casing and token layout
	RegisterStage(stage.TypeNameCase, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewNameCase(), nil
	})

	// missingName - reject rows missing a first or last name
	RegisterStage(stage.TypeMissingName, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewMissingName(), nil
	})

	// digitName - reject rows whose names contain digits
	RegisterStage(stage.TypeDigitName, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewDigitName(), nil
	})

	// specialCharName - reject rows whose names contain special characters
	RegisterStage(stage.TypeSpecialCharName, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewSpecialCharName(), nil
	})

	// registrationComplete - reject rows without both a date and a time
	RegisterStage(stage.TypeRegistrationComplete, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewRegistrationComplete(), nil
	})

	// numericPhone - reject rows with a non-numeric phone value
	RegisterStage(stage.TypeNumericPhone, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewNumericPhone(), nil
	})

	// shortName - optional filter rejecting single-character names
	RegisterStage(stage.TypeShortName, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		return stage.NewShortName(), nil
	})

	// predicate - configurable expression filter
	RegisterStage(stage.TypePredicate, func(cfg pipeline.ModuleConfig, index int) (stage.Module, error) {
		predConfig, err := stage.ParsePredicateConfig(cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("invalid predicate config at index %d: %w", index, err)
		}
		module, err := stage.NewPredicateFromConfig(predConfig)
		if err != nil {
			return nil, fmt.Errorf("invalid predicate config at index %d: %w", index, err)
		}
		return module, nil
	})
}

// registerBuiltinOutputModules registers all built-in output module types.
func registerBuiltinOutputModules() {
	// csv - accepted/rejected/discards CSV file output module
	RegisterOutput(output.TypeCSV, func(cfg *pipeline.ModuleConfig) (output.Module, error) {
		if cfg == nil {
			return nil, nil
		}
		return output.NewCSVFromConfig(cfg)
	})
}
