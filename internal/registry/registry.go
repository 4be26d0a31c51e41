// Package registry provides module registries for input, stage, and output modules.
//
// # Overview
//
// The registry package enables extensible module registration for the regscrub
// runtime. Instead of hard-coded switch statements, modules register their
// constructors by type string. This allows contributors to add new module types
// without modifying core factory code.
//
// # Adding a New Module
//
// To add a new module type (e.g., an "s3" input module):
//
//  1. Implement the appropriate interface (input.Module, stage.Module, or output.Module)
//  2. Create a constructor function matching the registry signature
//  3. Register the constructor in an init() function
//
// Example for a new input module:
//
//	package s3
//
//	import (
//	    "github.com/regscrub/runtime/internal/modules/input"
//	    "github.com/regscrub/runtime/internal/registry"
//	    "github.com/regscrub/runtime/pkg/pipeline"
//	)
//
//	func init() {
//	    registry.RegisterInput("s3", NewS3Module)
//	}
//
//	func NewS3Module(cfg *pipeline.ModuleConfig) (input.Module, error) {
//	    // Parse cfg.Config and return your implementation
//	    return &S3Module{...}, nil
//	}
//
// # Built-in Modules
//
// Built-in modules (csv and database inputs, the cleaning stages, the csv
// output) are registered automatically at runtime startup via init() functions.
// Unknown types are an error; the factory reports them rather than guessing.
package registry

import (
	"sync"

	"github.com/regscrub/runtime/internal/modules/input"
	"github.com/regscrub/runtime/internal/modules/output"
	"github.com/regscrub/runtime/internal/modules/stage"
	"github.com/regscrub/runtime/pkg/pipeline"
)

// InputConstructor is a function that creates an input module from configuration.
// The constructor receives the full ModuleConfig and returns an input.Module.
// Returns an error if the configuration is invalid.
type InputConstructor func(cfg *pipeline.ModuleConfig) (input.Module, error)

// StageConstructor is a function that creates a cleaning stage module from
// configuration. The constructor receives the ModuleConfig and the stage's
// index in the chain. Returns an error if the configuration is invalid.
type StageConstructor func(cfg pipeline.ModuleConfig, index int) (stage.Module, error)

// OutputConstructor is a function that creates an output module from configuration.
// The constructor receives the full ModuleConfig and returns an output.Module.
// Returns an error if the configuration is invalid.
type OutputConstructor func(cfg *pipeline.ModuleConfig) (output.Module, error)

// inputRegistry holds registered input module constructors.
var (
	inputMu       sync.RWMutex
	inputRegistry = make(map[string]InputConstructor)
)

// stageRegistry holds registered stage module constructors.
var (
	stageMu       sync.RWMutex
	stageRegistry = make(map[string]StageConstructor)
)

// outputRegistry holds registered output module constructors.
var (
	outputMu       sync.RWMutex
	outputRegistry = make(map[string]OutputConstructor)
)

// RegisterInput registers an input module constructor by type string.
// Calling RegisterInput with an already registered type will overwrite
// the previous constructor.
//
// This function is safe for concurrent use and is typically called from
// init() functions in module packages.
func RegisterInput(moduleType string, constructor InputConstructor) {
	inputMu.Lock()
	defer inputMu.Unlock()
	inputRegistry[moduleType] = constructor
}

// RegisterStage registers a stage module constructor by type string.
// Calling RegisterStage with an already registered type will overwrite
// the previous constructor.
//
// This function is safe for concurrent use and is typically called from
// init() functions in module packages.
func RegisterStage(moduleType string, constructor StageConstructor) {
	stageMu.Lock()
	defer stageMu.Unlock()
	stageRegistry[moduleType] = constructor
}

// RegisterOutput registers an output module constructor by type string.
// Calling RegisterOutput with an already registered type will overwrite
// the previous constructor.
//
// This function is safe for concurrent use and is typically called from
// init() functions in module packages.
func RegisterOutput(moduleType string, constructor OutputConstructor) {
	outputMu.Lock()
	defer outputMu.Unlock()
	outputRegistry[moduleType] = constructor
}

// GetInputConstructor returns the registered constructor for an input module type.
// Returns nil if no constructor is registered for the given type.
func GetInputConstructor(moduleType string) InputConstructor {
	inputMu.RLock()
	defer inputMu.RUnlock()
	return inputRegistry[moduleType]
}

// GetStageConstructor returns the registered constructor for a stage module type.
// Returns nil if no constructor is registered for the given type.
func GetStageConstructor(moduleType string) StageConstructor {
	stageMu.RLock()
	defer stageMu.RUnlock()
	return stageRegistry[moduleType]
}

// GetOutputConstructor returns the registered constructor for an output module type.
// Returns nil if no constructor is registered for the given type.
func GetOutputConstructor(moduleType string) OutputConstructor {
	outputMu.RLock()
	defer outputMu.RUnlock()
	return outputRegistry[moduleType]
}

// ListInputTypes returns all registered input module type names.
// Useful for documentation and debugging.
func ListInputTypes() []string {
	inputMu.RLock()
	defer inputMu.RUnlock()
	types := make([]string, 0, len(inputRegistry))
	for t := range inputRegistry {
		types = append(types, t)
	}
	return types
}

// ListStageTypes returns all registered stage module type names.
// Useful for documentation and debugging.
func ListStageTypes() []string {
	stageMu.RLock()
	defer stageMu.RUnlock()
	types := make([]string, 0, len(stageRegistry))
	for t := range stageRegistry {
		types = append(types, t)
	}
	return types
}

// ListOutputTypes returns all registered output module type names.
// Useful for documentation and debugging.
func ListOutputTypes() []string {
	outputMu.RLock()
	defer outputMu.RUnlock()
	types := make([]string, 0, len(outputRegistry))
	for t := range outputRegistry {
		types = append(types, t)
	}
	return types
}

// ClearRegistries removes all registered constructors.
// This is intended for testing purposes only.
func ClearRegistries() {
	inputMu.Lock()
	inputRegistry = make(map[string]InputConstructor)
	inputMu.Unlock()

	stageMu.Lock()
	stageRegistry = make(map[string]StageConstructor)
	stageMu.Unlock()

	outputMu.Lock()
	outputRegistry = make(map[string]OutputConstructor)
	outputMu.Unlock()
}
