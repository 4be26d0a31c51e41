// Package config provides functionality for parsing and validating
// pipeline configuration files (JSON/YAML).
package config

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/regscrub/runtime/pkg/pipeline"
)

// ConvertToPipeline converts parsed configuration data to a Pipeline struct.
// The input data should have been validated against the schema before calling
// this function.
//
// The configuration is expected to have this structure:
//
//	{
//	  "id": "registrations-2024",
//	  "name": "Registration cleanup",
//	  "input": {"type": "csv", "config": {...}},
//	  "stages": [...],
//	  "output": {"type": "csv", "config": {...}}
//	}
func ConvertToPipeline(data map[string]interface{}) (*pipeline.Pipeline, error) {
	if data == nil {
		return nil, fmt.Errorf("configuration data is nil")
	}

	p := &pipeline.Pipeline{}

	id := cast.ToString(data["id"])
	if id == "" {
		return nil, fmt.Errorf("missing required field 'id'")
	}
	p.ID = id

	name := cast.ToString(data["name"])
	if name == "" {
		return nil, fmt.Errorf("missing required field 'name'")
	}
	p.Name = name

	p.Description = cast.ToString(data["description"])
	p.Version = cast.ToString(data["version"])

	inputData, ok := data["input"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'input' section")
	}
	inputConfig, err := convertModuleConfig(inputData)
	if err != nil {
		return nil, fmt.Errorf("invalid input config: %w", err)
	}
	p.Input = inputConfig

	if stagesData, okStages := data["stages"].([]interface{}); okStages {
		for i, stageData := range stagesData {
			stageMap, isMap := stageData.(map[string]interface{})
			if !isMap {
				return nil, fmt.Errorf("invalid stage at index %d", i)
			}
			stageConfig, convertErr := convertModuleConfig(stageMap)
			if convertErr != nil {
				return nil, fmt.Errorf("invalid stage at index %d: %w", i, convertErr)
			}
			p.Stages = append(p.Stages, *stageConfig)
		}
	}

	outputData, okOutput := data["output"].(map[string]interface{})
	if !okOutput {
		return nil, fmt.Errorf("missing or invalid 'output' section")
	}
	outputConfig, err := convertModuleConfig(outputData)
	if err != nil {
		return nil, fmt.Errorf("invalid output config: %w", err)
	}
	p.Output = outputConfig

	return p, nil
}

// convertModuleConfig converts a raw module configuration map to ModuleConfig.
func convertModuleConfig(data map[string]interface{}) (*pipeline.ModuleConfig, error) {
	moduleType := cast.ToString(data["type"])
	if moduleType == "" {
		return nil, fmt.Errorf("missing required field 'type'")
	}

	cfg := &pipeline.ModuleConfig{
		Type:   moduleType,
		Config: map[string]interface{}{},
	}

	if rawConfig, ok := data["config"]; ok && rawConfig != nil {
		configMap, isMap := rawConfig.(map[string]interface{})
		if !isMap {
			return nil, fmt.Errorf("'config' must be an object")
		}
		cfg.Config = configMap
	}

	return cfg, nil
}
