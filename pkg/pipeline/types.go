// Package pipeline provides public types for cleaning pipeline configurations
// and run results. This package is intended to be importable by external
// projects that need to interact with the regscrub runtime.
package pipeline

import "time"

// Pipeline represents a complete cleaning pipeline configuration.
// It contains the input, the ordered stage chain, and the output required
// to run one cleaning pass over a registration dataset.
type Pipeline struct {
	// ID is the unique identifier for this pipeline
	ID string `json:"id"`

	// Name is the human-readable name of the pipeline
	Name string `json:"name"`

	// Description provides additional context about the pipeline
	Description string `json:"description,omitempty"`

	// Version is the pipeline configuration version
	Version string `json:"version,omitempty"`

	// Input defines the data source module
	Input *ModuleConfig `json:"input"`

	// Stages is an ordered list of cleaning stage configurations.
	// When empty, the runtime uses the built-in default chain.
	Stages []ModuleConfig `json:"stages,omitempty"`

	// Output defines where accepted and rejected rows are persisted
	Output *ModuleConfig `json:"output"`
}

// ModuleConfig represents the configuration for a pipeline module.
// Modules can be Input, Stage, or Output types.
type ModuleConfig struct {
	// Type identifies the module type (e.g., "csv", "database", "numericPhone")
	Type string `json:"type"`

	// Config contains the module-specific configuration
	Config map[string]interface{} `json:"config,omitempty"`
}

// Run status values reported in RunResult.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RunResult represents the result of one cleaning run.
type RunResult struct {
	// RunID uniquely identifies this run
	RunID string `json:"runId"`

	// PipelineID is the ID of the executed pipeline
	PipelineID string `json:"pipelineId"`

	// Status is the run status ("success" or "error")
	Status string `json:"status"`

	// StartedAt is when the run started
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when the run completed
	CompletedAt time.Time `json:"completedAt"`

	// RowsIn is the number of rows loaded from the input
	RowsIn int `json:"rowsIn"`

	// RowsAccepted is the number of rows that passed every stage
	RowsAccepted int `json:"rowsAccepted"`

	// RowsRejected is the number of rows rejected by any stage
	RowsRejected int `json:"rowsRejected"`

	// ColumnsPruned is the number of discarded-column entries recorded
	// by the prune stage. Excluded from the row conservation count.
	ColumnsPruned int `json:"columnsPruned"`

	// RejectedByReason breaks RowsRejected down by rejection reason code
	RejectedByReason map[string]int `json:"rejectedByReason,omitempty"`

	// StageTimings holds the duration of each executed stage, in order
	StageTimings []StageTiming `json:"stageTimings,omitempty"`

	// DryRun indicates the run skipped the output module
	DryRun bool `json:"dryRun,omitempty"`

	// Error contains error details if the run failed
	Error *RunError `json:"error,omitempty"`
}

// StageTiming records how long a single stage took and what it did.
type StageTiming struct {
	// Stage is the stage name (e.g., "nameCase", "numericPhone")
	Stage string `json:"stage"`

	// RowsIn is the number of rows entering the stage
	RowsIn int `json:"rowsIn"`

	// RowsRejected is the number of rows the stage rejected
	RowsRejected int `json:"rowsRejected"`

	// Duration is the stage execution time
	Duration time.Duration `json:"duration"`
}

// RunError contains details about a run failure.
type RunError struct {
	// Code is the error code (e.g., INPUT_FAILED, STAGE_FAILED)
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Module is the module where the error occurred
	Module string `json:"module,omitempty"`

	// Category classifies the error (structural, io, data, config, internal)
	Category string `json:"category,omitempty"`

	// Fatal indicates the failure aborted the run before any output was written
	Fatal bool `json:"fatal,omitempty"`
}
