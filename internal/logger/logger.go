// Package logger provides structured logging for the regscrub runtime.
// It wraps log/slog and adds run/stage logging helpers so every pipeline
// run emits a consistent set of fields (snake_case keys).
//
// Two output formats are supported:
//   - JSON (default): machine-readable structured logging
//   - Text: human-readable console output
package logger

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger is the default logger instance.
var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// OutputFormat represents the log output format.
type OutputFormat int

const (
	// FormatJSON is the default machine-readable JSON format
	FormatJSON OutputFormat = iota
	// FormatText is a human-readable console format
	FormatText
)

// SetLevel configures the logging level, keeping the JSON format.
func SetLevel(level slog.Level) {
	SetLevelAndFormat(level, FormatJSON)
}

// SetLevelAndFormat sets both the log level and the output format.
func SetLevelAndFormat(level slog.Level, format OutputFormat) {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatText:
		Logger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	default:
		Logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// WithPipeline returns a logger with pipeline context.
func WithPipeline(pipelineID string) *slog.Logger {
	return Logger.With("pipeline_id", pipelineID)
}

// RunContext carries context fields for run-level logging helpers.
type RunContext struct {
	// PipelineID is the unique identifier for the pipeline (required)
	PipelineID string
	// PipelineName is the human-readable name of the pipeline
	PipelineName string
	// RunID identifies the current run
	RunID string
	// Stage is the current stage name (input, a cleaning stage, output)
	Stage string
	// DryRun indicates the run skips the output module
	DryRun bool
}

// RunMetrics contains throughput metrics logged at the end of a run.
type RunMetrics struct {
	// TotalDuration is the end-to-end run time
	TotalDuration time.Duration
	// InputDuration is the time spent loading the dataset
	InputDuration time.Duration
	// StageDuration is the total time spent in cleaning stages
	StageDuration time.Duration
	// OutputDuration is the time spent writing outputs
	OutputDuration time.Duration
	// RowsIn is the number of rows loaded
	RowsIn int
	// RowsAccepted is the number of rows surviving every stage
	RowsAccepted int
	// RowsRejected is the number of rows rejected by any stage
	RowsRejected int
	// RowsPerSecond is the processing throughput
	RowsPerSecond float64
}

// LogRunStart logs the start of a cleaning run.
func LogRunStart(ctx RunContext) {
	Logger.Info("run started", contextAttrs(ctx)...)
}

// LogRunEnd logs the completion of a cleaning run with its final status.
func LogRunEnd(ctx RunContext, status string, rowsAccepted, rowsRejected int, duration time.Duration) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.String("status", status),
		slog.Int("rows_accepted", rowsAccepted),
		slog.Int("rows_rejected", rowsRejected),
		slog.Duration("duration", duration),
	)
	Logger.Info("run completed", attrs...)
}

// LogStageStart logs the start of a pipeline stage.
func LogStageStart(ctx RunContext, rowsIn int) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs, slog.Int("rows_in", rowsIn))
	Logger.Debug("stage started", attrs...)
}

// LogStageEnd logs the completion of a pipeline stage. A non-nil err logs
// the stage as failed.
func LogStageEnd(ctx RunContext, rowsKept, rowsRejected int, duration time.Duration, err error) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.Int("rows_kept", rowsKept),
		slog.Int("rows_rejected", rowsRejected),
		slog.Duration("duration", duration),
	)
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if chain := errorChain(err); chain != "" {
			attrs = append(attrs, slog.String("error_chain", chain))
		}
		Logger.Error("stage failed", attrs...)
		return
	}
	Logger.Debug("stage completed", attrs...)
}

// LogMetrics logs run throughput metrics after completion.
func LogMetrics(ctx RunContext, m RunMetrics) {
	attrs := contextAttrs(ctx)
	attrs = append(attrs,
		slog.Duration("total_duration", m.TotalDuration),
		slog.Duration("input_duration", m.InputDuration),
		slog.Duration("stage_duration", m.StageDuration),
		slog.Duration("output_duration", m.OutputDuration),
		slog.Int("rows_in", m.RowsIn),
		slog.Int("rows_accepted", m.RowsAccepted),
		slog.Int("rows_rejected", m.RowsRejected),
		slog.Float64("rows_per_second", m.RowsPerSecond),
	)
	Logger.Info("run metrics", attrs...)
}

// contextAttrs builds slog attributes from a RunContext.
// Only non-empty fields are included.
func contextAttrs(ctx RunContext) []any {
	attrs := make([]any, 0, 8)
	attrs = append(attrs, slog.String("pipeline_id", ctx.PipelineID))
	if ctx.PipelineName != "" {
		attrs = append(attrs, slog.String("pipeline_name", ctx.PipelineName))
	}
	if ctx.RunID != "" {
		attrs = append(attrs, slog.String("run_id", ctx.RunID))
	}
	if ctx.Stage != "" {
		attrs = append(attrs, slog.String("stage", ctx.Stage))
	}
	if ctx.DryRun {
		attrs = append(attrs, slog.Bool("dry_run", true))
	}
	return attrs
}

// errorChain renders the unwrap chain of an error, oldest cause last.
func errorChain(err error) string {
	parts := []string{err.Error()}
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		parts = append(parts, unwrapped.Error())
		err = unwrapped
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, " -> ")
}
