// Package runtime provides the cleaning run execution engine.
// It orchestrates the execution of the input module, the stage chain, and
// the output module for one batch run.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/regscrub/runtime/internal/errhandling"
	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/modules/input"
	"github.com/regscrub/runtime/internal/modules/output"
	"github.com/regscrub/runtime/internal/modules/stage"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/pkg/pipeline"
)

// Error codes for run errors
const (
	ErrCodeInputFailed  = "INPUT_FAILED"
	ErrCodeStageFailed  = "STAGE_FAILED"
	ErrCodeOutputFailed = "OUTPUT_FAILED"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeConservation = "CONSERVATION_VIOLATED"
)

// Common errors
var (
	// ErrNilPipeline is returned when pipeline configuration is nil
	ErrNilPipeline = errors.New("pipeline configuration is nil")

	// ErrNilInputModule is returned when the input module is nil
	ErrNilInputModule = errors.New("input module is nil")

	// ErrNilOutputModule is returned when the output module is nil
	ErrNilOutputModule = errors.New("output module is nil")

	// ErrNoStages is returned when the stage chain is empty
	ErrNoStages = errors.New("stage chain is empty")
)

// Classifier runs one cleaning pass: load the dataset, fold the stage chain
// over the accepted set, persist the outcome.
//
// The fold invariant holds after every stage: rows accepted so far plus rows
// rejected so far equals rows loaded. The classifier verifies it explicitly
// and aborts on violation rather than writing a corrupt partition.
//
// A Classifier is single-use: a run consumes and closes the input module, so
// a second Run fails validation instead of reusing a closed module.
type Classifier struct {
	inputModule  input.Module
	stages       []stage.Module
	outputModule output.Module
	discards     *record.DiscardLog
	dryRun       bool
}

// NewClassifier creates a classifier with all modules configured.
//
// Parameters:
//   - inputModule: loads the dataset
//   - stages: the ordered stage chain
//   - outputModule: persists the outcome (may be nil in dry-run mode)
//   - discards: the discard log shared with the prune stage
//   - dryRun: if true, skips the output module
func NewClassifier(
	inputModule input.Module,
	stages []stage.Module,
	outputModule output.Module,
	discards *record.DiscardLog,
	dryRun bool,
) *Classifier {
	return &Classifier{
		inputModule:  inputModule,
		stages:       stages,
		outputModule: outputModule,
		discards:     discards,
		dryRun:       dryRun,
	}
}

// Run executes the pipeline with a background context.
// For cancellation support, use RunWithContext.
func (c *Classifier) Run(p *pipeline.Pipeline) (*pipeline.RunResult, error) {
	return c.RunWithContext(context.Background(), p)
}

// RunWithContext executes the pipeline with the given context.
//
// Execution flow:
//  1. Validate the pipeline and modules
//  2. Fetch the dataset (input module closed immediately afterwards)
//  3. Fold the stage chain over the accepted set, checking conservation
//  4. Persist accepted/rejected/discards (skipped in dry-run mode)
//
// A failed run writes no output files.
func (c *Classifier) RunWithContext(ctx context.Context, p *pipeline.Pipeline) (*pipeline.RunResult, error) {
	startedAt := time.Now()
	result := &pipeline.RunResult{
		RunID:     uuid.NewString(),
		Status:    pipeline.StatusError,
		StartedAt: startedAt,
		DryRun:    c.dryRun,
	}

	if err := c.validate(p, result); err != nil {
		return result, err
	}
	result.PipelineID = p.ID

	runCtx := logger.RunContext{
		PipelineID:   p.ID,
		PipelineName: p.Name,
		RunID:        result.RunID,
		DryRun:       c.dryRun,
	}
	logger.LogRunStart(runCtx)

	if c.outputModule != nil {
		defer c.closeModule(p.ID, "output", c.outputModule)
	}

	// Fetch the dataset
	dataset, inputDuration, err := c.fetchDataset(ctx, runCtx)
	if err != nil {
		c.failRun(result, runCtx, ErrCodeInputFailed, "input", err, startedAt)
		return result, fmt.Errorf("executing input module: %w", err)
	}
	result.RowsIn = len(dataset.Rows)

	// Fold the stage chain
	accepted, rejected, stageDuration, err := c.runStages(ctx, runCtx, result, dataset)
	if err != nil {
		c.failRun(result, runCtx, ErrCodeStageFailed, "stage", err, startedAt)
		return result, err
	}

	outcome := c.buildOutcome(dataset, accepted, rejected)
	result.RowsAccepted = len(accepted)
	result.RowsRejected = len(rejected)
	result.ColumnsPruned = c.discardCount()
	result.RejectedByReason = reasonBreakdown(rejected)

	// Persist the outcome
	outputDuration, err := c.writeOutcome(ctx, runCtx, outcome)
	if err != nil {
		c.failRun(result, runCtx, ErrCodeOutputFailed, "output", err, startedAt)
		return result, fmt.Errorf("executing output module: %w", err)
	}

	c.finalize(result, runCtx, startedAt, inputDuration, stageDuration, outputDuration)
	return result, nil
}

// validate checks the pipeline and modules before execution.
func (c *Classifier) validate(p *pipeline.Pipeline, result *pipeline.RunResult) error {
	if p == nil {
		logger.Error("run failed: nil pipeline configuration")
		result.CompletedAt = time.Now()
		result.Error = buildRunError(ErrCodeInvalidInput, "", ErrNilPipeline)
		return ErrNilPipeline
	}
	if c.inputModule == nil {
		logger.Error("run failed: input module is nil", "pipeline_id", p.ID)
		result.CompletedAt = time.Now()
		result.Error = buildRunError(ErrCodeInvalidInput, "input", ErrNilInputModule)
		return ErrNilInputModule
	}
	if len(c.stages) == 0 {
		logger.Error("run failed: stage chain is empty", "pipeline_id", p.ID)
		result.CompletedAt = time.Now()
		result.Error = buildRunError(ErrCodeInvalidInput, "stage", ErrNoStages)
		return ErrNoStages
	}
	if c.outputModule == nil && !c.dryRun {
		logger.Error("run failed: output module is nil", "pipeline_id", p.ID)
		result.CompletedAt = time.Now()
		result.Error = buildRunError(ErrCodeInvalidInput, "output", ErrNilOutputModule)
		return ErrNilOutputModule
	}
	return nil
}

// fetchDataset executes the input module and closes it immediately after,
// releasing file handles and connections before the stages run.
func (c *Classifier) fetchDataset(ctx context.Context, runCtx logger.RunContext) (*record.Dataset, time.Duration, error) {
	stageCtx := runCtx
	stageCtx.Stage = "input"
	logger.LogStageStart(stageCtx, 0)

	start := time.Now()
	dataset, err := c.inputModule.Fetch(ctx)
	duration := time.Since(start)

	c.closeModule(runCtx.PipelineID, "input", c.inputModule)
	c.inputModule = nil // consumed; a second run fails validation instead of double-closing

	if err != nil {
		logger.LogStageEnd(stageCtx, 0, 0, duration, err)
		return nil, duration, err
	}

	logger.LogStageEnd(stageCtx, len(dataset.Rows), 0, duration, nil)
	return dataset, duration, nil
}

// runStages folds the stage chain over the accepted set.
// Returns the final accepted rows and the accumulated rejections.
func (c *Classifier) runStages(
	ctx context.Context,
	runCtx logger.RunContext,
	result *pipeline.RunResult,
	dataset *record.Dataset,
) ([]record.Row, []record.Rejection, time.Duration, error) {
	accepted := dataset.Rows
	var rejected []record.Rejection
	total := len(dataset.Rows)

	chainStart := time.Now()
	for i, s := range c.stages {
		stageCtx := runCtx
		stageCtx.Stage = s.Name()
		logger.LogStageStart(stageCtx, len(accepted))

		start := time.Now()
		kept, stageRejected, err := s.Apply(ctx, accepted)
		duration := time.Since(start)

		if err != nil {
			logger.LogStageEnd(stageCtx, 0, 0, duration, err)
			return nil, nil, time.Since(chainStart), fmt.Errorf("executing stage %d (%s): %w", i, s.Name(), err)
		}

		accepted = kept
		rejected = append(rejected, stageRejected...)

		if len(accepted)+len(rejected) != total {
			err := errhandling.NewInternal(
				"conservation violated after stage %s: %d accepted + %d rejected != %d loaded",
				s.Name(), len(accepted), len(rejected), total,
			)
			logger.LogStageEnd(stageCtx, len(kept), len(stageRejected), duration, err)
			return nil, nil, time.Since(chainStart), err
		}

		result.StageTimings = append(result.StageTimings, pipeline.StageTiming{
			Stage:        s.Name(),
			RowsIn:       len(kept) + len(stageRejected),
			RowsRejected: len(stageRejected),
			Duration:     duration,
		})
		logger.LogStageEnd(stageCtx, len(kept), len(stageRejected), duration, nil)
	}

	return accepted, rejected, time.Since(chainStart), nil
}

// buildOutcome assembles the output payload.
// Rejections accumulate grouped by rejecting stage; the outcome carries them
// in source order, so they are re-sorted by input line here.
func (c *Classifier) buildOutcome(dataset *record.Dataset, accepted []record.Row, rejected []record.Rejection) *output.Outcome {
	sort.SliceStable(rejected, func(i, j int) bool {
		return rejected[i].Row.Line < rejected[j].Row.Line
	})
	return &output.Outcome{
		ExtraHeader: dataset.ExtraHeader,
		Accepted:    accepted,
		Rejected:    rejected,
		Discards:    c.discards,
	}
}

// writeOutcome persists the outcome unless in dry-run mode.
func (c *Classifier) writeOutcome(ctx context.Context, runCtx logger.RunContext, outcome *output.Outcome) (time.Duration, error) {
	if c.dryRun {
		logger.Debug("dry-run mode: skipping output module",
			"pipeline_id", runCtx.PipelineID,
			"rows_would_accept", len(outcome.Accepted),
			"rows_would_reject", len(outcome.Rejected),
		)
		return 0, nil
	}

	stageCtx := runCtx
	stageCtx.Stage = "output"
	logger.LogStageStart(stageCtx, len(outcome.Accepted)+len(outcome.Rejected))

	start := time.Now()
	err := c.outputModule.Write(ctx, outcome)
	duration := time.Since(start)

	if err != nil {
		logger.LogStageEnd(stageCtx, 0, 0, duration, err)
		return duration, err
	}

	logger.LogStageEnd(stageCtx, len(outcome.Accepted), len(outcome.Rejected), duration, nil)
	return duration, nil
}

// finalize marks the run successful and logs completion metrics.
func (c *Classifier) finalize(
	result *pipeline.RunResult,
	runCtx logger.RunContext,
	startedAt time.Time,
	inputDuration, stageDuration, outputDuration time.Duration,
) {
	result.Status = pipeline.StatusSuccess
	result.CompletedAt = time.Now()
	result.Error = nil

	totalDuration := time.Since(startedAt)
	var rowsPerSecond float64
	if result.RowsIn > 0 && totalDuration > 0 {
		rowsPerSecond = float64(result.RowsIn) / totalDuration.Seconds()
	}

	logger.LogRunEnd(runCtx, pipeline.StatusSuccess, result.RowsAccepted, result.RowsRejected, totalDuration)
	logger.LogMetrics(runCtx, logger.RunMetrics{
		TotalDuration:  totalDuration,
		InputDuration:  inputDuration,
		StageDuration:  stageDuration,
		OutputDuration: outputDuration,
		RowsIn:         result.RowsIn,
		RowsAccepted:   result.RowsAccepted,
		RowsRejected:   result.RowsRejected,
		RowsPerSecond:  rowsPerSecond,
	})
}

// failRun records a run failure on the result and logs completion.
func (c *Classifier) failRun(result *pipeline.RunResult, runCtx logger.RunContext, code, module string, err error, startedAt time.Time) {
	result.CompletedAt = time.Now()
	result.Error = buildRunError(code, module, err)
	logger.LogRunEnd(runCtx, pipeline.StatusError, result.RowsAccepted, result.RowsRejected, time.Since(startedAt))
}

// buildRunError creates a RunError with classified category.
func buildRunError(code, module string, err error) *pipeline.RunError {
	classified := errhandling.ClassifyError(err)
	return &pipeline.RunError{
		Code:     code,
		Message:  err.Error(),
		Module:   module,
		Category: string(classified.Category),
		Fatal:    errhandling.IsFatal(err),
	}
}

// reasonBreakdown counts rejections per reason code.
func reasonBreakdown(rejected []record.Rejection) map[string]int {
	if len(rejected) == 0 {
		return nil
	}
	breakdown := make(map[string]int)
	for _, r := range rejected {
		breakdown[r.Reason.String()]++
	}
	return breakdown
}

// discardCount returns the number of recorded discards.
func (c *Classifier) discardCount() int {
	if c.discards == nil {
		return 0
	}
	return c.discards.Len()
}

// moduleCloser interface for modules that can be closed.
type moduleCloser interface {
	Close() error
}

// closeModule closes a module and logs any error.
func (c *Classifier) closeModule(pipelineID, moduleName string, m moduleCloser) {
	if err := m.Close(); err != nil {
		logger.Warn("failed to close module",
			"pipeline_id", pipelineID,
			"module", moduleName,
			"error", err.Error(),
		)
	}
}
