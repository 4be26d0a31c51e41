// Package cli provides CLI output formatting and display functions.
package cli

import (
	"fmt"
	"os"
	"sort"

	"github.com/regscrub/runtime/pkg/pipeline"
)

// OutputOptions configures CLI output behavior.
type OutputOptions struct {
	Verbose bool
	Quiet   bool
	DryRun  bool
}

// PrintRunResult displays the cleaning run result.
func PrintRunResult(result *pipeline.RunResult, err error, opts OutputOptions) {
	if result == nil {
		fmt.Fprintln(os.Stderr, "✗ No run result available")
		return
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Cleaning run failed")
		if result.Error != nil {
			if result.Error.Module != "" {
				fmt.Fprintf(os.Stderr, "  Module: %s\n", result.Error.Module)
			}
			fmt.Fprintf(os.Stderr, "  Error: %s\n", result.Error.Message)
			if opts.Verbose && result.Error.Category != "" {
				fmt.Fprintf(os.Stderr, "  Category: %s\n", result.Error.Category)
			}
		}
		return
	}

	if opts.Quiet {
		return
	}

	if opts.DryRun {
		fmt.Println("✓ Dry run completed (no output written)")
	} else {
		fmt.Println("✓ Cleaning run completed")
	}
	fmt.Printf("  Status: %s\n", result.Status)
	fmt.Printf("  Rows in: %d\n", result.RowsIn)
	fmt.Printf("  Rows accepted: %d\n", result.RowsAccepted)
	fmt.Printf("  Rows rejected: %d\n", result.RowsRejected)
	if result.ColumnsPruned > 0 {
		fmt.Printf("  Columns pruned: %d rows\n", result.ColumnsPruned)
	}

	if len(result.RejectedByReason) > 0 {
		printReasonBreakdown(result.RejectedByReason)
	}

	if opts.Verbose {
		fmt.Printf("  Duration: %v\n", result.CompletedAt.Sub(result.StartedAt))
		if len(result.StageTimings) > 0 {
			printStageTimings(result.StageTimings)
		}
	}
}

// printReasonBreakdown prints per-reason rejection counts, sorted by reason code.
func printReasonBreakdown(breakdown map[string]int) {
	fmt.Println("  Rejections by reason:")
	reasons := make([]string, 0, len(breakdown))
	for reason := range breakdown {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Printf("    %s: %d\n", reason, breakdown[reason])
	}
}

// printStageTimings prints per-stage durations in execution order.
func printStageTimings(timings []pipeline.StageTiming) {
	fmt.Println("  Stage timings:")
	for _, t := range timings {
		fmt.Printf("    %s: %v (%d in, %d rejected)\n", t.Stage, t.Duration, t.RowsIn, t.RowsRejected)
	}
}

// PrintConfigSummary prints pipeline name and version if available.
func PrintConfigSummary(data map[string]interface{}) {
	if data == nil {
		return
	}

	if name, ok := data["name"].(string); ok {
		fmt.Printf("  Pipeline: %s\n", name)
	}
	if version, ok := data["version"].(string); ok {
		fmt.Printf("  Version: %s\n", version)
	}
}
