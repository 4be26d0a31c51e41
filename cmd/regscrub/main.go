// Package main provides the CLI entry point for the regscrub runtime.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/regscrub/runtime/internal/cli"
	"github.com/regscrub/runtime/internal/config"
	"github.com/regscrub/runtime/internal/factory"
	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/internal/runtime"
)

// Exit codes
const (
	ExitSuccess         = 0
	ExitValidationError = 1
	ExitParseError      = 2
	ExitRuntimeError    = 3
)

var (
	// Global flags
	verbose bool
	quiet   bool

	// Run command flags
	dryRun bool

	// Build information (set via ldflags during build)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitRuntimeError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "regscrub",
	Short: "regscrub - Registration data cleaning runtime",
	Long: `regscrub is a CLI tool for cleaning customer registration datasets.

It parses and validates pipeline configurations (JSON/YAML format), then
runs the configured cleaning chain over the dataset, splitting it into
accepted and rejected row files.

Examples:
  # Validate a configuration file
  regscrub validate config.json

  # Run a cleaning pipeline
  regscrub run config.yaml

  # Preview a run without writing output files
  regscrub run --dry-run config.json`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// Configure logger level based on flags
		if verbose {
			logger.SetLevel(slog.LevelDebug)
		} else if quiet {
			logger.SetLevel(slog.LevelError)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Validate a pipeline configuration file",
	Long: `Validate a pipeline configuration file against the schema.

Supports both JSON and YAML formats. The format is auto-detected
based on file extension (.json, .yaml, .yml) or content.

Exit codes:
  0 - Configuration is valid
  1 - Validation errors (schema violations)
  2 - Parse errors (invalid JSON/YAML syntax)

Examples:
  regscrub validate config.json
  regscrub validate pipeline.yaml
  regscrub validate --verbose config.json`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

var runCmd = &cobra.Command{
	Use:   "run <config-file>",
	Short: "Run a cleaning pipeline from a configuration file",
	Long: `Run the cleaning pipeline defined in the configuration file.

The configuration file is first validated against the schema.
If validation fails, the pipeline will not be executed.

Flags:
  --dry-run   Run the cleaning chain without writing output files

Exit codes:
  0 - Pipeline executed successfully
  1 - Validation errors
  2 - Parse errors
  3 - Runtime errors

Examples:
  regscrub run config.json
  regscrub run --verbose pipeline.yaml
  regscrub run --dry-run config.json`,
	Args: cobra.ExactArgs(1),
	Run:  runPipeline,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version, commit hash, and build date information.",
	Run:   runVersion,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	// Run command flags
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the cleaning chain without writing output files")

	// Add commands
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func runValidate(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Validating configuration: %s\n", configPath)
	}

	result := config.ParseConfig(configPath)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}

	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Printf("✓ Configuration is valid (format: %s)\n", result.Format)
		if verbose {
			cli.PrintConfigSummary(result.Data)
		}
	}

	os.Exit(ExitSuccess)
}

func runPipeline(_ *cobra.Command, args []string) {
	configPath := args[0]

	if !quiet {
		fmt.Printf("Loading pipeline configuration: %s\n", configPath)
	}

	result := config.ParseConfig(configPath)

	if len(result.ParseErrors) > 0 {
		cli.PrintParseErrors(result.ParseErrors, verbose)
		os.Exit(ExitParseError)
	}

	if len(result.ValidationErrors) > 0 {
		cli.PrintValidationErrors(result.ValidationErrors, verbose, quiet)
		os.Exit(ExitValidationError)
	}

	if !quiet {
		fmt.Printf("✓ Configuration loaded successfully (format: %s)\n", result.Format)
	}

	p, err := config.ConvertToPipeline(result.Data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to convert configuration: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	if verbose {
		fmt.Printf("  Pipeline: %s (v%s)\n", p.Name, p.Version)
		if p.Description != "" {
			fmt.Printf("  Description: %s\n", p.Description)
		}
	}

	// Create module instances. The discard log is shared between the prune
	// stage and the output module.
	discards := record.NewDiscardLog()

	inputModule, err := factory.CreateInputModule(p.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to create input module: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	stageModules, err := factory.CreateStageModules(p.Stages, discards)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to create stage modules: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	outputModule, err := factory.CreateOutputModule(p.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ Failed to create output module: %v\n", err)
		os.Exit(ExitRuntimeError)
	}

	classifier := runtime.NewClassifier(inputModule, stageModules, outputModule, discards, dryRun)

	if !quiet {
		if dryRun {
			fmt.Println("Running pipeline (dry-run mode - no output files will be written)...")
		} else {
			fmt.Println("Running pipeline...")
		}
	}

	runResult, err := classifier.Run(p)

	cli.PrintRunResult(runResult, err, cli.OutputOptions{
		Verbose: verbose,
		Quiet:   quiet,
		DryRun:  dryRun,
	})

	if err != nil {
		os.Exit(ExitRuntimeError)
	}

	os.Exit(ExitSuccess)
}

func runVersion(_ *cobra.Command, _ []string) {
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Commit: %s\n", commit)
	fmt.Printf("Build Date: %s\n", buildDate)
}
