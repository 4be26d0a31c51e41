// Package output provides implementations for output modules.
// CSVOutput writes the accepted, rejected, and discarded-column files.
//
// Column contracts:
//   - accepted: FirstName, LastName, Registration Date, Registration Time,
//     Phone, then passthrough columns. BrandCode, Lang and the raw
//     RegistrationDate never appear.
//   - rejected: a canonical superset schema fixed up front regardless of
//     rejection cause: Reason, BrandCode, Lang, FirstName, LastName,
//     RegistrationDate, Registration Date, Registration Time, Phone, then
//     passthrough columns. BrandCode/Lang are restored from the discard log
//     for rows rejected after pruning.
//   - discards: Row, BrandCode, Lang for every input row.
//
// Every file is first written to a temp file in its destination directory;
// the temp files are renamed into place only after all of them were written,
// so a failed run leaves no output behind.
package output

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"

	"github.com/regscrub/runtime/internal/errhandling"
	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/pkg/pipeline"
)

// TypeCSV is the registered type name of the CSV output module.
const TypeCSV = "csv"

// Output column names introduced by the pipeline.
const (
	ColReason           = "Reason"
	ColRegistrationDay  = "Registration Date"
	ColRegistrationTime = "Registration Time"
	ColDiscardRow       = "Row"
)

// Error types for the CSV output module
var (
	ErrCSVOutputNilConfig       = errors.New("csv output configuration is nil")
	ErrCSVOutputMissingAccepted = errors.New("acceptedPath is required for csv output")
	ErrCSVOutputMissingRejected = errors.New("rejectedPath is required for csv output")
)

// CSVOutputConfig holds configuration for the CSV output module.
type CSVOutputConfig struct {
	// AcceptedPath is the destination for rows passing every stage
	AcceptedPath string `json:"acceptedPath"`
	// RejectedPath is the destination for rejected rows
	RejectedPath string `json:"rejectedPath"`
	// DiscardsPath is the destination for pruned column values.
	// Empty skips the discards file.
	DiscardsPath string `json:"discardsPath"`
}

// CSVOutput implements the csv output module.
type CSVOutput struct {
	config CSVOutputConfig
}

// NewCSVFromConfig creates a new CSV output module from configuration.
func NewCSVFromConfig(cfg *pipeline.ModuleConfig) (*CSVOutput, error) {
	if cfg == nil {
		return nil, ErrCSVOutputNilConfig
	}

	config := CSVOutputConfig{
		AcceptedPath: cast.ToString(cfg.Config["acceptedPath"]),
		RejectedPath: cast.ToString(cfg.Config["rejectedPath"]),
		DiscardsPath: cast.ToString(cfg.Config["discardsPath"]),
	}
	if config.AcceptedPath == "" {
		return nil, ErrCSVOutputMissingAccepted
	}
	if config.RejectedPath == "" {
		return nil, ErrCSVOutputMissingRejected
	}

	logger.Debug("csv output module created",
		"accepted_path", config.AcceptedPath,
		"rejected_path", config.RejectedPath,
		"discards_path", config.DiscardsPath,
	)

	return &CSVOutput{config: config}, nil
}

// Write implements the output.Module interface.
func (m *CSVOutput) Write(ctx context.Context, outcome *Outcome) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	files := []outputFile{
		{m.config.AcceptedPath, AcceptedHeader(outcome.ExtraHeader), acceptedRows(outcome)},
		{m.config.RejectedPath, RejectedHeader(outcome.ExtraHeader), rejectedRows(outcome)},
	}
	if m.config.DiscardsPath != "" {
		files = append(files, outputFile{
			m.config.DiscardsPath,
			[]string{ColDiscardRow, record.ColBrandCode, record.ColLang},
			discardRows(outcome),
		})
	}

	// Stage every file as a temp first, commit all renames only once every
	// write succeeded. A failure part-way through leaves no output behind.
	tmpPaths := make([]string, 0, len(files))
	removeTemps := func() {
		for _, p := range tmpPaths {
			_ = os.Remove(p)
		}
	}
	for _, f := range files {
		tmpPath, err := writeCSVTemp(f.path, f.header, f.rows)
		if err != nil {
			removeTemps()
			return err
		}
		tmpPaths = append(tmpPaths, tmpPath)
	}
	for i, f := range files {
		if err := os.Rename(tmpPaths[i], f.path); err != nil {
			removeTemps()
			return errhandling.WrapIO(err, fmt.Sprintf("renaming %s into place", f.path))
		}
	}

	logger.Debug("outputs written",
		"accepted_rows", len(outcome.Accepted),
		"rejected_rows", len(outcome.Rejected),
	)
	return nil
}

// AcceptedHeader returns the accepted file's column order.
func AcceptedHeader(extraHeader []string) []string {
	header := []string{
		record.ColFirstName,
		record.ColLastName,
		ColRegistrationDay,
		ColRegistrationTime,
		record.ColPhone,
	}
	return append(header, extraHeader...)
}

// RejectedHeader returns the rejected file's canonical superset column order.
func RejectedHeader(extraHeader []string) []string {
	header := []string{
		ColReason,
		record.ColBrandCode,
		record.ColLang,
		record.ColFirstName,
		record.ColLastName,
		record.ColRegistrationDate,
		ColRegistrationDay,
		ColRegistrationTime,
		record.ColPhone,
	}
	return append(header, extraHeader...)
}

// outputFile pairs a destination path with its rendered content.
type outputFile struct {
	path   string
	header []string
	rows   [][]string
}

// acceptedRows renders the accepted rows in the accepted file's column order.
func acceptedRows(outcome *Outcome) [][]string {
	rows := make([][]string, 0, len(outcome.Accepted))
	for _, row := range outcome.Accepted {
		fields := []string{
			row.FirstName,
			row.LastName,
			row.RegDate,
			row.RegTime,
			row.Phone,
		}
		for _, name := range outcome.ExtraHeader {
			fields = append(fields, row.ExtraValue(name))
		}
		rows = append(rows, fields)
	}
	return rows
}

// rejectedRows renders the rejected rows in the canonical superset column
// order, restoring BrandCode/Lang from the discard log where present.
func rejectedRows(outcome *Outcome) [][]string {
	rows := make([][]string, 0, len(outcome.Rejected))
	for _, rejection := range outcome.Rejected {
		row := rejection.Row
		brand, lang := row.BrandCode, row.Lang
		if outcome.Discards != nil {
			if d, ok := outcome.Discards.Lookup(row.Line); ok {
				brand, lang = d.BrandCode, d.Lang
			}
		}
		fields := []string{
			rejection.Reason.String(),
			brand,
			lang,
			row.FirstName,
			row.LastName,
			row.RegistrationDate,
			row.RegDate,
			row.RegTime,
			row.Phone,
		}
		for _, name := range outcome.ExtraHeader {
			fields = append(fields, row.ExtraValue(name))
		}
		rows = append(rows, fields)
	}
	return rows
}

// discardRows renders the pruned-column side output rows.
func discardRows(outcome *Outcome) [][]string {
	var rows [][]string
	if outcome.Discards != nil {
		entries := outcome.Discards.Entries()
		rows = make([][]string, 0, len(entries))
		for _, d := range entries {
			rows = append(rows, []string{fmt.Sprintf("%d", d.Line), d.BrandCode, d.Lang})
		}
	}
	return rows
}

// writeCSVTemp writes header+rows to a temp file in path's directory and
// returns the temp path; the caller renames it into place on commit.
func writeCSVTemp(path string, header []string, rows [][]string) (string, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", errhandling.WrapIO(err, fmt.Sprintf("creating temp file for %s", path))
	}
	tmpPath := tmp.Name()

	writer := csv.NewWriter(tmp)
	writeErr := writer.Write(header)
	if writeErr == nil {
		writeErr = writer.WriteAll(rows)
	}
	if writeErr == nil {
		writer.Flush()
		writeErr = writer.Error()
	}

	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return "", errhandling.WrapIO(writeErr, fmt.Sprintf("writing %s", path))
	}
	return tmpPath, nil
}

// Close implements the output.Module interface.
func (m *CSVOutput) Close() error {
	return nil
}

// Verify interface compliance at compile time
var _ Module = (*CSVOutput)(nil)
