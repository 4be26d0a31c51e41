// Package input provides implementations for input modules.
// CSVInput loads a registration dataset from a local CSV file.
package input

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cast"

	"github.com/regscrub/runtime/internal/errhandling"
	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/pkg/pipeline"
)

// TypeCSV is the registered type name of the CSV input module.
const TypeCSV = "csv"

// Error types for the CSV input module
var (
	ErrCSVNilConfig   = errors.New("csv input configuration is nil")
	ErrCSVMissingPath = errors.New("path is required for csv input")
)

// CSVInputConfig holds configuration for the CSV input module.
type CSVInputConfig struct {
	// Path is the CSV file to read
	Path string `json:"path"`
	// Comma overrides the field delimiter (single character, default ",")
	Comma string `json:"comma"`
	// TrimSpace trims surrounding whitespace from every field value
	TrimSpace bool `json:"trimSpace"`
}

// CSVInput implements the csv input module.
type CSVInput struct {
	config CSVInputConfig
}

// NewCSVFromConfig creates a new CSV input module from configuration.
func NewCSVFromConfig(cfg *pipeline.ModuleConfig) (*CSVInput, error) {
	if cfg == nil {
		return nil, ErrCSVNilConfig
	}

	config := parseCSVInputConfig(cfg.Config)
	if config.Path == "" {
		return nil, ErrCSVMissingPath
	}
	if len(config.Comma) > 1 {
		return nil, fmt.Errorf("comma must be a single character, got %q", config.Comma)
	}

	logger.Debug("csv input module created",
		"path", config.Path,
		"trim_space", config.TrimSpace,
	)

	return &CSVInput{config: config}, nil
}

// parseCSVInputConfig parses the raw configuration map into CSVInputConfig.
func parseCSVInputConfig(cfg map[string]interface{}) CSVInputConfig {
	return CSVInputConfig{
		Path:      cast.ToString(cfg["path"]),
		Comma:     cast.ToString(cfg["comma"]),
		TrimSpace: cast.ToBool(cfg["trimSpace"]),
	}
}

// Fetch implements the input.Module interface.
// It reads the whole file into memory, validates the header, and builds the
// typed dataset. Rows are numbered from 1 in file order.
func (m *CSVInput) Fetch(ctx context.Context) (*record.Dataset, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := os.Open(m.config.Path)
	if err != nil {
		return nil, errhandling.WrapIO(err, fmt.Sprintf("opening csv file %s", m.config.Path))
	}
	defer f.Close()

	reader := csv.NewReader(f)
	if m.config.Comma != "" {
		reader.Comma = rune(m.config.Comma[0])
	}
	// Header length governs; short rows are structural errors.
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errhandling.NewStructural("csv file %s is empty: header row required", m.config.Path)
		}
		return nil, errhandling.WrapIO(err, fmt.Sprintf("reading csv header from %s", m.config.Path))
	}

	cols, extraHeader, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	dataset := &record.Dataset{ExtraHeader: extraHeader}

	line := 0
	for {
		if line > 0 && line%1000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		fields, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, errhandling.WrapIO(readErr, fmt.Sprintf("reading csv row from %s", m.config.Path))
		}

		line++
		dataset.Rows = append(dataset.Rows, m.buildRow(line, header, cols, fields))
	}

	logger.Debug("csv input fetched",
		"path", m.config.Path,
		"rows", len(dataset.Rows),
		"extra_columns", len(extraHeader),
	)

	return dataset, nil
}

// columnIndexes maps required column names to their header positions.
type columnIndexes map[string]int

// resolveColumns validates that every required column is present and returns
// the required-column index map plus the passthrough header in source order.
func resolveColumns(header []string) (columnIndexes, []string, error) {
	cols := make(columnIndexes, len(record.RequiredColumns))
	required := make(map[string]bool, len(record.RequiredColumns))
	for _, name := range record.RequiredColumns {
		required[name] = true
	}

	var extraHeader []string
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if required[name] {
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
			continue
		}
		extraHeader = append(extraHeader, name)
	}

	var missing []string
	for _, name := range record.RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, errhandling.NewStructural("missing required columns: %s", strings.Join(missing, ", "))
	}

	return cols, extraHeader, nil
}

// buildRow builds a typed row from one CSV record.
func (m *CSVInput) buildRow(line int, header []string, cols columnIndexes, fields []string) record.Row {
	get := func(name string) string {
		idx := cols[name]
		if idx >= len(fields) {
			return ""
		}
		v := fields[idx]
		if m.config.TrimSpace {
			v = strings.TrimSpace(v)
		}
		return v
	}

	row := record.Row{
		Line:             line,
		BrandCode:        get(record.ColBrandCode),
		Lang:             get(record.ColLang),
		RegistrationDate: get(record.ColRegistrationDate),
		FirstName:        get(record.ColFirstName),
		LastName:         get(record.ColLastName),
		Phone:            get(record.ColPhone),
	}

	requiredIdx := make(map[int]bool, len(cols))
	for _, idx := range cols {
		requiredIdx[idx] = true
	}
	for i, raw := range header {
		if requiredIdx[i] || i >= len(fields) {
			continue
		}
		if row.Extra == nil {
			row.Extra = make(map[string]string)
		}
		v := fields[i]
		if m.config.TrimSpace {
			v = strings.TrimSpace(v)
		}
		row.Extra[strings.TrimSpace(raw)] = v
	}

	return row
}

// Close implements the input.Module interface. The file handle is scoped to
// Fetch, so there is nothing to release.
func (m *CSVInput) Close() error {
	return nil
}

// Verify interface compliance at compile time
var _ Module = (*CSVInput)(nil)
