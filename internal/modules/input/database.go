// Package input provides implementations for input modules.
// DatabaseInput loads a registration dataset from a SQL query.
package input

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/regscrub/runtime/internal/database"
	"github.com/regscrub/runtime/internal/errhandling"
	"github.com/regscrub/runtime/internal/logger"
	"github.com/regscrub/runtime/internal/record"
	"github.com/regscrub/runtime/pkg/pipeline"
)

// TypeDatabase is the registered type name of the database input module.
const TypeDatabase = "database"

// Default configuration values for database input
const (
	defaultDatabaseTimeout = 30 * time.Second
)

// Error types for the database input module
var (
	ErrDatabaseNilConfig      = errors.New("database input configuration is nil")
	ErrDatabaseMissingQuery   = errors.New("query is required for database input")
	ErrDatabaseMissingConnStr = errors.New("connection string is required for database input")
)

// DatabaseInputConfig holds configuration for the database input module.
type DatabaseInputConfig struct {
	// ConnectionString is the driver-specific DSN
	ConnectionString string `json:"connectionString"`
	// Driver overrides the driver inferred from the connection string
	Driver string `json:"driver"`
	// Query is the SQL query returning the required registration columns
	Query string `json:"query"`
	// TimeoutMs bounds query execution (default 30s)
	TimeoutMs int `json:"timeoutMs"`
}

// DatabaseInput implements the database input module. The query result must
// contain the same required columns as a CSV header; any other selected
// columns become passthrough columns.
type DatabaseInput struct {
	config  DatabaseInputConfig
	db      *sql.DB
	driver  string
	timeout time.Duration
}

// NewDatabaseFromConfig creates a new database input module from configuration.
// It opens and pings the connection immediately so structural connection
// problems surface before the run starts.
func NewDatabaseFromConfig(cfg *pipeline.ModuleConfig) (*DatabaseInput, error) {
	if cfg == nil {
		return nil, ErrDatabaseNilConfig
	}

	config := parseDatabaseInputConfig(cfg.Config)
	if config.Query == "" {
		return nil, ErrDatabaseMissingQuery
	}
	if config.ConnectionString == "" {
		return nil, ErrDatabaseMissingConnStr
	}

	timeout := defaultDatabaseTimeout
	if config.TimeoutMs > 0 {
		timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	}

	db, driver, err := database.Open(database.Config{
		ConnectionString: config.ConnectionString,
		Driver:           config.Driver,
		ConnectTimeout:   timeout,
	})
	if err != nil {
		return nil, errhandling.WrapIO(err, "connecting to database")
	}

	logger.Debug("database input module created",
		"driver", driver,
		"timeout", timeout.String(),
	)

	return &DatabaseInput{
		config:  config,
		db:      db,
		driver:  driver,
		timeout: timeout,
	}, nil
}

// parseDatabaseInputConfig parses the raw configuration map.
func parseDatabaseInputConfig(cfg map[string]interface{}) DatabaseInputConfig {
	return DatabaseInputConfig{
		ConnectionString: cast.ToString(cfg["connectionString"]),
		Driver:           cast.ToString(cfg["driver"]),
		Query:            cast.ToString(cfg["query"]),
		TimeoutMs:        cast.ToInt(cfg["timeoutMs"]),
	}
}

// Fetch implements the input.Module interface.
func (m *DatabaseInput) Fetch(ctx context.Context) (*record.Dataset, error) {
	queryCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	rows, err := m.db.QueryContext(queryCtx, m.config.Query)
	if err != nil {
		return nil, errhandling.WrapIO(err, "executing input query")
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errhandling.WrapIO(err, "reading result columns")
	}

	cols, extraHeader, err := resolveColumns(columns)
	if err != nil {
		return nil, err
	}

	dataset := &record.Dataset{ExtraHeader: extraHeader}

	line := 0
	values := make([]interface{}, len(columns))
	scanArgs := make([]interface{}, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, errhandling.WrapIO(err, "scanning result row")
		}

		line++
		fields := make([]string, len(columns))
		for i, v := range values {
			fields[i] = sqlValueToString(v)
		}
		dataset.Rows = append(dataset.Rows, buildDatabaseRow(line, columns, cols, fields))
	}
	if err := rows.Err(); err != nil {
		return nil, errhandling.WrapIO(err, "iterating result rows")
	}

	logger.Debug("database input fetched",
		"driver", m.driver,
		"rows", len(dataset.Rows),
		"extra_columns", len(extraHeader),
	)

	return dataset, nil
}

// buildDatabaseRow builds a typed row from one scanned result row.
func buildDatabaseRow(line int, columns []string, cols columnIndexes, fields []string) record.Row {
	get := func(name string) string {
		idx := cols[name]
		if idx >= len(fields) {
			return ""
		}
		return fields[idx]
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
	for i, name := range columns {
		if requiredIdx[i] || i >= len(fields) {
			continue
		}
		if row.Extra == nil {
			row.Extra = make(map[string]string)
		}
		row.Extra[strings.TrimSpace(name)] = fields[i]
	}

	return row
}

// sqlValueToString renders a scanned sql value as the string the pipeline
// predicates operate on. NULL becomes the empty string, matching an absent
// CSV field; timestamps use the layout the timeSplit stage accepts.
func sqlValueToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// Close implements the input.Module interface.
func (m *DatabaseInput) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Verify interface compliance at compile time
var _ Module = (*DatabaseInput)(nil)
