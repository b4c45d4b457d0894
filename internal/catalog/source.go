package catalog

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

// Source streams catalog records. Records stops at the first error returned
// by fn and returns it.
type Source interface {
	Name() string
	Records(ctx context.Context, fn func(Record) error) error
}

// CSVSource reads records from a comma-separated file.
type CSVSource struct {
	Path       string
	IDColumn   int
	NameColumn int
	// Header skips the first row.
	Header bool

	open func() (io.ReadCloser, error)
}

func NewCSVSource(path string, idColumn, nameColumn int, header bool) *CSVSource {
	return &CSVSource{
		Path:       path,
		IDColumn:   idColumn,
		NameColumn: nameColumn,
		Header:     header,
		open:       func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// NewCSVReaderSource reads records from r instead of a file.
func NewCSVReaderSource(r io.Reader, idColumn, nameColumn int, header bool) *CSVSource {
	return &CSVSource{
		Path:       "reader",
		IDColumn:   idColumn,
		NameColumn: nameColumn,
		Header:     header,
		open:       func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func (s *CSVSource) Name() string { return "csv:" + s.Path }

func (s *CSVSource) Records(ctx context.Context, fn func(Record) error) error {
	f, err := s.open()
	if err != nil {
		return fmt.Errorf("opening catalog %s: %w", s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	need := max(s.IDColumn, s.NameColumn) + 1
	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading catalog %s: %w", s.Path, err)
		}
		if line == 1 && s.Header {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(row) < need {
			return fmt.Errorf("catalog %s line %d: %d columns, need %d", s.Path, line, len(row), need)
		}
		if err := fn(Record{ID: row[s.IDColumn], Name: row[s.NameColumn], Line: line}); err != nil {
			return err
		}
	}
}

// Querier is the subset of *sql.DB used by PostgresSource.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresSource reads records with a query selecting (id, name).
type PostgresSource struct {
	db    Querier
	query string
}

func NewPostgresSource(db Querier, query string) *PostgresSource {
	return &PostgresSource{db: db, query: query}
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Records(ctx context.Context, fn func(Record) error) error {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	line := 0
	for rows.Next() {
		line++
		var id, name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return fmt.Errorf("scanning catalog row %d: %w", line, err)
		}
		if err := fn(Record{ID: id.String, Name: name.String, Line: line}); err != nil {
			return err
		}
	}
	return rows.Err()
}
