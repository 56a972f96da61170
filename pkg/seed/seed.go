package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/model"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

// Column names of the catalog CSV
const (
	ColumnIdentifier  = "identifier"
	ColumnName        = "name"
	ColumnControlText = "control_text"
	ColumnDiscussion  = "discussion"
	ColumnRelated     = "related"
)

var requiredColumns = []string{ColumnIdentifier, ColumnName, ColumnControlText}

// Result summarizes one seeding run
type Result struct {
	// Ran is false when the library already had rows or the file was absent
	Ran      bool
	Inserted int
	// Skipped counts rows dropped for a blank or repeated identifier
	Skipped int
}

// Seeder loads the reference library from a catalog CSV, once
type Seeder struct {
	library store.LibraryStore
	path    string
	logger  *zap.Logger
}

// New creates a Seeder reading from path
func New(library store.LibraryStore, path string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{library: library, path: path, logger: logger}
}

// Run seeds the library if and only if it is empty. A missing catalog file
// is not an error; seeding is skipped.
func (s *Seeder) Run() (Result, error) {
	empty, err := s.library.IsEmpty()
	if err != nil {
		return Result{}, fmt.Errorf("failed to check reference library: %w", err)
	}
	if !empty {
		s.logger.Debug("reference library already populated, skipping seed")
		return Result{}, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("seed file not found, skipping seed", zap.String("path", s.path))
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	controls, skipped, err := Parse(f)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse seed file %s: %w", s.path, err)
	}

	if err := s.library.Insert(controls); err != nil {
		return Result{}, fmt.Errorf("failed to insert reference library: %w", err)
	}

	s.logger.Info("reference library loaded",
		zap.String("path", s.path),
		zap.Int("inserted", len(controls)),
		zap.Int("skipped", skipped))
	return Result{Ran: true, Inserted: len(controls), Skipped: skipped}, nil
}

// Parse reads a header-keyed catalog CSV. Column order is free and unknown
// columns are ignored. Rows with a blank identifier, or an identifier seen
// earlier in the file, are skipped and counted.
func Parse(r io.Reader) ([]model.ControlReference, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		// A zero-byte file is a catalog with no rows
		if errors.Is(err, io.EOF) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, 0, fmt.Errorf("missing required column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	optional := func(record []string, name string) *string {
		v := field(record, name)
		if v == "" {
			return nil
		}
		return &v
	}

	var controls []model.ControlReference
	seen := map[string]bool{}
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}

		identifier := strings.TrimSpace(field(record, ColumnIdentifier))
		if identifier == "" || seen[identifier] {
			skipped++
			continue
		}
		seen[identifier] = true

		controls = append(controls, model.ControlReference{
			Identifier:  identifier,
			Name:        field(record, ColumnName),
			ControlText: field(record, ColumnControlText),
			Discussion:  optional(record, ColumnDiscussion),
			Related:     optional(record, ColumnRelated),
		})
	}
	return controls, skipped, nil
}
