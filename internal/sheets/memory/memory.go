package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"tablero/internal/core"
	ports "tablero/internal/sheets"
)

var _ ports.TableReader = (*Store)(nil)

// Store serves a table held in memory.
type Store struct {
	mu    sync.Mutex
	table core.Table
}

func New(t core.Table) *Store {
	return &Store{table: copyTable(t)}
}

// NewFromCSV reads a comma- or semicolon-separated export of the sheet.
func NewFromCSV(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &core.SourceNotFoundError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return New(t), nil
}

// ReadCSV parses r into a table, detecting ';' when the header uses it.
func ReadCSV(r io.Reader) (core.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return core.Table{}, err
	}
	text := strings.TrimPrefix(string(b), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.FieldsPerRecord = -1
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return core.Table{}, err
	}
	if len(rows) == 0 {
		return core.Table{}, nil
	}
	return core.Table{Header: rows[0], Rows: rows[1:]}, nil
}

// ReadTable returns a copy of the stored table.
func (s *Store) ReadTable(_ context.Context) (core.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTable(s.table), nil
}

// Replace swaps the stored table.
func (s *Store) Replace(t core.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = copyTable(t)
}

func copyTable(t core.Table) core.Table {
	out := core.Table{Header: append([]string(nil), t.Header...)}
	out.Rows = make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	return out
}
