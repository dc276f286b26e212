// Package xlsx reads the procedures sheet from a local Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"tablero/internal/core"
	ports "tablero/internal/sheets"
)

var _ ports.TableReader = (*Reader)(nil)

// Reader opens the workbook on every call so edits between runs are seen.
type Reader struct {
	path  string
	sheet string
}

func New(path, sheet string) *Reader {
	if strings.TrimSpace(sheet) == "" {
		sheet = "datos"
	}
	return &Reader{path: path, sheet: sheet}
}

// ReadTable returns the raw cell values of the sheet. Dates are left as
// spreadsheet serial numbers.
func (r *Reader) ReadTable(ctx context.Context) (core.Table, error) {
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return core.Table{}, &core.SourceNotFoundError{Path: r.path, Err: err}
		}
		return core.Table{}, fmt.Errorf("stat %s: %w", r.path, err)
	}
	if err := ctx.Err(); err != nil {
		return core.Table{}, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return core.Table{}, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer f.Close()

	name, ok := findSheet(f.GetSheetList(), r.sheet)
	if !ok {
		return core.Table{}, fmt.Errorf("%w: %s in %s", core.ErrMissingSheet, r.sheet, r.path)
	}

	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Table{}, fmt.Errorf("read sheet %s: %w", name, err)
	}
	if len(rows) == 0 {
		return core.Table{}, nil
	}
	return core.Table{Header: rows[0], Rows: rows[1:]}, nil
}

// findSheet prefers an exact match and falls back to a case-insensitive one.
func findSheet(list []string, want string) (string, bool) {
	for _, s := range list {
		if s == want {
			return s, true
		}
	}
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), want) {
			return s, true
		}
	}
	return "", false
}
