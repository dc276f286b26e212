package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tablero/internal/core"
)

// Stats counts what Normalize kept and dropped.
type Stats struct {
	Rows              int
	EmptyRows         int
	InvalidDates      int
	CoercedQuantities int
	Records           int
}

// Dropped returns the number of rows excluded from every aggregate.
func (s Stats) Dropped() int {
	return s.EmptyRows + s.InvalidDates
}

// Excel stores dates as days since 1899-12-30; 2958465 is 9999-12-31.
const maxExcelSerial = 2958465

var dateLayouts = []string{
	"2006-1-2",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2T15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006",
	"2.1.2006",
}

// Normalize drops empty rows and rows without a usable date, then types
// the remaining cells. A missing required column is the only error.
func Normalize(t core.Table, m ColumnMapping) ([]core.ProcedureRecord, Stats, error) {
	var st Stats
	if len(t.Header) == 0 {
		return nil, st, core.ErrEmptySheet
	}
	idx, err := m.Resolve(t.Header)
	if err != nil {
		return nil, st, err
	}

	records := make([]core.ProcedureRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		st.Rows++
		if isBlankRow(row) {
			st.EmptyRows++
			continue
		}
		date, ok := ParseDate(core.Cell(row, idx[core.FieldDate]))
		if !ok {
			st.InvalidDates++
			continue
		}
		qty, ok := ParseQuantity(core.Cell(row, idx[core.FieldQuantity]))
		if !ok {
			st.CoercedQuantities++
		}
		records = append(records, core.ProcedureRecord{
			Patient:      core.Cell(row, idx[core.FieldPatient]),
			Origin:       core.Cell(row, idx[core.FieldOrigin]),
			ServiceType:  core.Cell(row, idx[core.FieldServiceType]),
			Professional: core.Cell(row, idx[core.FieldProfessional]),
			Insurer:      core.Cell(row, idx[core.FieldInsurer]),
			Date:         date,
			Quantity:     qty,
		})
	}
	st.Records = len(records)
	return records, st, nil
}

// ParseDate accepts spreadsheet serial numbers, ISO dates and day-first
// dd/mm/yyyy text. The result is midnight UTC of that calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || f < 1 || f > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

// ParseQuantity reads a number with either '.' or ',' as decimal separator.
// Anything else yields 0 and false.
func ParseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
