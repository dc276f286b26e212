package core

import (
	"strconv"
	"strings"
	"time"
)

// Canonical field names a source sheet must provide after aliasing.
const (
	FieldPatient      = "paciente"
	FieldOrigin       = "origen"
	FieldServiceType  = "tipo_servicio"
	FieldProfessional = "profesional"
	FieldInsurer      = "obra_social"
	FieldDate         = "fecha"
	FieldQuantity     = "cantidad_practicas"
)

// RequiredFields lists the canonical fields in the order they are stored.
var RequiredFields = []string{
	FieldPatient,
	FieldOrigin,
	FieldServiceType,
	FieldProfessional,
	FieldInsurer,
	FieldDate,
	FieldQuantity,
}

type (
	// Table is a raw sheet: a header row plus data rows, every cell as text.
	Table struct {
		Header []string
		Rows   [][]string
	}

	// ProcedureRecord is one billed procedure after cleaning.
	// Empty category strings mean the value was missing in the source.
	ProcedureRecord struct {
		Patient      string
		Origin       string
		ServiceType  string
		Professional string
		Insurer      string
		Date         time.Time
		Quantity     float64
	}
)

// Cell returns the trimmed value at column idx or "" when the row is short.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Year returns the 4-digit year used as the top-level output key.
func (r ProcedureRecord) Year() string {
	return strconv.Itoa(r.Date.Year())
}

// MonthNumber returns the month 1-12.
func (r ProcedureRecord) MonthNumber() int {
	return int(r.Date.Month())
}

// MonthName returns the Spanish month name.
func (r ProcedureRecord) MonthName() string {
	return MonthName(r.MonthNumber())
}

// WeekdayName returns the Spanish weekday name.
func (r ProcedureRecord) WeekdayName() string {
	return WeekdayName(r.Date.Weekday())
}

// Day returns the day of the month.
func (r ProcedureRecord) Day() int {
	return r.Date.Day()
}
