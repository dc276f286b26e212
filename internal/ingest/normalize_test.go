package ingest

import (
	"errors"
	"testing"
	"time"

	"tablero/internal/core"
)

var sheetHeader = []string{"PACIENTE", "ORIGEN", "SERVICIO", "PROFESIONAL", "Obra social", "Fecha_Realizacion", "CANTIDAD", "ANIO", "MES"}

func TestNormalize_DropsEmptyAndUndatedRows(t *testing.T) {
	tbl := core.Table{
		Header: sheetHeader,
		Rows: [][]string{
			{"Ana", "Clinica", "Eco", "Dr.Ruiz", "OSDE", "45356", "2", "2024", "Marzo"},
			{"", "", "", "", "", "", "", "", ""},
			{"Luis", "Guardia", "Rx", "Dr.Paz", "PAMI", "no es fecha", "1", "2024", "Marzo"},
			{"  ", " "},
			{"Ana", "Clinica", "Eco", "Dr.Ruiz", "OSDE", "12/03/2024", "uno", "2023", "Enero"},
		},
	}
	recs, st, err := Normalize(tbl, DefaultColumnMapping())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if st.Rows != 5 || st.EmptyRows != 2 || st.InvalidDates != 1 || st.CoercedQuantities != 1 || st.Records != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.Dropped() != 3 {
		t.Fatalf("dropped = %d", st.Dropped())
	}

	first := recs[0]
	if first.Patient != "Ana" || first.Insurer != "OSDE" || first.Quantity != 2 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if !first.Date.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("serial date parsed as %v", first.Date)
	}
	// Manual ANIO/MES columns never override the parsed date.
	second := recs[1]
	if second.Year() != "2024" || second.MonthName() != "Marzo" || second.Day() != 12 {
		t.Fatalf("unexpected second date: %v", second.Date)
	}
	if second.Quantity != 0 {
		t.Fatalf("unparseable quantity should be 0, got %v", second.Quantity)
	}
}

func TestNormalize_MissingColumn(t *testing.T) {
	tbl := core.Table{
		Header: []string{"PACIENTE", "ORIGEN", "SERVICIO", "PROFESIONAL", "Fecha_Realizacion", "CANTIDAD"},
		Rows:   [][]string{{"Ana", "Clinica", "Eco", "Dr.Ruiz", "2024-03-05", "1"}},
	}
	_, _, err := Normalize(tbl, DefaultColumnMapping())
	if !errors.Is(err, core.ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}

func TestNormalize_EmptySheet(t *testing.T) {
	_, _, err := Normalize(core.Table{}, DefaultColumnMapping())
	if !errors.Is(err, core.ErrEmptySheet) {
		t.Fatalf("expected ErrEmptySheet, got %v", err)
	}
}

func TestNormalize_CanonicalHeaders(t *testing.T) {
	tbl := core.Table{
		Header: core.RequiredFields,
		Rows:   [][]string{{"Ana", "Clinica", "Eco", "Dr.Ruiz", "OSDE", "2024-03-05", "1,5"}},
	}
	recs, _, err := Normalize(tbl, ColumnMapping{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if len(recs) != 1 || recs[0].Quantity != 1.5 {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05 14:30:00", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-05T14:30:00Z", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"05/03/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"05-03-2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		// slashed text dates are day-first; the sheet is kept in dd/mm/yyyy
		{"03/05/2024", time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), true},
		{"13/03/2024", time.Date(2024, 3, 13, 0, 0, 0, 0, time.UTC), true},
		{"03/13/2024", time.Time{}, false},
		{"45356", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"45356.75", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"sin fecha", time.Time{}, false},
		{"31/02/2024", time.Time{}, false},
		{"0", time.Time{}, false},
		{"-3", time.Time{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if ok && !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"2", 2, true},
		{" 3 ", 3, true},
		{"1.5", 1.5, true},
		{"1,5", 1.5, true},
		{"", 0, false},
		{"dos", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseQuantity(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseQuantity(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
