package memory

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tablero/internal/core"
)

func TestStoreReadTableReturnsCopy(t *testing.T) {
	s := New(core.Table{Header: []string{"A"}, Rows: [][]string{{"1"}}})
	got, err := s.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got.Rows[0][0] = "changed"

	again, _ := s.ReadTable(context.Background())
	if again.Rows[0][0] != "1" {
		t.Fatalf("store was mutated through returned table")
	}

	s.Replace(core.Table{Header: []string{"B"}})
	again, _ = s.ReadTable(context.Background())
	if !reflect.DeepEqual(again.Header, []string{"B"}) || len(again.Rows) != 0 {
		t.Fatalf("replace failed: %+v", again)
	}
}

func TestReadCSV_Delimiters(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"comma", "PACIENTE,CANTIDAD\nAna,2\nLuis,1\n"},
		{"semicolon with BOM", "\ufeffPACIENTE;CANTIDAD\nAna;2\nLuis;1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := ReadCSV(strings.NewReader(tc.in))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !reflect.DeepEqual(tbl.Header, []string{"PACIENTE", "CANTIDAD"}) {
				t.Fatalf("header = %q", tbl.Header)
			}
			if tbl.Len() != 2 || tbl.Rows[1][0] != "Luis" {
				t.Fatalf("rows = %v", tbl.Rows)
			}
		})
	}
}

func TestNewFromCSV(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewFromCSV(filepath.Join(dir, "missing.csv")); !core.IsSourceNotFound(err) {
		t.Fatalf("expected source-not-found, got %v", err)
	}

	path := filepath.Join(dir, "datos.csv")
	content := "PACIENTE,ORIGEN\nAna,Clinica\n\nLuis\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewFromCSV(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	tbl, _ := s.ReadTable(context.Background())
	// encoding/csv skips blank lines; short rows are kept
	if tbl.Len() != 2 || len(tbl.Rows[1]) != 1 {
		t.Fatalf("rows = %v", tbl.Rows)
	}
}
