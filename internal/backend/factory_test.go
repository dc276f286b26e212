package backend

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"tablero/internal/config"
	"tablero/internal/core"
)

func TestBackendType_IsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("memory").IsValid() {
		t.Error("memory is not a source backend")
	}
	if got := GetBackendTypeStrings(); !reflect.DeepEqual(got, []string{"xlsx", "sheets", "sqlite", "csv"}) {
		t.Errorf("unexpected type strings: %v", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"xlsx ok", Config{Type: XLSXBackend, InputPath: "BASE_DIAG.xlsx"}, false},
		{"xlsx without path", Config{Type: XLSXBackend}, true},
		{"csv without path", Config{Type: CSVBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sheets without id", Config{Type: SheetsBackend}, true},
		{"unknown type", Config{Type: "parquet"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	app := &config.Config{
		SourceBackend:       "sheets",
		SheetName:           "datos",
		GoogleSpreadsheetID: "abc",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SheetsBackend || cfg.GoogleSpreadsheetID != "abc" || cfg.SheetName != "datos" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	app.SourceBackend = "memory"
	if _, err := FromAppConfig(app); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestCreateBackend_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "datos.csv")
	f := NewFactory(nil)

	res, err := f.CreateBackend(context.Background(), Config{Type: CSVBackend, InputPath: path})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer res.Close()

	// the file is resolved per read
	if _, err := res.Backend.ReadTable(context.Background()); !core.IsSourceNotFound(err) {
		t.Fatalf("expected source-not-found before file exists, got %v", err)
	}
	if err := os.WriteFile(path, []byte("PACIENTE,ORIGEN\nAna,Clinica\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := res.Backend.ReadTable(context.Background())
	if err != nil || tbl.Len() != 1 {
		t.Fatalf("read: %v (%d rows)", err, tbl.Len())
	}
}

func TestCreateBackend_XLSXMissingFile(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:      XLSXBackend,
		InputPath: filepath.Join(t.TempDir(), "BASE_DIAG.xlsx"),
		SheetName: "datos",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.Cleanup != nil {
		t.Error("xlsx backend needs no cleanup")
	}
	if _, err := res.Backend.ReadTable(context.Background()); !core.IsSourceNotFound(err) {
		t.Fatalf("expected source-not-found, got %v", err)
	}
}

func TestCreateBackend_SQLite(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "tablero.db"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tbl, err := res.Backend.ReadTable(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if tbl.Len() != 0 || len(tbl.Header) != len(core.RequiredFields) {
		t.Fatalf("fresh store should be empty with canonical header: %+v", tbl)
	}
	if err := res.Close(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
}

func TestCreateBackend_Invalid(t *testing.T) {
	if _, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Fatal("expected error")
	}
}
