package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tablero/internal/backend"
	"tablero/internal/config"
	"tablero/internal/ingest"
)

func TestLoadColumnMapping(t *testing.T) {
	m, err := LoadColumnMapping(&config.Config{})
	if err != nil {
		t.Fatalf("default mapping: %v", err)
	}
	if len(m) != len(ingest.DefaultColumnMapping()) {
		t.Errorf("expected the default mapping, got %v", m)
	}

	if _, err := LoadColumnMapping(&config.Config{ColumnMapFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatal("expected error for missing column map")
	}
}

func TestOpenSource_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datos.csv")
	if err := os.WriteFile(path, []byte("PACIENTE,CANTIDAD\nAna,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := OpenSource(context.Background(), SetupLogger("error"), &config.Config{SourceBackend: string(backend.CSVBackend), InputPath: path})
	if err != nil {
		t.Fatalf("OpenSource: %v", err)
	}
	defer res.Close()

	tbl, err := res.Backend.ReadTable(context.Background())
	if err != nil || tbl.Len() != 1 {
		t.Fatalf("ReadTable = %v, %v", tbl, err)
	}
}

func TestOpenSource_InvalidBackend(t *testing.T) {
	if _, err := OpenSource(context.Background(), SetupLogger("error"), &config.Config{SourceBackend: "ftp"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestShutdown(t *testing.T) {
	logger := SetupLogger("error")
	called := false
	Shutdown(logger, time.Second, func(ctx context.Context) error {
		called = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("shutdown context has no deadline")
		}
		return nil
	})
	if !called {
		t.Fatal("shutdown func not called")
	}
	Shutdown(logger, time.Second, func(context.Context) error { return errors.New("stuck") })
}
