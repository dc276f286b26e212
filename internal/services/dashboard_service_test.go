package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"tablero/internal/core"
	"tablero/internal/log"
	"tablero/internal/sheets/memory"
)

var header = []string{"PACIENTE", "ORIGEN", "SERVICIO", "PROFESIONAL", "Obra social", "Fecha_Realizacion", "CANTIDAD"}

func sampleTable() core.Table {
	return core.Table{
		Header: header,
		Rows: [][]string{
			{"Ana", "Clinica", "Eco", "Dr. X", "OSDE", "2024-03-04", "2"},
			{"Luis", "Externo", "RX", "Dr. Y", "PAMI", "2024-03-06", "1"},
			{"Ana", "Clinica", "RX", "Dr. X", "OSDE", "2023-12-01", "1"},
			{"Eva", "Clinica", "Eco", "Dr. X", "OSDE", "sin fecha", "1"},
			{"", "", "", "", "", "", ""},
		},
	}
}

type failingReader struct{ err error }

func (f failingReader) ReadTable(context.Context) (core.Table, error) {
	return core.Table{}, f.err
}

type recordingNotifier struct {
	calls int
	runID string
	years []string
	err   error
}

func (n *recordingNotifier) PublishDashboardGenerated(_ context.Context, runID, _ string, _ int, years []string) error {
	n.calls++
	n.runID = runID
	n.years = years
	return n.err
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(buf, nil)})
}

func TestGenerate(t *testing.T) {
	svc := NewDashboardService(memory.New(sampleTable()), nil, nil, nil)

	data, report, err := svc.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !reflect.DeepEqual(data.Keys(), []string{"2023", "2024"}) {
		t.Fatalf("years = %v", data.Keys())
	}
	if report.Records != 3 || report.Dropped != 2 || report.RunID == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := report.MonthsByYear["2024"]; !reflect.DeepEqual(got, []string{"Marzo"}) {
		t.Fatalf("months for 2024 = %v", got)
	}
	if !strings.Contains(report.Summary(), "2023: Diciembre") {
		t.Fatalf("summary = %q", report.Summary())
	}
}

func TestRun_WritesAndNotifies(t *testing.T) {
	var buf bytes.Buffer
	notifier := &recordingNotifier{err: errors.New("broker down")}
	svc := NewDashboardService(memory.New(sampleTable()), nil, notifier, testLogger(&buf))
	out := filepath.Join(t.TempDir(), "data.json")

	report, err := svc.Run(context.Background(), out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if len(b) != report.Bytes || !strings.Contains(string(b), `"Diciembre"`) {
		t.Fatalf("unexpected output (%d bytes)", len(b))
	}

	// a failing notifier is logged, not returned
	if notifier.calls != 1 || notifier.runID != report.RunID {
		t.Fatalf("notifier calls=%d runID=%q", notifier.calls, notifier.runID)
	}
	logs := buf.String()
	if !strings.Contains(logs, "Failed to publish dashboard notification") {
		t.Errorf("missing notifier warning in logs:\n%s", logs)
	}
	if !strings.Contains(logs, "Months for year") || !strings.Contains(logs, "year=2024") {
		t.Errorf("missing progress logs:\n%s", logs)
	}
}

func TestRun_SourceNotFound(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data.json")
	missing := &core.SourceNotFoundError{Path: "BASE_DIAG.xlsx", Err: os.ErrNotExist}
	notifier := &recordingNotifier{}
	svc := NewDashboardService(failingReader{err: missing}, nil, notifier, nil)

	_, err := svc.Run(context.Background(), out)
	var nf *core.SourceNotFoundError
	if !errors.As(err, &nf) || nf.Path != "BASE_DIAG.xlsx" {
		t.Fatalf("expected SourceNotFoundError, got %v", err)
	}
	var pe *core.ProcessingError
	if errors.As(err, &pe) {
		t.Fatal("source-not-found must not be wrapped as a processing error")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("nothing should be written when the source is missing")
	}
	if notifier.calls != 0 {
		t.Fatal("no notification expected on failure")
	}
}

func TestRun_ProcessingErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		source core.Table
		out    string
		stage  string
		target error
	}{
		{
			name:   "missing columns",
			source: core.Table{Header: []string{"PACIENTE", "CANTIDAD"}, Rows: [][]string{{"Ana", "1"}}},
			out:    filepath.Join(dir, "a.json"),
			stage:  core.StageNormalize,
			target: core.ErrMissingColumns,
		},
		{
			name:   "empty sheet",
			source: core.Table{},
			out:    filepath.Join(dir, "b.json"),
			stage:  core.StageNormalize,
			target: core.ErrEmptySheet,
		},
		{
			name:   "unwritable output",
			source: sampleTable(),
			out:    filepath.Join(dir, "missing", "c.json"),
			stage:  core.StageWrite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDashboardService(memory.New(tt.source), nil, nil, nil)
			_, err := svc.Run(context.Background(), tt.out)

			var pe *core.ProcessingError
			if !errors.As(err, &pe) {
				t.Fatalf("expected ProcessingError, got %v", err)
			}
			if pe.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", pe.Stage, tt.stage)
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v in chain, got %v", tt.target, err)
			}
			if _, statErr := os.Stat(tt.out); !os.IsNotExist(statErr) {
				t.Errorf("output must not exist after failure")
			}
		})
	}
}

func TestRun_ReadErrorIsProcessingError(t *testing.T) {
	svc := NewDashboardService(failingReader{err: errors.New("permission denied")}, nil, nil, nil)
	_, err := svc.Run(context.Background(), filepath.Join(t.TempDir(), "data.json"))
	var pe *core.ProcessingError
	if !errors.As(err, &pe) || pe.Stage != core.StageRead {
		t.Fatalf("expected read-stage ProcessingError, got %v", err)
	}
}

func TestDocument_Deterministic(t *testing.T) {
	svc := NewDashboardService(memory.New(sampleTable()), nil, nil, nil)
	a, _, err := svc.Document(context.Background())
	if err != nil {
		t.Fatalf("Document() error = %v", err)
	}
	b, _, _ := svc.Document(context.Background())
	if !bytes.Equal(a, b) {
		t.Fatal("identical input must produce identical output")
	}
}

type recordingImporter struct {
	table core.Table
	err   error
}

func (r *recordingImporter) ImportTable(_ context.Context, t core.Table) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.table = t
	return t.Len(), nil
}

func TestImportService(t *testing.T) {
	target := &recordingImporter{}
	svc := NewImportService(memory.New(sampleTable()), target, nil)

	n, err := svc.Import(context.Background())
	if err != nil || n != 5 {
		t.Fatalf("Import() = %d, %v", n, err)
	}
	if !reflect.DeepEqual(target.table.Header, header) {
		t.Fatalf("imported header = %v", target.table.Header)
	}

	svc = NewImportService(memory.New(sampleTable()), &recordingImporter{err: core.ErrMissingColumns}, nil)
	_, err = svc.Import(context.Background())
	var pe *core.ProcessingError
	if !errors.As(err, &pe) || pe.Stage != core.StageImport {
		t.Fatalf("expected import-stage ProcessingError, got %v", err)
	}

	missing := &core.SourceNotFoundError{Path: "datos.csv"}
	svc = NewImportService(failingReader{err: missing}, target, nil)
	if _, err := svc.Import(context.Background()); !core.IsSourceNotFound(err) {
		t.Fatalf("expected source-not-found, got %v", err)
	}
}
