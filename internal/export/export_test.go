package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tablero/internal/core"
)

func sampleData() core.DashboardData {
	s := core.NewSeries(2)
	s.Add("Lunes", 1)
	s.Add("Miércoles", 2)

	var months core.YearSummary
	months.Set("Marzo", core.MonthSummary{Periodo: "01 al 12 de Marzo de 2024", DiasSemana: s, Meta: core.Meta{Year: 2024}})
	var data core.DashboardData
	data.Set("2024", months)
	return data
}

func TestEncode_PrettyAndUnescaped(t *testing.T) {
	b, err := Encode(sampleData())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "Miércoles") {
		t.Fatalf("non-ASCII was escaped:\n%s", out)
	}
	if !strings.HasPrefix(out, "{\n    \"2024\": {\n        \"Marzo\": {\n            \"periodo\"") {
		t.Fatalf("unexpected indentation:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Fatalf("expected trailing newline")
	}

	var decoded map[string]map[string]map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded["2024"]["Marzo"]["periodo"] != "01 al 12 de Marzo de 2024" {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestEncode_KeepsAmpersand(t *testing.T) {
	b, err := Encode(map[string]string{"obra": "OSDE & Co <210>"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(b), "OSDE & Co <210>") {
		t.Fatalf("html characters escaped: %s", b)
	}
}

func TestWriteBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	doc, err := Encode(sampleData())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := WriteBytes(path, doc); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != string(doc) || !strings.Contains(string(b), "\"Marzo\"") {
		t.Fatalf("unexpected content: %s", b)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

type failing struct{}

func (failing) MarshalJSON() ([]byte, error) { return nil, errors.New("boom") }

func TestEncode_Failure(t *testing.T) {
	if b, err := Encode(failing{}); err == nil || b != nil {
		t.Fatalf("expected encode error, got %q", b)
	}
}

func TestWriteBytes_MissingDirectory(t *testing.T) {
	dir := t.TempDir()
	missingDir := filepath.Join(dir, "nope", "data.json")
	if err := WriteBytes(missingDir, []byte("{}\n")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("unexpected files: %v", entries)
	}
}
