// Package ingest turns raw sheet tables into cleaned procedure records.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tablero/internal/core"
)

// ColumnMapping renames source headers to canonical field names.
// Targets that are not canonical fields simply rename an unused column.
type ColumnMapping map[string]string

type columnFile struct {
	Columns map[string]string `yaml:"columns"`
}

// DefaultColumnMapping returns the aliases of the clinic's BASE_DIAG sheet.
// ANIO and MES are typed by hand in the sheet and never trusted.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{
		"PACIENTE":          core.FieldPatient,
		"ORIGEN":            core.FieldOrigin,
		"SERVICIO":          core.FieldServiceType,
		"PROFESIONAL":       core.FieldProfessional,
		"Obra social":       core.FieldInsurer,
		"Fecha_Realizacion": core.FieldDate,
		"CANTIDAD":          core.FieldQuantity,
		"ANIO":              "ANIO_manual",
		"MES":               "MES_manual",
	}
}

// LoadColumnMapping reads a YAML file of the form:
//
//	columns:
//	  PACIENTE: paciente
//	  Fecha_Realizacion: fecha
func LoadColumnMapping(path string) (ColumnMapping, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read column map: %w", err)
	}
	var f columnFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse column map %s: %w", path, err)
	}
	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("column map %s: no columns defined", path)
	}
	m := ColumnMapping(f.Columns)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate rejects blank source or target names.
func (m ColumnMapping) Validate() error {
	var problems []string
	for src, dst := range m {
		if strings.TrimSpace(src) == "" {
			problems = append(problems, fmt.Sprintf("empty source column mapped to %q", dst))
		}
		if strings.TrimSpace(dst) == "" {
			problems = append(problems, fmt.Sprintf("source column %q has no target", src))
		}
	}
	if len(problems) > 0 {
		return errors.New("invalid column mapping: " + strings.Join(problems, "; "))
	}
	return nil
}

// target returns the canonical name a header maps to, or "" when unmapped.
func (m ColumnMapping) target(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if dst, ok := m[header]; ok {
		return strings.TrimSpace(dst)
	}
	for src, dst := range m {
		if strings.EqualFold(strings.TrimSpace(src), header) {
			return strings.TrimSpace(dst)
		}
	}
	// Headers already carrying a canonical name keep it.
	for _, f := range core.RequiredFields {
		if strings.EqualFold(f, header) {
			return f
		}
	}
	return ""
}

// Resolve maps every required canonical field to its column index in header.
func (m ColumnMapping) Resolve(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(core.RequiredFields))
	for i, h := range header {
		dst := m.target(h)
		if !isRequired(dst) {
			continue
		}
		if prev, dup := idx[dst]; dup {
			return nil, fmt.Errorf("columns %q and %q both map to %s", header[prev], h, dst)
		}
		idx[dst] = i
	}
	var missing []string
	for _, f := range core.RequiredFields {
		if _, ok := idx[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s (headers=%v)", core.ErrMissingColumns, strings.Join(missing, ","), header)
	}
	return idx, nil
}

func isRequired(name string) bool {
	for _, f := range core.RequiredFields {
		if f == name {
			return true
		}
	}
	return false
}
