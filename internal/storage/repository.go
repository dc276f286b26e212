package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"tablero/internal/core"
	"tablero/internal/ingest"
	ports "tablero/internal/sheets"

	_ "modernc.org/sqlite"
)

var (
	_ ports.TableReader   = (*SQLiteRepository)(nil)
	_ ports.TableImporter = (*SQLiteRepository)(nil)
)

// SQLiteRepository keeps an imported copy of the procedures sheet.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	mapping ingest.ColumnMapping
	source  string
	path    string
}

// Stats summarizes the store for status logging.
type Stats struct {
	Rows          int64
	SchemaVersion uint
	LastImport    Import
	Imported      bool
}

// NewSQLiteRepository opens dbPath and applies pending migrations. A nil
// mapping uses the default column names.
func NewSQLiteRepository(dbPath string, mapping ingest.ColumnMapping) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if mapping == nil {
		mapping = ingest.DefaultColumnMapping()
	}
	return &SQLiteRepository{db: db, queries: New(db), mapping: mapping, path: dbPath}, nil
}

// SetSource labels subsequent imports with where the rows came from.
func (r *SQLiteRepository) SetSource(source string) {
	r.source = source
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ImportTable replaces the stored rows with t in one transaction. Rows with
// no values are skipped. It returns the number of rows stored.
func (r *SQLiteRepository) ImportTable(ctx context.Context, t core.Table) (int, error) {
	if len(t.Header) == 0 {
		return 0, core.ErrEmptySheet
	}
	idx, err := r.mapping.Resolve(t.Header)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeleteProcedures(ctx); err != nil {
		return 0, fmt.Errorf("clear procedures: %w", err)
	}

	importID := uuid.NewString()
	rows := make([]Procedure, 0, len(t.Rows))
	for _, row := range t.Rows {
		if isBlank(row) {
			continue
		}
		rows = append(rows, Procedure{
			Paciente:          core.Cell(row, idx[core.FieldPatient]),
			Origen:            core.Cell(row, idx[core.FieldOrigin]),
			TipoServicio:      core.Cell(row, idx[core.FieldServiceType]),
			Profesional:       core.Cell(row, idx[core.FieldProfessional]),
			ObraSocial:        core.Cell(row, idx[core.FieldInsurer]),
			Fecha:             core.Cell(row, idx[core.FieldDate]),
			CantidadPracticas: core.Cell(row, idx[core.FieldQuantity]),
		})
	}

	if err := q.CreateImport(ctx, Import{
		ID:         importID,
		Source:     r.source,
		RowCount:   int64(len(rows)),
		ImportedAt: time.Now(),
	}); err != nil {
		return 0, fmt.Errorf("record import: %w", err)
	}
	for i, p := range rows {
		if err := q.InsertProcedure(ctx, importID, p); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Procedures imported to SQLite",
		"import_id", importID,
		"source", r.source,
		"rows", len(rows))
	return len(rows), nil
}

// ReadTable returns the stored rows under the canonical column names.
func (r *SQLiteRepository) ReadTable(ctx context.Context) (core.Table, error) {
	procs, err := r.queries.ListProcedures(ctx)
	if err != nil {
		return core.Table{}, fmt.Errorf("list procedures: %w", err)
	}
	t := core.Table{
		Header: append([]string(nil), core.RequiredFields...),
		Rows:   make([][]string, 0, len(procs)),
	}
	for _, p := range procs {
		t.Rows = append(t.Rows, []string{
			p.Paciente, p.Origen, p.TipoServicio, p.Profesional, p.ObraSocial, p.Fecha, p.CantidadPracticas,
		})
	}
	return t, nil
}

// Count returns the number of stored procedure rows.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountProcedures(ctx)
	if err != nil {
		return 0, fmt.Errorf("count procedures: %w", err)
	}
	return n, nil
}

// LastImport reports the most recent import, or false if nothing was imported.
func (r *SQLiteRepository) LastImport(ctx context.Context) (Import, bool, error) {
	imp, err := r.queries.GetLastImport(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Import{}, false, nil
	}
	if err != nil {
		return Import{}, false, fmt.Errorf("get last import: %w", err)
	}
	return imp, true, nil
}

// Stats reports the stored row count, schema version and latest import.
func (r *SQLiteRepository) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Rows, err = r.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.SchemaVersion, err = SchemaVersion(r.path); err != nil {
		return Stats{}, err
	}
	if st.LastImport, st.Imported, err = r.LastImport(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
