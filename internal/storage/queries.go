package storage

import (
	"context"
	"database/sql"
	"time"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Procedure struct {
	Paciente          string
	Origen            string
	TipoServicio      string
	Profesional       string
	ObraSocial        string
	Fecha             string
	CantidadPracticas string
}

type Import struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt time.Time
}

const deleteProcedures = `DELETE FROM procedures`

func (q *Queries) DeleteProcedures(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteProcedures)
	return err
}

const createImport = `INSERT INTO imports (id, source, row_count, imported_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateImport(ctx context.Context, arg Import) error {
	_, err := q.db.ExecContext(ctx, createImport, arg.ID, arg.Source, arg.RowCount, arg.ImportedAt.UTC())
	return err
}

const insertProcedure = `INSERT INTO procedures (
    import_id, paciente, origen, tipo_servicio, profesional, obra_social, fecha, cantidad_practicas
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertProcedure(ctx context.Context, importID string, p Procedure) error {
	_, err := q.db.ExecContext(ctx, insertProcedure,
		importID, p.Paciente, p.Origen, p.TipoServicio, p.Profesional, p.ObraSocial, p.Fecha, p.CantidadPracticas)
	return err
}

const listProcedures = `SELECT paciente, origen, tipo_servicio, profesional, obra_social, fecha, cantidad_practicas
FROM procedures ORDER BY id`

func (q *Queries) ListProcedures(ctx context.Context) ([]Procedure, error) {
	rows, err := q.db.QueryContext(ctx, listProcedures)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Procedure
	for rows.Next() {
		var i Procedure
		if err := rows.Scan(&i.Paciente, &i.Origen, &i.TipoServicio, &i.Profesional, &i.ObraSocial, &i.Fecha, &i.CantidadPracticas); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProcedures = `SELECT COUNT(*) FROM procedures`

func (q *Queries) CountProcedures(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countProcedures)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const getLastImport = `SELECT id, source, row_count, imported_at FROM imports ORDER BY imported_at DESC, rowid DESC LIMIT 1`

func (q *Queries) GetLastImport(ctx context.Context) (Import, error) {
	row := q.db.QueryRowContext(ctx, getLastImport)
	var i Import
	err := row.Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt)
	return i, err
}
