package sheets

import (
	"context"

	"tablero/internal/core"
)

// Ports for inbound source adapters.
type (
	// TableReader loads the procedures sheet as a raw table.
	// A source that does not exist must yield a *core.SourceNotFoundError.
	TableReader interface {
		ReadTable(ctx context.Context) (core.Table, error)
	}

	// TableImporter stores a copy of a source table for later runs.
	TableImporter interface {
		ImportTable(ctx context.Context, t core.Table) (int, error)
	}
)
