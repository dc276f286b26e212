package services

import (
	"context"
	"fmt"

	"tablero/internal/core"
	"tablero/internal/log"
	"tablero/internal/sheets"
)

// ImportService copies a source table into a local store.
type ImportService struct {
	source sheets.TableReader
	target sheets.TableImporter
	logger *log.Logger
}

func NewImportService(source sheets.TableReader, target sheets.TableImporter, logger *log.Logger) *ImportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ImportService{
		source: source,
		target: target,
		logger: logger.WithComponent(log.ComponentImport),
	}
}

// Import replaces the stored rows with the current source rows and returns
// how many were stored. A failed import leaves the previous rows in place.
func (s *ImportService) Import(ctx context.Context) (int, error) {
	if s.source == nil || s.target == nil {
		return 0, fmt.Errorf("import service not configured")
	}

	table, err := s.source.ReadTable(ctx)
	if err != nil {
		return 0, stageError(core.StageRead, err)
	}

	n, err := s.target.ImportTable(ctx, table)
	if err != nil {
		return 0, stageError(core.StageImport, err)
	}

	s.logger.InfoContext(ctx, "Source imported",
		log.FieldOperation, log.OpImport,
		log.FieldRows, n)
	return n, nil
}
