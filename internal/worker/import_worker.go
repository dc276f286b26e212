package worker

import (
	"context"
	"time"

	"tablero/internal/log"
)

// Importer copies the source into the local store.
type Importer interface {
	Import(ctx context.Context) (int, error)
}

// ImportWorker keeps the local store in step with the source sheet.
type ImportWorker struct {
	importer Importer
	interval time.Duration
	logger   *log.Logger

	// OnImport is called after each successful import.
	OnImport func(ctx context.Context, rows int)
}

func NewImportWorker(importer Importer, interval time.Duration, logger *log.Logger) *ImportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ImportWorker{
		importer: importer,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentImport),
	}
}

// RunOnce performs a single import and logs its outcome.
func (w *ImportWorker) RunOnce(ctx context.Context) error {
	start := time.Now()
	n, err := w.importer.Import(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Import failed", log.FieldOperation, log.OpImport, log.FieldError, err)
		return err
	}
	w.logger.InfoContext(ctx, "Import complete",
		log.FieldOperation, log.OpImport,
		log.FieldRows, n,
		log.FieldDuration, time.Since(start).Milliseconds())
	if w.OnImport != nil {
		w.OnImport(ctx, n)
	}
	return nil
}

// Run imports at startup and then every interval until ctx is done. Failed
// imports are logged and retried on the next tick; the previous rows stay
// in the store.
func (w *ImportWorker) Run(ctx context.Context) error {
	_ = w.RunOnce(ctx)
	if w.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = w.RunOnce(ctx)
		}
	}
}
