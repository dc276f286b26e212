package main

import (
	"tablero/internal/backend"
	"tablero/internal/cli"
	"tablero/internal/log"
	"tablero/internal/services"
	"tablero/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	if backend.BackendType(cfg.SourceBackend) == backend.SQLiteBackend {
		logger.Error("SOURCE_BACKEND must name the sheet to import, not the sqlite store")
		return
	}

	mapping, err := cli.LoadColumnMapping(cfg)
	if err != nil {
		logger.Error("Failed to load column mapping", log.FieldError, err)
		return
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	src, err := cli.OpenSource(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to open source", log.FieldSource, cfg.SourceBackend, log.FieldError, err)
		return
	}
	defer src.Close()

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath, mapping)
	defer repo.Close()
	repo.SetSource(cfg.SourceBackend + ":" + cfg.InputPath)

	w := worker.NewImportWorker(services.NewImportService(src.Backend, repo, logger), cfg.ImportInterval, logger)
	if cfg.ImportInterval > 0 {
		logger.Info("Starting periodic import", "interval", cfg.ImportInterval.String(), "path", cfg.SQLiteDBPath)
	}
	_ = w.Run(ctx)

	st, err := repo.Stats(ctx)
	if err != nil {
		logger.Error("Failed to read store stats", log.FieldError, err)
		return
	}
	if st.Imported {
		logger.Info("Store up to date",
			log.FieldRows, st.Rows,
			"schema_version", st.SchemaVersion,
			"import_id", st.LastImport.ID,
		)
	}
}
