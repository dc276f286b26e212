// Package cli provides common initialization shared by the tablero commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tablero/internal/backend"
	"tablero/internal/config"
	"tablero/internal/ingest"
	"tablero/internal/log"
	"tablero/internal/storage"
)

// SetupLogger builds the process logger at the given level and installs it
// as the slog default.
func SetupLogger(level string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Level = log.ParseLevel(level)
	cfg.Handler = nil
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment. The
// logger is rebuilt at LOG_LEVEL once the config is known. Invalid
// configuration is the only startup failure that exits non-zero.
func LoadAndValidateConfig() (*config.Config, *log.Logger) {
	cfg := config.Load()
	logger := SetupLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// LoadColumnMapping returns the mapping from COLUMN_MAP_FILE, or the
// built-in one when no file is configured.
func LoadColumnMapping(cfg *config.Config) (ingest.ColumnMapping, error) {
	if cfg.ColumnMapFile == "" {
		return ingest.DefaultColumnMapping(), nil
	}
	m, err := ingest.LoadColumnMapping(cfg.ColumnMapFile)
	if err != nil {
		return nil, fmt.Errorf("column map %s: %w", cfg.ColumnMapFile, err)
	}
	return m, nil
}

// OpenSource creates the configured source backend.
func OpenSource(ctx context.Context, logger *log.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *log.Logger, dbPath string, mapping ingest.ColumnMapping) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath, mapping)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, stop
}

// Shutdown runs fn with a deadline, logging a timeout.
func Shutdown(logger *log.Logger, timeout time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("Shutdown did not complete cleanly", log.FieldError, err)
		return
	}
	logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
}
