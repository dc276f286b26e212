package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tablero/internal/amqp"
	"tablero/internal/cache"
	"tablero/internal/cli"
	apphttp "tablero/internal/http"
	"tablero/internal/log"
	"tablero/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
	janitorInterval = time.Minute
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

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

	var (
		client   *amqp.Client
		notifier services.DashboardNotifier
	)
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, cache invalidation events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			notifier = client
		}
	}

	opts := apphttp.Options{
		CacheTTL:  cfg.CacheTTL,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	}
	if p, ok := src.Backend.(interface{ Ping(context.Context) error }); ok {
		opts.Ready = p.Ping
	}

	svc := services.NewDashboardService(src.Backend, mapping, notifier, logger)
	srv := apphttp.NewServer(":"+cfg.Port, svc, opts)

	janitor := cache.NewManager()
	for _, c := range srv.Cleaners() {
		janitor.Register(c)
	}
	janitor.OnClean = func(removed int) {
		logger.Debug("Expired entries evicted", log.FieldOperation, "sweep", "removed", removed)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting tablero server", "port", cfg.Port, log.FieldSource, cfg.SourceBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		cli.Shutdown(logger, shutdownTimeout, srv.Shutdown)
		return nil
	})

	g.Go(func() error {
		return janitor.Run(gctx, janitorInterval)
	})

	if client != nil {
		g.Go(func() error {
			err := client.ConsumeDashboardGenerated(gctx, func(ctx context.Context, msg *amqp.DashboardGeneratedMessage) error {
				logger.InfoContext(ctx, "Dashboard regenerated elsewhere", log.FieldRunID, msg.RunID, log.FieldOutput, msg.Output)
				srv.Invalidate()
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption stopped", log.FieldError, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		return
	}
	logger.Info("Server stopped gracefully")
}
