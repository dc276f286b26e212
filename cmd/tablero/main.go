package main

import (
	"context"
	"errors"

	"tablero/internal/amqp"
	"tablero/internal/cli"
	"tablero/internal/core"
	"tablero/internal/log"
	"tablero/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	ctx := context.Background()

	mapping, err := cli.LoadColumnMapping(cfg)
	if err != nil {
		logger.Error("Failed to load column mapping", log.FieldError, err)
		return
	}

	src, err := cli.OpenSource(ctx, logger, cfg)
	if err != nil {
		report(logger, err, cfg.InputPath)
		return
	}
	defer src.Close()

	var notifier services.DashboardNotifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without notifications", log.FieldError, err)
		} else {
			defer client.Close()
			notifier = client
		}
	}

	svc := services.NewDashboardService(src.Backend, mapping, notifier, logger)
	rep, err := svc.Run(ctx, cfg.OutputPath)
	if err != nil {
		report(logger, err, cfg.InputPath)
		return
	}
	logger.Info(rep.Summary(), log.FieldRunID, rep.RunID, log.FieldOutput, cfg.OutputPath)
}

// report logs a failed run. The process still exits normally.
func report(logger *log.Logger, err error, input string) {
	var pe *core.ProcessingError
	switch {
	case core.IsSourceNotFound(err):
		logger.Error("Source data not found", log.FieldSource, input, log.FieldError, err)
	case errors.As(err, &pe):
		logger.Error("Error processing data", log.FieldStage, pe.Stage, log.FieldError, pe.Err)
	default:
		logger.Error("Dashboard generation failed", log.FieldError, err)
	}
}
