package main

import (
	"os"
	"time"

	"registro/internal/amqp"
	"registro/internal/binstore/sqlite"
	"registro/internal/cli"
	"registro/internal/log"
	"registro/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the archive worker")
		os.Exit(1)
	}

	result := cli.CreateStore(logger, cfg)
	source := result.Store

	archive, err := sqlite.New(cfg.ArchiveDBPath)
	if err != nil {
		logger.Error("Failed to open archive database",
			log.FieldError, err, "path", cfg.ArchiveDBPath)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to message broker", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Broker connection close failed", log.FieldError, err)
		}
		if err := archive.Close(); err != nil {
			logger.Warn("Archive database close failed", log.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Store cleanup failed", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting archive worker",
		"queue", cfg.AMQPQueue,
		"archive_db", cfg.ArchiveDBPath,
		log.FieldBackend, cfg.StoreBackend)

	w := worker.NewArchiveWorker(source, archive)
	if err := w.Run(ctx, client, cfg.ReconnectRetries); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
