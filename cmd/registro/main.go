package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"registro/internal/amqp"
	"registro/internal/cli"
	httpserver "registro/internal/http"
	"registro/internal/log"
	"registro/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	cfg := cli.LoadAndValidateConfig(logger)

	result := cli.CreateStore(logger, cfg)
	store := result.Store

	var publisher session.Publisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// the API stays usable without the broker; saves just go unannounced
			logger.Warn("Failed to connect to message broker, save events disabled",
				log.FieldError, err)
		} else {
			amqpClient = client
			publisher = client
			logger.Info("Connected to message broker",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	ctx := context.Background()
	source := cli.NewCategorySource(ctx, logger, cfg)

	sessions := session.NewManager(store, source, publisher, cfg.Organization)

	server := httpserver.NewServer(":"+cfg.Port, sessions, httpserver.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	server.ReadTimeout = 10 * time.Second
	server.WriteTimeout = 10 * time.Second
	server.IdleTimeout = 60 * time.Second
	server.MaxHeaderBytes = 1 << 16

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", log.FieldError, err)
		}
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Broker connection close failed", log.FieldError, err)
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Store cleanup failed", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting server",
		"port", cfg.Port,
		log.FieldBackend, cfg.StoreBackend,
		"organization", cfg.Organization)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server failed", log.FieldError, err)
		os.Exit(1)
	}

	<-done
	logger.Info("Server stopped")
}
