package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	config "github.com/amit15110003/asha-health-project/config/scribe"
	"github.com/amit15110003/asha-health-project/gateways/web"
	"github.com/amit15110003/asha-health-project/pkg/logger"
)

func main() {
	log := logger.Default()
	log.Info("initializing scribe gateway")

	log = logger.New(logger.Config{
		Level:      slog.LevelDebug,
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: false,
	})
	log.Info("logger configured",
		slog.String("level", slog.LevelDebug.String()),
		slog.Bool("add_source", true),
		slog.Bool("json_format", false))

	log.Debug("loading configuration")
	cfg := config.MustLoad()
	log.Info("configuration loaded successfully",
		slog.Int("port", cfg.Port),
		slog.String("env", cfg.Env),
		slog.String("deepgram_model", cfg.Deepgram.Model),
		slog.String("openai_model", cfg.OpenAI.Model))

	log.Debug("creating context with logger")
	ctx := logger.WithContext(context.Background(), log)

	log.Info("setting up signal handling for graceful shutdown")
	rootCtx, cancel := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer func() {
		log.Info("canceling root context")
		cancel()
	}()

	log.Info("starting scribe gateway application")
	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		return
	}
	log.Info("application terminated successfully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Debug("creating scribe server instance", slog.Int("port", cfg.Port))

	srv, err := web.New(cfg, log)
	if err != nil {
		log.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}
	log.Info("scribe server instance created successfully")

	log.Info("starting scribe server")
	err = srv.Start(ctx)
	if err != nil {
		log.Error("server start failed", slog.String("error", err.Error()))
		return err
	}
	log.Info("server started and stopped gracefully")
	return nil
}
