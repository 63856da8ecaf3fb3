package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"tareas-api/internal/config"
	"tareas-api/internal/logging"
	"tareas-api/internal/server"
	"tareas-api/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	// In-memory "DB" for now; will move to Postgres behind tasks.Repository.
	store := tasks.NewStore(tasks.SeedTasks(), tasks.SeedNextID)

	srv, err := server.New(cfg, logger, store)
	if err != nil {
		logger.Fatal("failed to build server", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
	logger.Info("server stopped")
}
