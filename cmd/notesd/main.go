package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	notes "github.com/goliatone/go-notes"
	"github.com/goliatone/go-notes/config"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	flag.Parse()

	if err := run(*envFile); err != nil {
		log.Fatal(err)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger := notes.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := notes.OpenDatabase(notes.DBConfig{
		DSN:   cfg.Database,
		Debug: cfg.DBDebug,
	}, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	if report := database.Report(); report != nil && !report.IsZero() {
		logger.Info("database migrated", "group", report.String())
	}

	repo := notes.NewRepositoryManager(database.Bun())
	repo.MustValidate()

	srv, err := notes.NewServer(cfg, repo, os.Stdout, notes.WithServerLogger(logger))
	if err != nil {
		return err
	}

	go srv.PruneRevoked(ctx, cfg.PruneInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.Addr())
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
