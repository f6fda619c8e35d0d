// Command serad is the worker daemon. It loads configuration from the
// environment, takes an exclusive lock on the processing root, connects to
// Temporal, and serves the task queue until interrupted.
package main

import (
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"sera/internal/activities"
	"sera/internal/config"
	"sera/internal/history"
	"sera/internal/logging"
	"sera/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "serad:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Media.ProcessingRoot, 0o755); err != nil {
		return fmt.Errorf("create processing root: %w", err)
	}
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire worker lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another worker already holds %s", cfg.LockPath())
	}
	defer func() {
		_ = lock.Unlock()
	}()

	runs, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return err
	}
	defer runs.Close()

	c, err := worker.Dial(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	w := worker.New(c, cfg, activities.New(cfg, logger, runs))
	logger.Info("worker started",
		logging.String("address", cfg.Temporal.Address),
		logging.String("namespace", cfg.Temporal.Namespace),
		logging.String("taskQueue", cfg.Temporal.TaskQueue),
	)
	return worker.RunUntilInterrupt(w)
}
