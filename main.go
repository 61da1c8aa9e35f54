// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/trailblazers/cache"
	"github.com/danielhkuo/trailblazers/cliparse"
	"github.com/danielhkuo/trailblazers/db"
	"github.com/danielhkuo/trailblazers/logging"
	"github.com/danielhkuo/trailblazers/router"
	"github.com/danielhkuo/trailblazers/scheduler"
	"github.com/danielhkuo/trailblazers/store"
)

// transientTTL matches the hour the rankings and assignment data stay cached
const transientTTL = time.Hour

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	// One server per database file
	if cfg.LockFile != "" {
		lock := flock.New(cfg.LockFile)
		ok, err := lock.TryLock()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("another server already holds %s", cfg.LockFile)
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				slog.Warn("failed to release lock", "error", err, "lock", cfg.LockFile)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn, cfg.DatabaseType); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	st := store.New(dbConn)
	transients := cache.New(transientTTL)

	jobs := scheduler.New(logger)
	if err := jobs.ScheduleMaintenance(st, cfg.BackupRetentionDays, cfg.JobInterval); err != nil {
		return err
	}

	server := &http.Server{
		Handler:           router.Handler(router.NewRouter(st, cfg, transients, jobs)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return jobs.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	slog.Info("Server closed", "error", err)
	return err
}
