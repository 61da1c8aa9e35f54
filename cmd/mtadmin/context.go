// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/danielhkuo/trailblazers/cliparse"
	"github.com/danielhkuo/trailblazers/db"
	"github.com/danielhkuo/trailblazers/logging"
	"github.com/danielhkuo/trailblazers/store"
)

// commandContext resolves configuration and the database once per invocation.
type commandContext struct {
	configFile   string
	databaseURL  string
	databaseType string
	envFile      string

	configOnce sync.Once
	config     cliparse.Config
	configErr  error

	conn  *sql.DB
	store *store.Store
}

// ensureConfig runs the server's configuration chain with the CLI's
// overrides passed through as server flags.
func (c *commandContext) ensureConfig() (cliparse.Config, error) {
	c.configOnce.Do(func() {
		args := []string{"--env-file", c.envFile}
		if c.configFile != "" {
			args = append(args, "-c", c.configFile)
		}
		if c.databaseURL != "" {
			args = append(args, "-d", c.databaseURL)
		}
		if c.databaseType != "" {
			args = append(args, "-t", c.databaseType)
		}

		c.config, c.configErr = cliparse.ParseFlags(args)
		if c.configErr != nil {
			return
		}

		logger, err := logging.New(logging.Options{Level: c.config.LogLevel, Format: c.config.LogFormat})
		if err != nil {
			c.configErr = err
			return
		}
		slog.SetDefault(logger)
	})
	return c.config, c.configErr
}

// openStore connects and brings the schema up to date.
func (c *commandContext) openStore(ctx context.Context) (*store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}

	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, cfg.DatabaseType); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c.conn = conn
	c.store = store.New(conn)
	return c.store, nil
}

func (c *commandContext) close() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.store = nil
	}
}
