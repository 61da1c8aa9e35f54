// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package logging builds the process-wide slog logger from configuration.
//
//	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
//	slog.SetDefault(logger)
package logging
