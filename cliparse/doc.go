// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite (default) or postgres
  - UserKeySalt: Secret for user key HMAC (required)
  - NonceSalt: Secret for request nonces (required)
  - NonceLifetime: How long a nonce stays valid (default: 24h)
  - LogLevel, LogFormat: slog level and auto/json/text output
  - BackupRetentionDays: Age at which unrestored vote backups are purged (default: 365)
  - LockFile: Single-instance lock (default: <sqlite path>.lock)
  - JobInterval: Period of the maintenance jobs (default: 24h)

# Sources

Values are layered, later sources winning:

	defaults → TOML file (-c / MT_CONFIG) → environment (.env included) → flags

A .env file in the working directory is loaded when present (-env-file
changes the path). Variables already set in the process are not replaced.

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-c               TOML config file
	-user-salt       User key salt
	-nonce-salt      Nonce salt
	-nonce-lifetime  Nonce lifetime
	-log-level       Log level
	-log-format      Log format
	-retention-days  Backup retention in days
	-lock-file       Lock file path
	-job-interval    Maintenance job interval

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, USER_KEY_SALT, NONCE_SALT,
	NONCE_LIFETIME, LOG_LEVEL, LOG_FORMAT, BACKUP_RETENTION_DAYS,
	LOCK_FILE, JOB_INTERVAL, MT_CONFIG

# Validation

ParseFlags returns an error if required values are missing or an
enumerated value is unknown:

  - DATABASE_URL must be provided
  - USER_KEY_SALT must be provided
  - NONCE_SALT must be provided
*/
package cliparse
