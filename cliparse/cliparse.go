package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port                int
	DatabaseURL         string
	DatabaseType        string
	UserKeySalt         string
	NonceSalt           string
	NonceLifetime       time.Duration
	LogLevel            string
	LogFormat           string
	BackupRetentionDays int
	LockFile            string
	JobInterval         time.Duration
	ConfigFile          string
}

// fileConfig mirrors Config for the optional TOML file.
type fileConfig struct {
	Port                int    `toml:"port"`
	DatabaseURL         string `toml:"database_url"`
	DatabaseType        string `toml:"database_type"`
	UserKeySalt         string `toml:"user_key_salt"`
	NonceSalt           string `toml:"nonce_salt"`
	NonceLifetime       string `toml:"nonce_lifetime"`
	LogLevel            string `toml:"log_level"`
	LogFormat           string `toml:"log_format"`
	BackupRetentionDays int    `toml:"backup_retention_days"`
	LockFile            string `toml:"lock_file"`
	JobInterval         string `toml:"job_interval"`
}

// Default returns the configuration before any file, env or flag is applied.
func Default() Config {
	return Config{
		Port:                3318,
		DatabaseType:        "sqlite",
		NonceLifetime:       24 * time.Hour,
		LogLevel:            "info",
		LogFormat:           "auto",
		BackupRetentionDays: 365,
		JobInterval:         24 * time.Hour,
	}
}

// ParseFlags builds the configuration. Precedence is flags, then
// environment (including a .env file), then the TOML file, then defaults.
func ParseFlags(args []string) (Config, error) {
	var flags Config
	var envFile string

	fs := flag.NewFlagSet("trailblazers", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&flags.Port, "p", 0, "Server port")
	fs.StringVar(&flags.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&flags.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&flags.ConfigFile, "c", "", "TOML config file")
	fs.StringVar(&envFile, "env-file", ".env", "dotenv file to load if present")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&flags.UserKeySalt, "user-salt", "", "User key salt (prefer env)")
	fs.StringVar(&flags.NonceSalt, "nonce-salt", "", "Nonce salt (prefer env)")

	fs.DurationVar(&flags.NonceLifetime, "nonce-lifetime", 0, "Nonce lifetime")
	fs.StringVar(&flags.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&flags.LogFormat, "log-format", "", "Log format (auto, json, text)")
	fs.IntVar(&flags.BackupRetentionDays, "retention-days", 0, "Days to keep unrestored vote backups")
	fs.StringVar(&flags.LockFile, "lock-file", "", "Single-instance lock file")
	fs.DurationVar(&flags.JobInterval, "job-interval", 0, "Interval between maintenance job runs")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Default()

	cfg.ConfigFile = firstNonEmpty(flags.ConfigFile, os.Getenv("MT_CONFIG"))
	if cfg.ConfigFile != "" {
		if err := applyFile(&cfg, cfg.ConfigFile); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyFlags(&cfg, flags)

	if cfg.LockFile == "" {
		cfg.LockFile = defaultLockFile(cfg.DatabaseType, cfg.DatabaseURL)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Port != 0 {
		cfg.Port = fc.Port
	}
	cfg.DatabaseURL = firstNonEmpty(fc.DatabaseURL, cfg.DatabaseURL)
	cfg.DatabaseType = firstNonEmpty(fc.DatabaseType, cfg.DatabaseType)
	cfg.UserKeySalt = firstNonEmpty(fc.UserKeySalt, cfg.UserKeySalt)
	cfg.NonceSalt = firstNonEmpty(fc.NonceSalt, cfg.NonceSalt)
	cfg.LogLevel = firstNonEmpty(fc.LogLevel, cfg.LogLevel)
	cfg.LogFormat = firstNonEmpty(fc.LogFormat, cfg.LogFormat)
	cfg.LockFile = firstNonEmpty(fc.LockFile, cfg.LockFile)
	if fc.BackupRetentionDays != 0 {
		cfg.BackupRetentionDays = fc.BackupRetentionDays
	}
	if fc.NonceLifetime != "" {
		d, err := time.ParseDuration(fc.NonceLifetime)
		if err != nil {
			return fmt.Errorf("config nonce_lifetime: %w", err)
		}
		cfg.NonceLifetime = d
	}
	if fc.JobInterval != "" {
		d, err := time.ParseDuration(fc.JobInterval)
		if err != nil {
			return fmt.Errorf("config job_interval: %w", err)
		}
		cfg.JobInterval = d
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := os.Getenv("BACKUP_RETENTION_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("invalid BACKUP_RETENTION_DAYS env variable")
		}
		cfg.BackupRetentionDays = days
	}
	if v := os.Getenv("NONCE_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid NONCE_LIFETIME env variable")
		}
		cfg.NonceLifetime = d
	}
	if v := os.Getenv("JOB_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.New("invalid JOB_INTERVAL env variable")
		}
		cfg.JobInterval = d
	}

	cfg.DatabaseURL = firstNonEmpty(os.Getenv("DATABASE_URL"), cfg.DatabaseURL)
	cfg.DatabaseType = firstNonEmpty(os.Getenv("DATABASE_TYPE"), cfg.DatabaseType)
	cfg.UserKeySalt = firstNonEmpty(os.Getenv("USER_KEY_SALT"), cfg.UserKeySalt)
	cfg.NonceSalt = firstNonEmpty(os.Getenv("NONCE_SALT"), cfg.NonceSalt)
	cfg.LogLevel = firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.LogLevel)
	cfg.LogFormat = firstNonEmpty(os.Getenv("LOG_FORMAT"), cfg.LogFormat)
	cfg.LockFile = firstNonEmpty(os.Getenv("LOCK_FILE"), cfg.LockFile)
	return nil
}

func applyFlags(cfg *Config, flags Config) {
	if flags.Port != 0 {
		cfg.Port = flags.Port
	}
	if flags.BackupRetentionDays != 0 {
		cfg.BackupRetentionDays = flags.BackupRetentionDays
	}
	if flags.NonceLifetime != 0 {
		cfg.NonceLifetime = flags.NonceLifetime
	}
	if flags.JobInterval != 0 {
		cfg.JobInterval = flags.JobInterval
	}
	cfg.DatabaseURL = firstNonEmpty(flags.DatabaseURL, cfg.DatabaseURL)
	cfg.DatabaseType = firstNonEmpty(flags.DatabaseType, cfg.DatabaseType)
	cfg.UserKeySalt = firstNonEmpty(flags.UserKeySalt, cfg.UserKeySalt)
	cfg.NonceSalt = firstNonEmpty(flags.NonceSalt, cfg.NonceSalt)
	cfg.LogLevel = firstNonEmpty(flags.LogLevel, cfg.LogLevel)
	cfg.LogFormat = firstNonEmpty(flags.LogFormat, cfg.LogFormat)
	cfg.LockFile = firstNonEmpty(flags.LockFile, cfg.LockFile)
}

// Validate checks required values and enumerations.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	// Secrets - MUST be provided
	if c.UserKeySalt == "" {
		return errors.New("USER_KEY_SALT required")
	}
	if c.NonceSalt == "" {
		return errors.New("NONCE_SALT required")
	}

	if c.NonceLifetime <= 0 {
		return errors.New("nonce lifetime must be positive")
	}
	if c.JobInterval <= 0 {
		return errors.New("job interval must be positive")
	}
	if c.BackupRetentionDays <= 0 {
		return errors.New("backup retention days must be positive")
	}
	switch c.LogFormat {
	case "auto", "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}
	return nil
}

// defaultLockFile places the lock next to a file-backed SQLite database.
// In-memory and server databases get no lock.
func defaultLockFile(dbType, dsn string) string {
	if dbType != "sqlite" {
		return ""
	}
	p := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(p, "?"); i >= 0 {
		if strings.Contains(p[i:], "mode=memory") {
			return ""
		}
		p = p[:i]
	}
	if p == "" || p == ":memory:" {
		return ""
	}
	return p + ".lock"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
