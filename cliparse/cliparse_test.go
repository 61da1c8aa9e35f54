// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("USER_KEY_SALT", "test-user-salt")
	t.Setenv("NONCE_SALT", "test-nonce-salt")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("NONCE_LIFETIME", "2h")
	t.Setenv("BACKUP_RETENTION_DAYS", "30")

	cfg, err := ParseFlags([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.NonceLifetime != 2*time.Hour {
		t.Errorf("expected nonce lifetime 2h, got %v", cfg.NonceLifetime)
	}
	if cfg.BackupRetentionDays != 30 {
		t.Errorf("expected retention 30, got %d", cfg.BackupRetentionDays)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.LockFile != "test.db.lock" {
		t.Errorf("expected lock file test.db.lock, got %q", cfg.LockFile)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{
		"-p", "8080", "-d", "file:test.db", "-user-salt", "s1", "-nonce-salt", "s2",
		"-env-file", filepath.Join(t.TempDir(), "missing.env"),
	})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
}

func TestParseFlags_TOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trailblazers.toml")
	content := `
port = 7000
database_url = "postgres://localhost/mt"
database_type = "postgres"
user_key_salt = "file-user"
nonce_salt = "file-nonce"
job_interval = "1h"
log_format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Env beats the file
	t.Setenv("PORT", "7100")

	cfg, err := ParseFlags([]string{"-c", path, "-env-file", filepath.Join(dir, "missing.env")})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 7100 {
		t.Errorf("expected env port 7100, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.JobInterval != time.Hour {
		t.Errorf("expected job interval 1h, got %v", cfg.JobInterval)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected json log format, got %q", cfg.LogFormat)
	}
	if cfg.LockFile != "" {
		t.Errorf("postgres should have no lock file, got %q", cfg.LockFile)
	}
}

func TestParseFlags_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "DATABASE_URL=file:dotenv.db\nUSER_KEY_SALT=dot-user\nNONCE_SALT=dot-nonce\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// godotenv sets process env; register cleanup for the keys it writes
	for _, k := range []string{"DATABASE_URL", "USER_KEY_SALT", "NONCE_SALT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := ParseFlags([]string{"-env-file", envPath})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseURL != "file:dotenv.db" {
		t.Errorf("expected database url from .env, got %q", cfg.DatabaseURL)
	}
}

func TestParseFlags_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{
			name: "missing user salt",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "NONCE_SALT": "n"},
		},
		{
			name: "missing nonce salt",
			env:  map[string]string{"DATABASE_URL": "file:x.db", "USER_KEY_SALT": "u"},
		},
		{
			name: "missing database",
			env:  map[string]string{"USER_KEY_SALT": "u", "NONCE_SALT": "n"},
		},
		{
			name: "bad database type",
			env:  map[string]string{"DATABASE_URL": "x", "USER_KEY_SALT": "u", "NONCE_SALT": "n", "DATABASE_TYPE": "mysql"},
		},
		{
			name: "bad log format",
			env:  map[string]string{"DATABASE_URL": "x", "USER_KEY_SALT": "u", "NONCE_SALT": "n"},
			args: []string{"-log-format", "xml"},
		},
		{
			name: "bad port env",
			env:  map[string]string{"DATABASE_URL": "x", "USER_KEY_SALT": "u", "NONCE_SALT": "n", "PORT": "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"DATABASE_URL", "USER_KEY_SALT", "NONCE_SALT", "DATABASE_TYPE", "PORT"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			args := append(tt.args, "-env-file", filepath.Join(t.TempDir(), "missing.env"))
			if _, err := ParseFlags(args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestDefaultLockFile(t *testing.T) {
	tests := []struct {
		dbType string
		dsn    string
		want   string
	}{
		{"sqlite", "trailblazers.db", "trailblazers.db.lock"},
		{"sqlite", "file:/var/lib/mt.db?cache=shared", "/var/lib/mt.db.lock"},
		{"sqlite", ":memory:", ""},
		{"sqlite", "file:mt?mode=memory", ""},
		{"postgres", "postgres://localhost/mt", ""},
	}

	for _, tt := range tests {
		if got := defaultLockFile(tt.dbType, tt.dsn); got != tt.want {
			t.Errorf("defaultLockFile(%q, %q) = %q, want %q", tt.dbType, tt.dsn, got, tt.want)
		}
	}
}
