package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_TYPE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.NoticeSchedule != "0 6 1 * *" {
		t.Errorf("NoticeSchedule = %q", cfg.NoticeSchedule)
	}
	if cfg.Timezone != "Europe/Stockholm" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_type: postgres\ndatabase_url: postgres://file\nlog_level: debug\nses_from_email: avgift@example.se\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DB_TYPE", "")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("LOG_PRETTY", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{name: "type from file", got: cfg.DatabaseType, want: "postgres"},
		{name: "url from env", got: cfg.DatabaseURL, want: "postgres://env"},
		{name: "level from file", got: cfg.LogLevel, want: "debug"},
		{name: "pretty from env", got: cfg.LogPretty, want: false},
		{name: "sender from file", got: cfg.SESFromEmail, want: "avgift@example.se"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoadRejectsUnknownDatabase(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_TYPE", "oracle")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject an unsupported database type")
	}
}

func TestLoadRequiresURLForPostgres(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Error("Load() should require DATABASE_URL for postgres")
	}
}

func TestLoadSendRate(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_TYPE", "")

	t.Setenv("SES_SEND_RATE", "2")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SESSendRate != 2 {
		t.Errorf("SESSendRate = %d, want 2", cfg.SESSendRate)
	}

	t.Setenv("SES_SEND_RATE", "0")
	if _, err := Load(); err == nil {
		t.Error("Load() should reject a zero send rate")
	}
}
