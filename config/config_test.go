package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfigDefaults(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":3001"
postgres:
  dsn: "postgres://localhost/test"
auth:
  jwtSecret: "secret"
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Logging.Service != "speak-to-me" || cfg.Logging.Env != "dev" {
		t.Errorf("logging defaults = %+v", cfg.Logging)
	}
	if cfg.Rooms.MaxParticipants != 2 {
		t.Errorf("maxParticipants = %d, want 2", cfg.Rooms.MaxParticipants)
	}
	if cfg.Auth.Admin.Username != "admin" {
		t.Errorf("admin username = %q, want admin", cfg.Auth.Admin.Username)
	}
	if cfg.TokenTTL() != 30*24*time.Hour {
		t.Errorf("TokenTTL() = %v, want 720h", cfg.TokenTTL())
	}
	if cfg.CleanupInterval() != 30*time.Second {
		t.Errorf("CleanupInterval() = %v, want 30s", cfg.CleanupInterval())
	}
	if cfg.IdleTimeout() != 10*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 10m", cfg.IdleTimeout())
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":8080"
postgres:
  dsn: "postgres://localhost/test"
auth:
  jwtSecret: "secret"
  tokenTTL: "1h"
rooms:
  maxParticipants: 4
  cleanupInterval: "10s"
  idleTimeout: "2m"
`)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Rooms.MaxParticipants != 4 {
		t.Errorf("maxParticipants = %d, want 4", cfg.Rooms.MaxParticipants)
	}
	if cfg.TokenTTL() != time.Hour {
		t.Errorf("TokenTTL() = %v, want 1h", cfg.TokenTTL())
	}
	if cfg.CleanupInterval() != 10*time.Second {
		t.Errorf("CleanupInterval() = %v, want 10s", cfg.CleanupInterval())
	}
	if cfg.IdleTimeout() != 2*time.Minute {
		t.Errorf("IdleTimeout() = %v, want 2m", cfg.IdleTimeout())
	}
}

func TestLoadConfigMissingRequired(t *testing.T) {
	cases := map[string]string{
		"no http.addr": `
postgres:
  dsn: "postgres://localhost/test"
auth:
  jwtSecret: "secret"
`,
		"no postgres.dsn": `
http:
  addr: ":3001"
auth:
  jwtSecret: "secret"
`,
		"no jwtSecret": `
http:
  addr: ":3001"
postgres:
  dsn: "postgres://localhost/test"
`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			writeConfig(t, content)
			if _, err := LoadConfig(); err == nil {
				t.Error("LoadConfig() accepted incomplete config")
			}
		})
	}
}
