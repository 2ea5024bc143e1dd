package config

import (
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "BIND", "PORT", "DATA_DIR", "DB_PATH", "API_KEY", "NO_AUTH",
		"TLS_ENABLED", "RATE_LIMIT_RPS", "LOOKUP_ENABLED", "RUN_MIGRATIONS_ON_STARTUP",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "local" {
		t.Errorf("expected env local, got %q", cfg.Env)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("expected 127.0.0.1:8080, got %q", cfg.Addr())
	}
	if cfg.DataDir != "./data" {
		t.Errorf("expected ./data, got %q", cfg.DataDir)
	}
	if cfg.DBPath != filepath.Join("./data", "grub.db") {
		t.Errorf("expected db under data dir, got %q", cfg.DBPath)
	}
	if cfg.NoAuth {
		t.Error("expected auth enabled by default")
	}
	if cfg.TLSEnabled {
		t.Error("expected TLS disabled by default")
	}
	if cfg.RateLimitRPS != 0 {
		t.Errorf("expected rate limit disabled, got %d", cfg.RateLimitRPS)
	}
	if !cfg.LookupEnabled {
		t.Error("expected lookup enabled by default")
	}
	if !cfg.RunMigrationsOnStartup {
		t.Error("expected startup migrations enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BIND", "0.0.0.0")
	t.Setenv("DATA_DIR", "/var/lib/grub")
	t.Setenv("DB_PATH", "/tmp/custom.db")
	t.Setenv("NO_AUTH", "1")
	t.Setenv("LOOKUP_ENABLED", "false")
	t.Setenv("RATE_LIMIT_RPS", "25")
	t.Setenv("RUN_MIGRATIONS_ON_STARTUP", "no")

	cfg := Load()

	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("expected 0.0.0.0:9090, got %q", cfg.Addr())
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("expected explicit db path kept, got %q", cfg.DBPath)
	}
	if !cfg.NoAuth {
		t.Error("expected NO_AUTH honored")
	}
	if cfg.LookupEnabled {
		t.Error("expected lookup disabled")
	}
	if cfg.RateLimitRPS != 25 {
		t.Errorf("expected 25 rps, got %d", cfg.RateLimitRPS)
	}
	if cfg.RunMigrationsOnStartup {
		t.Error("expected startup migrations disabled")
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("expected default port on parse failure, got %d", cfg.Port)
	}
}

func TestParseBool(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
		if !parseBool(v) {
			t.Errorf("expected %q to parse as true", v)
		}
	}
	for _, v := range []string{"", "0", "false", "off", "banana"} {
		if parseBool(v) {
			t.Errorf("expected %q to parse as false", v)
		}
	}
}
