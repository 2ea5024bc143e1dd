package apikey

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExplicitKeyWins(t *testing.T) {
	key, err := Load(filepath.Join(t.TempDir(), "api_key"), "explicit-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "explicit-key" {
		t.Errorf("expected explicit key, got %q", key)
	}
}

func TestLoadGeneratesAndPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key")

	key, err := Load(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(key) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(key))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("key file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected 0600 permissions, got %o", info.Mode().Perm())
	}

	again, err := Load(path, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != key {
		t.Error("expected the same key on reload")
	}
}

func TestGenerateUnique(t *testing.T) {
	a, err := Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Error("expected distinct keys")
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abcd1234efgh5678"); got != "abcd...5678" {
		t.Errorf("unexpected mask %q", got)
	}
	if got := Mask("short"); got != "****" {
		t.Errorf("expected full mask for short key, got %q", got)
	}
}
