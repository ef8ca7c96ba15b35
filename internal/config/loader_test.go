package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	raw := []byte(`
version: "1"
storage: storage.sqlite
modules:
  storage.sqlite:
    path: /var/lib/tidbits/tidbits.db
`)

	cfg, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if cfg.Version != "1" {
		t.Errorf("Version = %q, want %q", cfg.Version, "1")
	}
	if cfg.Storage != "storage.sqlite" {
		t.Errorf("Storage = %q, want %q", cfg.Storage, "storage.sqlite")
	}
	if _, ok := cfg.Modules["storage.sqlite"]; !ok {
		t.Error("Modules is missing the storage.sqlite entry")
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("TIDBITS_TEST_BACKEND", "storage.memory")

	cfg, err := Parse([]byte("version: \"1\"\nstorage: ${TIDBITS_TEST_BACKEND}\n"))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if cfg.Storage != "storage.memory" {
		t.Errorf("Storage = %q, want %q", cfg.Storage, "storage.memory")
	}
}

func TestParse_EnvDefault(t *testing.T) {
	cfg, err := Parse([]byte("version: \"1\"\nstorage: ${TIDBITS_UNSET_VAR:-storage.json}\n"))
	if err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	if cfg.Storage != "storage.json" {
		t.Errorf("Storage = %q, want %q", cfg.Storage, "storage.json")
	}
}

func TestParse_UnresolvedVariable(t *testing.T) {
	_, err := Parse([]byte("version: \"1\"\nstorage: ${TIDBITS_DEFINITELY_UNSET}\n"))
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "TIDBITS_DEFINITELY_UNSET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("version: [unclosed"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidbits.yaml")
	content := "version: \"1\"\nstorage: storage.json\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if cfg.Storage != "storage.json" {
		t.Errorf("Storage = %q, want %q", cfg.Storage, "storage.json")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
