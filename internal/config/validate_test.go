package config

import (
	"strings"
	"testing"

	"github.com/tidbits-ai/tidbits/internal/core"
	"gopkg.in/yaml.v3"
)

// regModule is the minimal registrable module. The registry is shared
// across the test binary, so every test derives its ID from t.Name().
type regModule struct {
	id core.ModuleID
}

func (m *regModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  m.id,
		New: func() core.Module { return &regModule{id: m.id} },
	}
}

// registerBackend registers a storage module named after the test and
// returns its ID.
func registerBackend(t *testing.T) string {
	t.Helper()
	id := "storage." + t.Name()
	core.RegisterModule(&regModule{id: core.ModuleID(id)})
	return id
}

func TestValidate_Version(t *testing.T) {
	id := registerBackend(t)

	tests := []struct {
		name    string
		version string
		wantErr string // empty means the config is valid
	}{
		{name: "supported", version: "1"},
		{name: "missing", version: "", wantErr: "version"},
		{name: "unsupported", version: "99", wantErr: "unsupported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&Config{Version: tt.version, Storage: id})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownStorage(t *testing.T) {
	err := Validate(&Config{Version: "1", Storage: "storage.missing"})
	if err == nil {
		t.Fatal("Validate() = nil, want error for unregistered storage module")
	}
	if !strings.Contains(err.Error(), "storage.missing") {
		t.Errorf("Validate() = %v, want mention of storage.missing", err)
	}
}

func TestValidate_StorageOutsideNamespace(t *testing.T) {
	err := Validate(&Config{Version: "1", Storage: "cache.redis"})
	if err == nil {
		t.Fatal("Validate() = nil, want error for non-storage module")
	}
	if !strings.Contains(err.Error(), "namespace") {
		t.Errorf("Validate() = %v, want mention of the namespace", err)
	}
}

func TestValidate_UnknownModuleEntry(t *testing.T) {
	id := registerBackend(t)

	err := Validate(&Config{
		Version: "1",
		Storage: id,
		Modules: map[string]yaml.Node{"storage.ghost": {}},
	})
	if err == nil {
		t.Fatal("Validate() = nil, want error for unregistered modules entry")
	}
	if !strings.Contains(err.Error(), "storage.ghost") {
		t.Errorf("Validate() = %v, want mention of storage.ghost", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	err := Validate(&Config{
		Version: "99",
		Storage: "storage.nope",
		Modules: map[string]yaml.Node{"bad.one": {}},
	})
	if err == nil {
		t.Fatal("Validate() = nil, want joined errors")
	}
	for _, want := range []string{"unsupported", "storage.nope", "bad.one"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, want mention of %q", err, want)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		storage string
		want    string
	}{
		{name: "explicit", storage: "storage.sqlite", want: "storage.sqlite"},
		{name: "default", storage: "", want: DefaultStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Version: "1", Storage: tt.storage}
			if got := Resolve(cfg); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}
