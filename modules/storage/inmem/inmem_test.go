package inmem

import (
	"context"
	"log/slog"
	"testing"

	"github.com/tidbits-ai/tidbits/internal/core"
	"github.com/tidbits-ai/tidbits/internal/tidbit"
)

func TestModule_Provision(t *testing.T) {
	m := &Module{}
	ctx := core.NewAppContext(slog.Default(), t.TempDir())

	if err := m.Provision(ctx); err != nil {
		t.Fatalf("Provision: unexpected error: %v", err)
	}
	if m.Adapter() == nil {
		t.Fatal("Adapter() = nil after provision")
	}

	// The adapter starts empty and round-trips state.
	state, err := m.Adapter().Load(context.Background())
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if len(state.Memories) != 0 {
		t.Errorf("fresh adapter holds %d memories, want 0", len(state.Memories))
	}

	state.Memories["m1"] = tidbit.Memory{ID: "m1", Content: "hello"}
	if err := m.Adapter().Save(context.Background(), state); err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}
	got, err := m.Adapter().Load(context.Background())
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if got.Memories["m1"].Content != "hello" {
		t.Errorf("Content = %q, want %q", got.Memories["m1"].Content, "hello")
	}
}

func TestModule_Registered(t *testing.T) {
	info, ok := core.GetModule("storage.memory")
	if !ok {
		t.Fatal("storage.memory is not registered")
	}
	if info.New == nil {
		t.Fatal("ModuleInfo.New is nil")
	}
	if _, ok := info.New().(*Module); !ok {
		t.Errorf("New() = %T, want *Module", info.New())
	}
}
