package tidbit_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tidbits-ai/tidbits/internal/tidbit"
)

// Compile-time interface guard.
var _ tidbit.Adapter = (*tidbit.MemoryAdapter)(nil)

func seedState() tidbit.State {
	state := tidbit.NewState()
	state.Memories["m1"] = tidbit.Memory{
		ID:        "m1",
		Content:   "first memory",
		Tags:      []string{"go"},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	state.Votes[tidbit.VoteKey{MemoryID: "m1", VoterID: "v1"}] = tidbit.Vote{
		MemoryID:  "m1",
		VoterID:   "v1",
		Direction: tidbit.Up,
		CastAt:    time.Date(2025, 6, 1, 12, 1, 0, 0, time.UTC),
	}
	return state
}

func TestMemoryAdapter_LoadEmpty(t *testing.T) {
	t.Parallel()

	adapter := tidbit.NewMemoryAdapter()

	state, err := adapter.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if len(state.Memories) != 0 {
		t.Errorf("Load returned %d memories, want 0", len(state.Memories))
	}
	if len(state.Votes) != 0 {
		t.Errorf("Load returned %d votes, want 0", len(state.Votes))
	}
}

func TestMemoryAdapter_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := tidbit.NewMemoryAdapter()

	if err := adapter.Save(ctx, seedState()); err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	mem, ok := got.Memories["m1"]
	if !ok {
		t.Fatal("Load: memory m1 missing")
	}
	if mem.Content != "first memory" {
		t.Errorf("Content = %q, want %q", mem.Content, "first memory")
	}
	vote, ok := got.Votes[tidbit.VoteKey{MemoryID: "m1", VoterID: "v1"}]
	if !ok {
		t.Fatal("Load: vote (m1, v1) missing")
	}
	if vote.Direction != tidbit.Up {
		t.Errorf("Direction = %q, want %q", vote.Direction, tidbit.Up)
	}
}

func TestMemoryAdapter_LoadIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := tidbit.NewMemoryAdapter()

	if err := adapter.Save(ctx, seedState()); err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}

	// Mutating a loaded copy must not leak back into the adapter.
	loaded, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	delete(loaded.Memories, "m1")
	loaded.Votes[tidbit.VoteKey{MemoryID: "m1", VoterID: "intruder"}] = tidbit.Vote{}

	fresh, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("Load (second): unexpected error: %v", err)
	}
	if _, ok := fresh.Memories["m1"]; !ok {
		t.Error("mutating a loaded state removed m1 from the adapter")
	}
	if len(fresh.Votes) != 1 {
		t.Errorf("adapter holds %d votes, want 1", len(fresh.Votes))
	}
}

func TestMemoryAdapter_SaveIsolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := tidbit.NewMemoryAdapter()

	state := seedState()
	if err := adapter.Save(ctx, state); err != nil {
		t.Fatalf("Save: unexpected error: %v", err)
	}

	// Mutating the saved state afterwards must not affect the adapter.
	state.Memories["m2"] = tidbit.Memory{ID: "m2", Content: "late addition"}
	mem := state.Memories["m1"]
	mem.Tags[0] = "mutated"
	state.Memories["m1"] = mem

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if _, ok := got.Memories["m2"]; ok {
		t.Error("mutation after Save leaked m2 into the adapter")
	}
	if got.Memories["m1"].Tags[0] != "go" {
		t.Errorf("Tags[0] = %q, want %q (tag slice must be copied)", got.Memories["m1"].Tags[0], "go")
	}
}

func TestMemoryAdapter_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	adapter := tidbit.NewMemoryAdapter()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			state := tidbit.NewState()
			id := fmt.Sprintf("m%d", n)
			state.Memories[id] = tidbit.Memory{ID: id, Content: "concurrent"}
			if err := adapter.Save(ctx, state); err != nil {
				t.Errorf("Save from goroutine %d: unexpected error: %v", n, err)
			}
			if _, err := adapter.Load(ctx); err != nil {
				t.Errorf("Load from goroutine %d: unexpected error: %v", n, err)
			}
		}(g)
	}
	wg.Wait()

	got, err := adapter.Load(ctx)
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if len(got.Memories) != 1 {
		t.Errorf("adapter holds %d memories, want 1 (last full-state save wins)", len(got.Memories))
	}
}
