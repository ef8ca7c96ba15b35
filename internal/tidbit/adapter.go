package tidbit

import (
	"context"
	"maps"
	"slices"
)

// State is the full persisted contents of a store: every memory and every
// live vote. Adapters load and save it as a unit.
type State struct {
	Memories map[string]Memory
	Votes    map[VoteKey]Vote
}

// NewState returns an empty state with allocated maps.
func NewState() State {
	return State{
		Memories: make(map[string]Memory),
		Votes:    make(map[VoteKey]Vote),
	}
}

// Clone returns a deep copy of the state. Tag slices are copied so the
// clone never aliases the original.
func (s State) Clone() State {
	out := State{
		Memories: make(map[string]Memory, len(s.Memories)),
		Votes:    maps.Clone(s.Votes),
	}
	if out.Votes == nil {
		out.Votes = make(map[VoteKey]Vote)
	}
	for id, mem := range s.Memories {
		mem.Tags = slices.Clone(mem.Tags)
		out.Memories[id] = mem
	}
	return out
}

// Adapter persists the full store state. Implementations carry no business
// rules: Load returns what was last saved and Save replaces it, either
// fully succeeding or leaving the prior durable state intact.
// Implementations must be safe for concurrent use.
type Adapter interface {
	// Load returns the current persisted state. A backing medium that does
	// not exist yet yields an empty state, not an error.
	Load(ctx context.Context) (State, error)

	// Save replaces the persisted state with the given one.
	Save(ctx context.Context, state State) error
}
