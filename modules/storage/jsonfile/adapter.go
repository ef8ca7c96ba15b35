package jsonfile

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/tidbits-ai/tidbits/internal/tidbit"
)

// ErrCorrupt indicates the document exists but cannot be interpreted:
// malformed JSON, an unknown vote direction, or a vote referencing an
// absent memory.
var ErrCorrupt = errors.New("jsonfile: corrupt document")

const docVersion = 1

// document is the on-disk layout. Votes are kept as a sorted list so
// documents are stable and diffable.
type document struct {
	Version  int                      `json:"version"`
	Memories map[string]tidbit.Memory `json:"memories"`
	Votes    []tidbit.Vote            `json:"votes"`
}

// Adapter persists the full store state as one JSON document.
type Adapter struct {
	mu   sync.Mutex
	path string
}

// NewAdapter creates an adapter for the document at path. The file is
// created on first save.
func NewAdapter(path string) *Adapter {
	return &Adapter{path: path}
}

// Load reads and decodes the document. A missing file yields an empty
// state.
func (a *Adapter) Load(_ context.Context) (tidbit.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	raw, err := os.ReadFile(a.path)
	if errors.Is(err, fs.ErrNotExist) {
		return tidbit.NewState(), nil
	}
	if err != nil {
		return tidbit.State{}, fmt.Errorf("jsonfile: read %s: %w", a.path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return tidbit.State{}, fmt.Errorf("jsonfile: parse %s: %w: %w", a.path, ErrCorrupt, err)
	}
	if doc.Version != docVersion {
		return tidbit.State{}, fmt.Errorf("jsonfile: %s: unsupported document version %d", a.path, doc.Version)
	}

	state := tidbit.NewState()
	for id, mem := range doc.Memories {
		if mem.ID != id {
			return tidbit.State{}, fmt.Errorf("jsonfile: %s: memory keyed %q has id %q: %w", a.path, id, mem.ID, ErrCorrupt)
		}
		state.Memories[id] = mem
	}
	for _, vote := range doc.Votes {
		if vote.Direction != tidbit.Up && vote.Direction != tidbit.Down {
			return tidbit.State{}, fmt.Errorf("jsonfile: %s: vote (%s, %s) has direction %q: %w",
				a.path, vote.MemoryID, vote.VoterID, vote.Direction, ErrCorrupt)
		}
		if _, ok := state.Memories[vote.MemoryID]; !ok {
			return tidbit.State{}, fmt.Errorf("jsonfile: %s: vote by %q references absent memory %q: %w",
				a.path, vote.VoterID, vote.MemoryID, ErrCorrupt)
		}
		key := vote.Key()
		if _, dup := state.Votes[key]; dup {
			return tidbit.State{}, fmt.Errorf("jsonfile: %s: duplicate vote (%s, %s): %w",
				a.path, vote.MemoryID, vote.VoterID, ErrCorrupt)
		}
		state.Votes[key] = vote
	}
	return state, nil
}

// Save encodes the state and atomically replaces the document: the bytes
// land in a temp file in the same directory, then rename swaps it in.
func (a *Adapter) Save(_ context.Context, state tidbit.State) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	votes := make([]tidbit.Vote, 0, len(state.Votes))
	for _, vote := range state.Votes {
		votes = append(votes, vote)
	}
	slices.SortFunc(votes, func(x, y tidbit.Vote) int {
		if c := cmp.Compare(x.MemoryID, y.MemoryID); c != 0 {
			return c
		}
		return cmp.Compare(x.VoterID, y.VoterID)
	})

	doc := document{
		Version:  docVersion,
		Memories: state.Memories,
		Votes:    votes,
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode document: %w", err)
	}
	raw = append(raw, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(a.path), ".memories-*.tmp")
	if err != nil {
		return fmt.Errorf("jsonfile: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("jsonfile: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("jsonfile: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, a.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("jsonfile: replace %s: %w", a.path, err)
	}
	return nil
}
