package tidbit

import (
	"cmp"
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OrderBy selects the sort order for ListMemories.
type OrderBy string

const (
	// OrderByVotes ranks by score descending, oldest first among ties.
	OrderByVotes OrderBy = "votes"

	// OrderByCreatedAt ranks newest first.
	OrderByCreatedAt OrderBy = "created_at"
)

// CreateParams are the optional attributes of a new memory.
type CreateParams struct {
	// Creator is a free-form attribution string.
	Creator string

	// Tags label the memory for filtered listing.
	Tags []string

	// VoterID is accepted for symmetry with the vote operations but casts
	// no vote; new memories always start with a score of zero.
	VoterID string
}

// ListParams filter and order a ranked listing.
type ListParams struct {
	OrderBy OrderBy  // empty means OrderByVotes
	Limit   int      // 0 means no limit
	Tags    []string // keep memories sharing at least one tag
}

// MemoryView is the reduced shape returned by GetMemories. Scores and
// attribution are omitted so readers judge content on its own merits.
type MemoryView struct {
	ID      string   `json:"id"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// BrowseResult is the outcome of GetMemories.
type BrowseResult struct {
	Memories []MemoryView `json:"memories"`
	VoterID  string       `json:"voter_id"`
}

// Store implements the tidbit operations over a persistence Adapter. Every
// operation loads the full state, mutates a local copy, and saves it back;
// a mutex serializes operations so concurrent calls through one Store never
// interleave a load with another call's save.
type Store struct {
	mu      sync.Mutex
	adapter Adapter
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDSource overrides the generator used for memory and voter ids.
func WithIDSource(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// NewStore creates a Store backed by the given adapter.
func NewStore(adapter Adapter, opts ...Option) *Store {
	s := &Store{
		adapter: adapter,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateMemory stores a new memory with the given content. The memory
// starts unvoted regardless of any VoterID in the params.
func (s *Store) CreateMemory(ctx context.Context, content string, p CreateParams) (Memory, error) {
	if strings.TrimSpace(content) == "" {
		return Memory{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return Memory{}, err
	}

	now := s.now()
	mem := Memory{
		ID:        s.newID(),
		Content:   content,
		Creator:   p.Creator,
		Tags:      slices.Clone(p.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	state.Memories[mem.ID] = mem

	if err := s.save(ctx, state); err != nil {
		return Memory{}, err
	}
	return mem, nil
}

// GetMemory returns a single memory by id.
func (s *Store) GetMemory(ctx context.Context, memoryID string) (Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return Memory{}, err
	}
	mem, ok := state.Memories[memoryID]
	if !ok {
		return Memory{}, ErrNotFound
	}
	return mem, nil
}

// UpvoteMemory sets voterID's vote on the memory to up, replacing any
// prior vote by the same voter.
func (s *Store) UpvoteMemory(ctx context.Context, memoryID, voterID string) (Memory, error) {
	return s.setVote(ctx, memoryID, voterID, Up)
}

// DownvoteMemory sets voterID's vote on the memory to down, replacing any
// prior vote by the same voter.
func (s *Store) DownvoteMemory(ctx context.Context, memoryID, voterID string) (Memory, error) {
	return s.setVote(ctx, memoryID, voterID, Down)
}

func (s *Store) setVote(ctx context.Context, memoryID, voterID string, dir Direction) (Memory, error) {
	if strings.TrimSpace(voterID) == "" {
		return Memory{}, ErrNoVoterID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return Memory{}, err
	}
	mem, ok := state.Memories[memoryID]
	if !ok {
		return Memory{}, ErrNotFound
	}

	now := s.now()
	key := VoteKey{MemoryID: memoryID, VoterID: voterID}
	prev, voted := state.Votes[key]
	state.Votes[key] = Vote{
		MemoryID:  memoryID,
		VoterID:   voterID,
		Direction: dir,
		CastAt:    now,
	}

	mem.Votes += dir.Weight()
	if voted {
		mem.Votes -= prev.Direction.Weight()
	}
	mem.UpdatedAt = now
	state.Memories[memoryID] = mem

	if err := s.save(ctx, state); err != nil {
		return Memory{}, err
	}
	return mem, nil
}

// UnvoteMemory removes voterID's vote on the memory. A voter with no live
// vote is not an error; the call returns the memory unchanged without
// touching storage.
func (s *Store) UnvoteMemory(ctx context.Context, memoryID, voterID string) (Memory, error) {
	if strings.TrimSpace(voterID) == "" {
		return Memory{}, ErrNoVoterID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return Memory{}, err
	}
	mem, ok := state.Memories[memoryID]
	if !ok {
		return Memory{}, ErrNotFound
	}

	key := VoteKey{MemoryID: memoryID, VoterID: voterID}
	vote, voted := state.Votes[key]
	if !voted {
		return mem, nil
	}
	delete(state.Votes, key)

	mem.Votes -= vote.Direction.Weight()
	mem.UpdatedAt = s.now()
	state.Memories[memoryID] = mem

	if err := s.save(ctx, state); err != nil {
		return Memory{}, err
	}
	return mem, nil
}

// RemoveMemory deletes the memory and every vote cast on it.
func (s *Store) RemoveMemory(ctx context.Context, memoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := state.Memories[memoryID]; !ok {
		return ErrNotFound
	}

	delete(state.Memories, memoryID)
	for key := range state.Votes {
		if key.MemoryID == memoryID {
			delete(state.Votes, key)
		}
	}

	return s.save(ctx, state)
}

// ListMemories returns memories in a deterministic ranked order.
func (s *Store) ListMemories(ctx context.Context, p ListParams) ([]Memory, error) {
	order := p.OrderBy
	if order == "" {
		order = OrderByVotes
	}
	switch order {
	case OrderByVotes, OrderByCreatedAt:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, order)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	memories := make([]Memory, 0, len(state.Memories))
	for _, mem := range state.Memories {
		if len(p.Tags) > 0 && !hasAnyTag(mem.Tags, p.Tags) {
			continue
		}
		memories = append(memories, mem)
	}

	switch order {
	case OrderByVotes:
		slices.SortFunc(memories, compareByVotes)
	case OrderByCreatedAt:
		slices.SortFunc(memories, compareByCreatedAt)
	}

	if p.Limit > 0 && len(memories) > p.Limit {
		memories = memories[:p.Limit]
	}
	return memories, nil
}

// GetMemories returns memories in a fresh random order, reduced to
// MemoryView so scores cannot bias the reader. An empty voterID yields a
// newly generated one in the result; limit truncates after shuffling.
func (s *Store) GetMemories(ctx context.Context, voterID string, limit int) (BrowseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return BrowseResult{}, err
	}

	views := make([]MemoryView, 0, len(state.Memories))
	for _, mem := range state.Memories {
		views = append(views, MemoryView{
			ID:      mem.ID,
			Content: mem.Content,
			Tags:    slices.Clone(mem.Tags),
		})
	}
	rand.Shuffle(len(views), func(i, j int) {
		views[i], views[j] = views[j], views[i]
	})
	if limit > 0 && len(views) > limit {
		views = views[:limit]
	}

	if strings.TrimSpace(voterID) == "" {
		voterID = s.newID()
	}
	return BrowseResult{Memories: views, VoterID: voterID}, nil
}

// CreateVoterID mints a fresh opaque voter identity.
func (s *Store) CreateVoterID() string {
	return s.newID()
}

// load fetches the current state and recomputes every derived score, so a
// document written by another process still satisfies the score invariant.
func (s *Store) load(ctx context.Context) (State, error) {
	state, err := s.adapter.Load(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}
	if state.Memories == nil {
		state.Memories = make(map[string]Memory)
	}
	if state.Votes == nil {
		state.Votes = make(map[VoteKey]Vote)
	}
	recount(state)
	return state, nil
}

func (s *Store) save(ctx context.Context, state State) error {
	if err := s.adapter.Save(ctx, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// recount rewrites every memory's score from the live vote records.
func recount(state State) {
	counts := make(map[string]int, len(state.Memories))
	for key, vote := range state.Votes {
		counts[key.MemoryID] += vote.Direction.Weight()
	}
	for id, mem := range state.Memories {
		mem.Votes = counts[id]
		state.Memories[id] = mem
	}
}

// compareByVotes orders by score descending, then oldest first, then id.
func compareByVotes(a, b Memory) int {
	if c := cmp.Compare(b.Votes, a.Votes); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// compareByCreatedAt orders newest first, then id.
func compareByCreatedAt(a, b Memory) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
