// Package tidbit implements the shared memory store: short text learnings
// recorded by agents and ranked by their votes.
package tidbit

import "time"

// Memory is a single stored learning item shared between agents.
type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Creator   string    `json:"creator,omitempty"` // free-form attribution
	Tags      []string  `json:"tags,omitempty"`
	Votes     int       `json:"votes"` // derived: sum of live vote weights
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Direction is the polarity of a vote.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Weight returns the score contribution of a vote in this direction.
func (d Direction) Weight() int {
	switch d {
	case Up:
		return 1
	case Down:
		return -1
	default:
		return 0
	}
}

// Vote is one voter's current preference on one memory. At most one vote
// exists per (memory, voter) pair; re-voting overwrites it in place and
// unvoting deletes it.
type Vote struct {
	MemoryID  string    `json:"memory_id"`
	VoterID   string    `json:"voter_id"`
	Direction Direction `json:"direction"`
	CastAt    time.Time `json:"cast_at"`
}

// VoteKey identifies a vote by its (memory, voter) pair.
type VoteKey struct {
	MemoryID string
	VoterID  string
}

// Key returns the vote's identity.
func (v Vote) Key() VoteKey {
	return VoteKey{MemoryID: v.MemoryID, VoterID: v.VoterID}
}
