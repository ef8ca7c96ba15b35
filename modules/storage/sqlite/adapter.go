package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidbits-ai/tidbits/internal/tidbit"
)

// Adapter persists the full store state in SQLite. Load reads every row;
// Save replaces the entire contents inside one transaction, so a failed
// save leaves the previous state intact.
type Adapter struct {
	db *sql.DB
}

// Load returns the state assembled from the memories and votes tables.
func (a *Adapter) Load(ctx context.Context) (tidbit.State, error) {
	state := tidbit.NewState()

	// The pool is capped at one connection, so each result set must be
	// drained before the next query runs.
	if err := a.loadMemories(ctx, state); err != nil {
		return tidbit.State{}, err
	}
	if err := a.loadVotes(ctx, state); err != nil {
		return tidbit.State{}, err
	}
	return state, nil
}

func (a *Adapter) loadMemories(ctx context.Context, state tidbit.State) error {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, content, creator, tags, votes, created_at, updated_at
		FROM memories`)
	if err != nil {
		return fmt.Errorf("sqlite: query memories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			mem       tidbit.Memory
			tagsJSON  string
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&mem.ID, &mem.Content, &mem.Creator, &tagsJSON, &mem.Votes, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("sqlite: scan memory: %w", err)
		}

		if tagsJSON != "" && tagsJSON != "[]" && tagsJSON != "null" {
			if err := json.Unmarshal([]byte(tagsJSON), &mem.Tags); err != nil {
				return fmt.Errorf("sqlite: unmarshal tags for %s: %w", mem.ID, err)
			}
		}
		if mem.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if mem.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return err
		}

		state.Memories[mem.ID] = mem
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterate memories: %w", err)
	}
	return nil
}

func (a *Adapter) loadVotes(ctx context.Context, state tidbit.State) error {
	rows, err := a.db.QueryContext(ctx, `
		SELECT memory_id, voter_id, direction, cast_at
		FROM votes`)
	if err != nil {
		return fmt.Errorf("sqlite: query votes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			vote   tidbit.Vote
			castAt string
		)
		if err := rows.Scan(&vote.MemoryID, &vote.VoterID, &vote.Direction, &castAt); err != nil {
			return fmt.Errorf("sqlite: scan vote: %w", err)
		}

		// The CHECK constraint guards our own writes; rows written by
		// other tools are still verified here.
		if vote.Direction != tidbit.Up && vote.Direction != tidbit.Down {
			return fmt.Errorf("sqlite: vote (%s, %s) has direction %q", vote.MemoryID, vote.VoterID, vote.Direction)
		}
		if _, ok := state.Memories[vote.MemoryID]; !ok {
			return fmt.Errorf("sqlite: vote by %q references absent memory %q", vote.VoterID, vote.MemoryID)
		}
		if vote.CastAt, err = parseTime(castAt); err != nil {
			return err
		}

		state.Votes[vote.Key()] = vote
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterate votes: %w", err)
	}
	return nil
}

// Save replaces the persisted state. Memories are inserted before votes
// so the foreign key holds throughout the transaction.
func (a *Adapter) Save(ctx context.Context, state tidbit.State) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM votes"); err != nil {
		return fmt.Errorf("sqlite: clear votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM memories"); err != nil {
		return fmt.Errorf("sqlite: clear memories: %w", err)
	}

	for _, mem := range state.Memories {
		tagsJSON, err := json.Marshal(mem.Tags)
		if err != nil {
			return fmt.Errorf("sqlite: marshal tags for %s: %w", mem.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO memories (id, content, creator, tags, votes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			mem.ID, mem.Content, mem.Creator, string(tagsJSON), mem.Votes,
			mem.CreatedAt.Format(time.RFC3339Nano),
			mem.UpdatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert memory %s: %w", mem.ID, err)
		}
	}

	for _, vote := range state.Votes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO votes (memory_id, voter_id, direction, cast_at)
			VALUES (?, ?, ?, ?)`,
			vote.MemoryID, vote.VoterID, string(vote.Direction),
			vote.CastAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("sqlite: insert vote (%s, %s): %w", vote.MemoryID, vote.VoterID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit save: %w", err)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}
