package tidbit

import "errors"

// Sentinel errors for store operations.
var (
	// ErrNotFound indicates the referenced memory does not exist.
	ErrNotFound = errors.New("tidbit: memory not found")

	// ErrEmptyContent indicates a memory was created with empty or
	// whitespace-only content.
	ErrEmptyContent = errors.New("tidbit: content is empty")

	// ErrNoVoterID indicates a vote operation without a voter identity.
	ErrNoVoterID = errors.New("tidbit: voter id is empty")

	// ErrUnknownOrder indicates an unsupported list ordering.
	ErrUnknownOrder = errors.New("tidbit: unknown order")
)
