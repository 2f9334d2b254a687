package session

import "context"

// Store is the ephemeral per-identity session store. Callers are expected to
// serialize turns per identity; Update is a read-merge-write cycle with no
// compare-and-swap, so concurrent writers on one identity can lose updates.
type Store interface {
	// Get retrieves the session for an identity and refreshes its TTL.
	// Returns nil with no error on miss or after expiry.
	Get(ctx context.Context, identity string) (*State, error)

	// Update reads the current session (or starts an empty one), shallow
	// merges the patch over it, re-applies the TTL and writes it back.
	// Returns the merged state.
	Update(ctx context.Context, identity string, patch Patch) (*State, error)

	// AppendTranscript adds a transcript entry stamped with the current
	// time and truncates to the most recent TranscriptCap entries.
	AppendTranscript(ctx context.Context, identity, role, text string) error

	// Delete removes the session. Absent sessions are not an error.
	Delete(ctx context.Context, identity string) error

	// Close releases any resources held by the store.
	Close() error
}
