// internal/intake/memory/store.go

// Package memory holds the per-user fallback conversation backlog, used only
// when the caller supplies no history of its own.
package memory

import "context"

// Store is a keyed conversation backlog. Implementations must be safe for
// concurrent access on independent keys; a last-writer-wins race on the same
// key is acceptable because one user's messages are serialized by their own
// conversation.
type Store interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Append(ctx context.Context, userID, line string) error
	Clear(ctx context.Context, userID string) error
}
