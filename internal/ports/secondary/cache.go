package secondary

import (
	"context"

	"github.com/caburj/kwartrack/internal/core/querykey"
	"github.com/caburj/kwartrack/internal/core/selection"
)

// QueryCache defines the secondary port for caching read query results.
type QueryCache interface {
	// Get returns the cached result for key.
	Get(key querykey.Key) (any, bool)

	// Set stores the result for key.
	Set(key querykey.Key, value any)

	// Generation returns a counter bumped by every Invalidate call.
	Generation() uint64

	// SetIfCurrent stores the result only if no invalidation happened since
	// generation was read, so a fetch racing a mutation cannot cache stale data.
	SetIfCurrent(key querykey.Key, value any, generation uint64) bool

	// Invalidate drops every entry matched by one of the patterns and returns
	// the number of entries dropped.
	Invalidate(patterns ...querykey.Pattern) int
}

// InvalidationMessage is an applied invalidation shared with other sessions.
type InvalidationMessage struct {
	SessionID string             `json:"session_id"`
	Mutation  string             `json:"mutation"`
	Patterns  []querykey.Pattern `json:"patterns"`
}

// InvalidationPublisher defines the secondary port for broadcasting invalidations.
type InvalidationPublisher interface {
	Publish(ctx context.Context, msg InvalidationMessage) error
}

// SessionStore defines the secondary port for persisting selection snapshots.
type SessionStore interface {
	// Load returns the saved snapshot, or ok=false if none exists.
	Load(ctx context.Context) (state selection.State, ok bool, err error)

	// Save replaces the saved snapshot.
	Save(ctx context.Context, state selection.State) error
}
