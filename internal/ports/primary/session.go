package primary

import (
	"context"

	"github.com/caburj/kwartrack/internal/core/selection"
)

// SessionService defines the primary port for the selection state of one session.
type SessionService interface {
	// SessionID identifies the session in broadcast invalidations.
	SessionID() string

	// State returns a snapshot of the current selection.
	State() selection.State

	// Dispatch applies an action and persists the resulting state. On a
	// validation error the state is unchanged.
	Dispatch(ctx context.Context, action selection.Action) (selection.State, error)

	// Reset returns the session to the initial state.
	Reset(ctx context.Context) (selection.State, error)
}
