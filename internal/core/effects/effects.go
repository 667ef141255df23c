// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import (
	"github.com/caburj/kwartrack/internal/core/querykey"
	"github.com/caburj/kwartrack/internal/core/selection"
)

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// InvalidateEffect drops every cached query matched by one of the patterns.
type InvalidateEffect struct {
	Mutation string // mutation variant that caused the invalidation
	Patterns []querykey.Pattern
}

func (e InvalidateEffect) EffectType() string { return "invalidate" }

// DispatchEffect applies a selection action to the session that issued the
// mutation, keeping the selection consistent with stored data.
type DispatchEffect struct {
	Action selection.Action
}

func (e DispatchEffect) EffectType() string { return "dispatch" }
