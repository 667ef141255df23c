// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/caburj/kwartrack/internal/core/effects"
	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/ctxutil"
	klog "github.com/caburj/kwartrack/internal/log"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// Dispatcher applies selection actions to the session that issued a mutation.
type Dispatcher interface {
	SessionID() string
	Dispatch(ctx context.Context, action selection.Action) (selection.State, error)
}

// DefaultEffectExecutor implements EffectExecutor over the query cache, the
// invalidation publisher and the session.
type DefaultEffectExecutor struct {
	cache     secondary.QueryCache
	publisher secondary.InvalidationPublisher
	session   Dispatcher
	logger    *klog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
// publisher and session are optional.
func NewEffectExecutor(
	cache secondary.QueryCache,
	publisher secondary.InvalidationPublisher,
	session Dispatcher,
	logger *klog.Logger,
) *DefaultEffectExecutor {
	if logger == nil {
		logger = klog.Discard()
	}
	return &DefaultEffectExecutor{
		cache:     cache,
		publisher: publisher,
		session:   session,
		logger:    logger.WithComponent(klog.ComponentEffects),
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.InvalidateEffect:
		e.executeInvalidate(ctx, typed)
		return nil
	case effects.DispatchEffect:
		return e.executeDispatch(ctx, typed)
	case effects.LogEffect:
		e.executeLog(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeInvalidate(ctx context.Context, eff effects.InvalidateEffect) {
	dropped := 0
	if e.cache != nil {
		dropped = e.cache.Invalidate(eff.Patterns...)
	}
	e.logger.DebugContext(ctx, "invalidated queries",
		klog.FieldOperation, klog.OpInvalidate,
		klog.FieldMutation, eff.Mutation,
		klog.FieldPatterns, len(eff.Patterns),
		klog.FieldInvalidated, dropped)

	if e.publisher == nil || len(eff.Patterns) == 0 {
		return
	}
	msg := secondary.InvalidationMessage{
		SessionID: e.sessionID(ctx),
		Mutation:  eff.Mutation,
		Patterns:  eff.Patterns,
	}
	// A failed publish leaves other sessions stale until their entries expire.
	if err := e.publisher.Publish(ctx, msg); err != nil {
		e.logger.WarnContext(ctx, "failed to publish invalidation",
			klog.FieldOperation, klog.OpPublish,
			klog.FieldMutation, eff.Mutation,
			klog.FieldError, err.Error())
	}
}

func (e *DefaultEffectExecutor) executeDispatch(ctx context.Context, eff effects.DispatchEffect) error {
	if e.session == nil {
		return nil
	}
	if _, err := e.session.Dispatch(ctx, eff.Action); err != nil {
		return err
	}
	e.logger.DebugContext(ctx, "dispatched selection action",
		klog.FieldOperation, klog.OpDispatch,
		klog.FieldAction, eff.Action.Name())
	return nil
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	level, err := klog.ParseLevel(eff.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	keys := make([]string, 0, len(eff.Fields))
	for k := range eff.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, eff.Fields[k])
	}
	e.logger.LogAt(ctx, level, eff.Message, args...)
}

// ApplyRemote applies an invalidation broadcast by another session to the
// local cache. It never republishes. Returns the number of entries dropped.
func (e *DefaultEffectExecutor) ApplyRemote(ctx context.Context, msg secondary.InvalidationMessage) int {
	if e.cache == nil {
		return 0
	}
	dropped := e.cache.Invalidate(msg.Patterns...)
	e.logger.DebugContext(ctx, "applied remote invalidation",
		klog.FieldOperation, klog.OpConsume,
		klog.FieldSession, msg.SessionID,
		klog.FieldMutation, msg.Mutation,
		klog.FieldInvalidated, dropped)
	return dropped
}

// sessionID prefers the session carried by ctx over the executor's own.
func (e *DefaultEffectExecutor) sessionID(ctx context.Context) string {
	if id := ctxutil.SessionFromContext(ctx); id != "" {
		return id
	}
	if e.session == nil {
		return ""
	}
	return e.session.SessionID()
}

var _ EffectExecutor = (*DefaultEffectExecutor)(nil)
