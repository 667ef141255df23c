package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/caburj/kwartrack/internal/core/selection"
	klog "github.com/caburj/kwartrack/internal/log"
	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/ports/secondary"
)

// SessionServiceImpl implements the SessionService interface. It owns the
// selection store of one session and saves every accepted state.
type SessionServiceImpl struct {
	mu      sync.Mutex
	id      string
	store   *selection.Store
	storage secondary.SessionStore
	opts    []selection.Option
	logger  *klog.Logger
}

// NewSessionService restores the session from storage, or starts a fresh one.
// storage is optional; without it the session lives in memory only.
func NewSessionService(
	ctx context.Context,
	storage secondary.SessionStore,
	logger *klog.Logger,
	opts ...selection.Option,
) (*SessionServiceImpl, error) {
	if logger == nil {
		logger = klog.Discard()
	}
	s := &SessionServiceImpl{
		id:      uuid.NewString(),
		storage: storage,
		opts:    opts,
		logger:  logger.WithComponent(klog.ComponentSession),
	}

	storeOpts := append([]selection.Option{}, opts...)
	if storage != nil {
		saved, ok, err := storage.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
		if ok {
			storeOpts = append(storeOpts, selection.WithState(saved))
		}
	}
	s.store = selection.NewStore(storeOpts...)
	return s, nil
}

// SessionID returns the id this process announces invalidations under.
func (s *SessionServiceImpl) SessionID() string {
	return s.id
}

// State returns a snapshot of the current selection.
func (s *SessionServiceImpl) State() selection.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.State()
}

// Dispatch applies an action and saves the resulting state.
func (s *SessionServiceImpl) Dispatch(ctx context.Context, action selection.Action) (selection.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Dispatch(action)
	if err != nil {
		if errors.Is(err, selection.ErrValidation) {
			s.logger.DebugContext(ctx, "rejected selection action",
				klog.FieldAction, action.Name(), klog.FieldError, err.Error())
		}
		return state, err
	}
	if err := s.save(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

// Reset returns the session to the initial state.
func (s *SessionServiceImpl) Reset(ctx context.Context) (selection.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store = selection.NewStore(s.opts...)
	state := s.store.State()
	if err := s.save(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

func (s *SessionServiceImpl) save(ctx context.Context, state selection.State) error {
	if s.storage == nil {
		return nil
	}
	if err := s.storage.Save(ctx, state); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Ensure SessionServiceImpl implements the interfaces.
var (
	_ primary.SessionService = (*SessionServiceImpl)(nil)
	_ Dispatcher             = (*SessionServiceImpl)(nil)
)
