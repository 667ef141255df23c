package selection

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("invalid selection action")

	// ErrInvariantViolation matches every *InvariantViolation via errors.Is.
	ErrInvariantViolation = errors.New("selection invariant violated")

	// ErrOverallBalanceActive is the reason given when an action would select
	// partitions while the overall balance is shown.
	ErrOverallBalanceActive = errors.New("overall balance is shown; turn it off before selecting partitions")
)

// ValidationError rejects a malformed action. The state is left unchanged.
type ValidationError struct {
	Action string
	Reason string
	Err    error // optional sentinel cause
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(a Action, format string, args ...any) error {
	return &ValidationError{Action: a.Name(), Reason: fmt.Sprintf(format, args...)}
}

func rejectOverall(a Action) error {
	return &ValidationError{Action: a.Name(), Reason: ErrOverallBalanceActive.Error(), Err: ErrOverallBalanceActive}
}

// InvariantViolation describes a state that no action handler should produce.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (v *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant %q violated: %s", v.Invariant, v.Detail)
}

// Is makes errors.Is(err, ErrInvariantViolation) hold.
func (v *InvariantViolation) Is(target error) bool {
	return target == ErrInvariantViolation
}
