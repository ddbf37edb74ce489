package browser

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

const (
	validatorIdle int32 = iota
	validatorInFlight
)

// SessionValidator is a single-flight liveness probe. A caller arriving
// while a probe runs gets false instead of queuing behind it.
type SessionValidator struct {
	timeout time.Duration
	state   atomic.Int32
	logger  Logger
}

// NewSessionValidator creates a validator with the given probe deadline.
func NewSessionValidator(timeout time.Duration, logger Logger) *SessionValidator {
	return &SessionValidator{timeout: timeout, logger: logger}
}

// Validate reports whether the session answers both a version query and a
// trivial page evaluation within the deadline.
func (v *SessionValidator) Validate(ctx context.Context, s *Session) bool {
	if s == nil || s.Browser == nil || s.Page == nil {
		return false
	}
	if !v.state.CompareAndSwap(validatorIdle, validatorInFlight) {
		v.logger.Debugf("validation already in flight, treating session %s as not validated", s.ID)
		return false
	}
	defer v.state.Store(validatorIdle)

	err := RaceErr(ctx, v.timeout, "validate session", func(ctx context.Context) error {
		if _, err := s.Browser.Version(ctx); err != nil {
			return fmt.Errorf("version query: %w", err)
		}
		if _, err := s.Page.Evaluate(ctx, "1 + 1"); err != nil {
			return fmt.Errorf("page evaluate: %w", err)
		}
		return nil
	})
	if err != nil {
		v.logger.Warnf("session %s failed validation (%s): %v", s.ID, Categorize(err), err)
		return false
	}
	return true
}

// InFlight reports whether a probe is currently running.
func (v *SessionValidator) InFlight() bool {
	return v.state.Load() == validatorInFlight
}
