package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger is the logging surface the session manager needs.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// SessionManager owns the single live browser session. It admits callers
// through the reentrancy guard and circuit breaker, reuses a session that
// passes validation, and otherwise tears it down and reconnects.
type SessionManager struct {
	// mu guards session; connectMu serializes validate/teardown/connect
	mu        sync.Mutex
	connectMu sync.Mutex
	session   *Session

	cfg        Config
	launcher   Launcher
	guard      *ReentrancyGuard
	breaker    *CircuitBreaker
	validator  *SessionValidator
	supervisor *ConnectionSupervisor
	logger     Logger
	metrics    *Metrics

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(m *SessionManager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithMetrics enables prometheus metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(m *SessionManager) {
		m.metrics = metrics
	}
}

// WithClock overrides the time source used by the breaker and supervisor.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSleep overrides how backoff and post-signal waits are performed.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(m *SessionManager) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// NewSessionManager creates a manager that launches browsers via launcher.
func NewSessionManager(launcher Launcher, cfg Config, opts ...Option) (*SessionManager, error) {
	if launcher == nil {
		return nil, errors.New("launcher is required")
	}
	m := &SessionManager{
		cfg:      cfg.withDefaults(),
		launcher: launcher,
		logger:   nopLogger{},
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.guard = NewReentrancyGuard(m.cfg.MaxDepth)
	m.breaker = NewCircuitBreaker(m.cfg.FailureThreshold, m.cfg.Cooldown, m.now)
	m.breaker.OnStateChange(func(s BreakerState) {
		m.metrics.breaker(s)
		m.logger.Infof("circuit breaker is now %s", s)
	})
	m.validator = NewSessionValidator(m.cfg.ValidateTimeout, m.logger)

	supervisor, err := newConnectionSupervisor(launcher, m.breaker, m.cfg, m.logger, m.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection supervisor: %w", err)
	}
	supervisor.now = m.now
	supervisor.sleep = m.sleep
	m.supervisor = supervisor
	return m, nil
}

// InitializeSession returns a live session, reusing the current one when it
// validates and reconnecting otherwise. Depth-guard and breaker rejections
// happen before any connection I/O, in that order.
func (m *SessionManager) InitializeSession(ctx context.Context, opts LaunchOptions) (*Session, error) {
	release, err := m.guard.Enter()
	if err != nil {
		m.metrics.rejected(CategoryDepthExceeded)
		return nil, err
	}
	defer release()

	probe, err := m.breaker.admit()
	if err != nil {
		m.metrics.rejected(CategoryCircuitOpen)
		return nil, err
	}

	m.connectMu.Lock()
	defer m.connectMu.Unlock()

	// The breaker may have opened while this caller waited for connectMu.
	if !probe {
		if probe, err = m.breaker.admit(); err != nil {
			m.metrics.rejected(CategoryCircuitOpen)
			return nil, err
		}
	}

	// A cancelled caller leaves the session alone.
	if err := ctx.Err(); err != nil {
		m.abandon(probe)
		return nil, err
	}

	if current := m.current(); current != nil {
		valid := m.validator.Validate(ctx, current)
		m.metrics.validated(valid)
		if valid {
			// A half-open probe slot was taken by admit; a live session is success.
			m.breaker.RecordSuccess()
			m.metrics.reused()
			return current, nil
		}
		if err := ctx.Err(); err != nil {
			m.logger.Debugf("validation of session %s interrupted: %v", current.ID, err)
			m.abandon(probe)
			return nil, err
		}
		m.logger.Warnf("session %s is stale, reconnecting", current.ID)
		m.teardownSession(ctx, m.detach(current))
	}

	session, err := m.supervisor.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	return session, nil
}

// GetSession returns the current session or ErrNoSession.
func (m *SessionManager) GetSession() (*Session, error) {
	if s := m.current(); s != nil {
		return s, nil
	}
	return nil, ErrNoSession
}

// HasSession reports whether a session is cached.
func (m *SessionManager) HasSession() bool {
	return m.current() != nil
}

// ValidateSession probes the current session. False means absent, stale, or
// a probe already in flight. The probe is shared with InitializeSession, so
// a call that overlaps its validation makes InitializeSession see a stale
// session and reconnect.
func (m *SessionManager) ValidateSession(ctx context.Context) bool {
	s := m.current()
	if s == nil {
		return false
	}
	valid := m.validator.Validate(ctx, s)
	m.metrics.validated(valid)
	return valid
}

// CloseSession tears down the current session. It is safe to call
// repeatedly and never fails.
func (m *SessionManager) CloseSession(ctx context.Context) {
	m.teardownSession(ctx, m.detach(nil))
}

// Shutdown closes the session and stops the launcher.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.CloseSession(ctx)
	if err := m.launcher.Close(); err != nil {
		return fmt.Errorf("failed to stop launcher: %w", err)
	}
	return nil
}

// Status is a snapshot of the manager for diagnostics.
type Status struct {
	Session *SessionInfo
	Breaker BreakerSnapshot
	Depth   int
}

// Status returns the current session info, breaker state and guard depth.
func (m *SessionManager) Status() Status {
	st := Status{
		Breaker: m.breaker.Snapshot(),
		Depth:   m.guard.Depth(),
	}
	if s := m.current(); s != nil {
		info := s.Info()
		st.Session = &info
	}
	return st
}

// Breaker exposes the circuit breaker for diagnostics and tests.
func (m *SessionManager) Breaker() *CircuitBreaker {
	return m.breaker
}

// abandon frees the half-open probe slot if this caller holds it.
func (m *SessionManager) abandon(probe bool) {
	if probe {
		m.breaker.Abandon()
	}
}

func (m *SessionManager) current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// detach clears the session reference before any teardown I/O so that
// concurrent closes become no-ops. When expected is non-nil the reference
// is only cleared if it still points at expected.
func (m *SessionManager) detach(expected *Session) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.session
	if s == nil || (expected != nil && s != expected) {
		return nil
	}
	m.session = nil
	return s
}
