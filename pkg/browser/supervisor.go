package browser

import (
	"context"
	"fmt"
	"time"
)

// Launcher is the external collaborator that spawns a browser for a
// strategy and connects to its debugging endpoint. Launch must honour ctx
// cancellation by stopping any process it started.
type Launcher interface {
	Launch(ctx context.Context, strategy Strategy) (*Session, error)
	Close() error
}

// ConnectionSupervisor runs the strategy table against the launcher.
type ConnectionSupervisor struct {
	launcher Launcher
	breaker  *CircuitBreaker
	cfg      Config
	refused  *refusedMatcher
	logger   Logger
	metrics  *Metrics

	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
	checkHosts func(ctx context.Context) HostConnectivity
	findPort   func() (int, bool)
}

func newConnectionSupervisor(launcher Launcher, breaker *CircuitBreaker, cfg Config, logger Logger, metrics *Metrics) (*ConnectionSupervisor, error) {
	refused, err := newRefusedMatcher(cfg.RefusedPatterns)
	if err != nil {
		return nil, err
	}
	return &ConnectionSupervisor{
		launcher: launcher,
		breaker:  breaker,
		cfg:      cfg,
		refused:  refused,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
		sleep:    sleepContext,
		checkHosts: func(ctx context.Context) HostConnectivity {
			return CheckHostConnectivity(ctx, cfg.ProbePort)
		},
		findPort: func() (int, bool) {
			return FindAvailablePort(cfg.PortRangeStart, cfg.PortRangeEnd)
		},
	}, nil
}

// Connect tries each strategy in order and returns the first session that
// connects. The breaker sees one success or one failure per call.
func (s *ConnectionSupervisor) Connect(ctx context.Context, opts LaunchOptions) (*Session, error) {
	start := s.now()
	defer func() {
		s.metrics.connectDuration(s.now().Sub(start).Seconds())
	}()

	hosts := s.checkHosts(ctx)
	port, ok := s.findPort()
	if !ok {
		s.logger.Warnf("no free debug port in %d-%d, letting the browser pick one", s.cfg.PortRangeStart, s.cfg.PortRangeEnd)
		port = 0
	}
	s.logger.Debugf("host check: localhost=%t 127.0.0.1=%t, using %s:%d",
		hosts.LocalhostOK, hosts.IPv4OK, hosts.RecommendedHost, port)

	if opts.ExecutablePath == "" {
		opts.ExecutablePath = s.cfg.ExecutablePath
	}
	strategies := BuildStrategies(opts, s.cfg.Headless, hosts.RecommendedHost, port)

	var attempts []*AttemptError
	for i, strategy := range strategies {
		session, errs := s.attempt(ctx, strategy)
		attempts = append(attempts, errs...)
		if session != nil {
			s.breaker.RecordSuccess()
			s.metrics.created()
			s.logger.Infof("connected with strategy %q at %s after %d failed attempt(s)", strategy.Name, session.Endpoint, len(attempts))
			return session, nil
		}

		if ctx.Err() != nil {
			s.breaker.Abandon()
			return nil, fmt.Errorf("connect cancelled during strategy %q: %w", strategy.Name, ctx.Err())
		}
		if i < len(strategies)-1 {
			delay := s.cfg.BackoffBase + time.Duration(i)*s.cfg.BackoffStep
			s.logger.Debugf("strategy %q failed, backing off %s", strategy.Name, delay)
			if err := s.sleep(ctx, delay); err != nil {
				s.breaker.Abandon()
				return nil, fmt.Errorf("connect cancelled during backoff: %w", err)
			}
		}
	}

	s.breaker.RecordFailure()

	connErr := &ConnectError{
		Attempts: attempts,
		Elapsed:  s.now().Sub(start),
		Category: CategoryUnknown,
	}
	if last := connErr.Last(); last != nil {
		connErr.Category = Categorize(last)
		connErr.Guidance = connectGuidance(last, s.refused)
	}
	s.logger.Errorf("all %d strategies failed: %v", len(strategies), connErr)
	return nil, connErr
}

// attempt runs one strategy, retrying once with the other loopback name
// when the first error is connection-refused-class.
func (s *ConnectionSupervisor) attempt(ctx context.Context, strategy Strategy) (*Session, []*AttemptError) {
	session, err := s.launchOnce(ctx, strategy)
	if err == nil {
		return session, nil
	}
	errs := []*AttemptError{err}
	if !s.refused.Match(err.Err) || ctx.Err() != nil {
		return nil, errs
	}

	flipped := strategy.WithHost(flipHost(strategy.Host))
	s.logger.Infof("strategy %q refused on %s, retrying on %s", strategy.Name, strategy.Host, flipped.Host)
	session, err = s.launchOnce(ctx, flipped)
	if err == nil {
		return session, errs
	}
	return nil, append(errs, err)
}

func (s *ConnectionSupervisor) launchOnce(ctx context.Context, strategy Strategy) (*Session, *AttemptError) {
	started := s.now()
	session, err := Race(ctx, s.cfg.ConnectTimeout, fmt.Sprintf("connect strategy %q", strategy.Name),
		func(ctx context.Context) (*Session, error) {
			return s.launcher.Launch(ctx, strategy)
		})
	if err == nil && session == nil {
		err = fmt.Errorf("launcher returned no session")
	}
	s.metrics.attempt(strategy.Name, err)
	if err != nil {
		s.logger.Warnf("strategy %q on %s failed: %v", strategy.Name, strategy.Host, err)
		return nil, &AttemptError{
			Strategy: strategy.Name,
			Host:     strategy.Host,
			Elapsed:  s.now().Sub(started),
			Err:      err,
		}
	}
	if session.Strategy == "" {
		session.Strategy = strategy.Name
	}
	return session, nil
}
