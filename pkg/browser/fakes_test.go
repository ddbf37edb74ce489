package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePage struct {
	url      string
	evalErr  error
	closeErr error
	closed   atomic.Int32
}

func (p *fakePage) Evaluate(ctx context.Context, expression string) (any, error) {
	if p.evalErr != nil {
		return nil, p.evalErr
	}
	return float64(2), nil
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.url = url
	return nil
}

func (p *fakePage) Content(ctx context.Context) (string, error) {
	return "<html><body>ok</body></html>", nil
}

func (p *fakePage) Title(ctx context.Context) (string, error) { return "fake", nil }

func (p *fakePage) URL() string {
	if p.url == "" {
		return "about:blank"
	}
	return p.url
}

func (p *fakePage) Close(ctx context.Context) error {
	p.closed.Add(1)
	return p.closeErr
}

type fakeBrowser struct {
	mu         sync.Mutex
	versionErr error
	block      chan struct{}
	pages      []PageHandle
	pagesErr   error
	closeErr   error
	closed     atomic.Int32
	versions   atomic.Int32
}

func (b *fakeBrowser) Version(ctx context.Context) (string, error) {
	b.versions.Add(1)
	b.mu.Lock()
	block, err := b.block, b.versionErr
	b.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	return "Brave/1.0", nil
}

func (b *fakeBrowser) setVersionErr(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.versionErr = err
}

func (b *fakeBrowser) Pages(ctx context.Context) ([]PageHandle, error) {
	return b.pages, b.pagesErr
}

func (b *fakeBrowser) Close(ctx context.Context) error {
	b.closed.Add(1)
	return b.closeErr
}

type fakeProcess struct {
	mu         sync.Mutex
	alive      bool
	ignoreTerm bool
	terminated int
	killed     int
}

func (p *fakeProcess) Pid() int { return 4242 }

func (p *fakeProcess) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *fakeProcess) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminated++
	if !p.ignoreTerm {
		p.alive = false
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killed++
	p.alive = false
	return nil
}

// newFakeSession builds a healthy session with one page.
func newFakeSession(id string) (*Session, *fakeBrowser, *fakePage) {
	page := &fakePage{}
	b := &fakeBrowser{pages: []PageHandle{page}}
	return &Session{
		ID:       id,
		Browser:  b,
		Page:     page,
		Endpoint: "http://127.0.0.1:9222",
	}, b, page
}

type launchResult struct {
	session *Session
	err     error
	block   bool
}

// fakeLauncher replays scripted results; once exhausted it repeats the last.
type fakeLauncher struct {
	mu      sync.Mutex
	results []launchResult
	calls   []Strategy
	started chan struct{}
	release chan struct{}
	closed  bool
}

func (l *fakeLauncher) Launch(ctx context.Context, strategy Strategy) (*Session, error) {
	l.mu.Lock()
	idx := len(l.calls)
	l.calls = append(l.calls, strategy)
	var r launchResult
	if len(l.results) > 0 {
		r = l.results[min(idx, len(l.results)-1)]
	} else {
		r = launchResult{err: errors.New("no scripted result")}
	}
	started, release := l.started, l.release
	l.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if r.block {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.session, r.err
}

func (l *fakeLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

func (l *fakeLauncher) strategyNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.calls))
	for _, c := range l.calls {
		names = append(names, c.Name)
	}
	return names
}

func (l *fakeLauncher) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// sleepRecorder records requested waits without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

// recordingLogger keeps warnings for assertions.
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debugf(string, ...interface{}) {}
func (l *recordingLogger) Infof(string, ...interface{})  {}
func (l *recordingLogger) Errorf(string, ...interface{}) {}

func (l *recordingLogger) Warnf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.warns...)
}

type testManager struct {
	*SessionManager
	launcher *fakeLauncher
	clock    *fakeClock
	sleeps   *sleepRecorder
}

func newTestManager(t *testing.T, launcher *fakeLauncher, opts ...Option) *testManager {
	t.Helper()
	clock := newFakeClock()
	sleeps := &sleepRecorder{}

	cfg := DefaultConfig()
	cfg.ConnectTimeout = 500 * time.Millisecond
	cfg.ValidateTimeout = 200 * time.Millisecond
	cfg.PageCloseTimeout = 100 * time.Millisecond
	cfg.BrowserCloseTimeout = 100 * time.Millisecond
	cfg.PagesListTimeout = 100 * time.Millisecond

	all := append([]Option{WithClock(clock.Now), WithSleep(sleeps.Sleep)}, opts...)
	m, err := NewSessionManager(launcher, cfg, all...)
	require.NoError(t, err)

	m.supervisor.checkHosts = func(ctx context.Context) HostConnectivity {
		return HostConnectivity{LocalhostOK: true, IPv4OK: true, RecommendedHost: DefaultHost}
	}
	m.supervisor.findPort = func() (int, bool) { return 9222, true }

	return &testManager{SessionManager: m, launcher: launcher, clock: clock, sleeps: sleeps}
}
