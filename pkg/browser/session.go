package browser

import (
	"context"
	"time"
)

// BrowserHandle is process-level control over a connected browser.
type BrowserHandle interface {
	// Version issues a protocol round trip and returns the product string
	Version(ctx context.Context) (string, error)

	// Pages lists the open pages across all contexts
	Pages(ctx context.Context) ([]PageHandle, error)

	// Close disconnects from and closes the browser gracefully
	Close(ctx context.Context) error
}

// PageHandle is one interactive document context.
type PageHandle interface {
	Evaluate(ctx context.Context, expression string) (any, error)
	Navigate(ctx context.Context, url string) error
	Content(ctx context.Context) (string, error)
	Title(ctx context.Context) (string, error)
	URL() string
	Close(ctx context.Context) error
}

// ProcessHandle is the OS process behind a launched browser.
type ProcessHandle interface {
	Pid() int
	Alive() bool

	// Terminate asks the process to exit (SIGTERM, or Kill on Windows)
	Terminate() error

	// Kill forcefully stops the process
	Kill() error
}

// Session is the browser/page pair a caller automates against. It is owned
// by the SessionManager; callers must not close it themselves.
type Session struct {
	// ID uniquely identifies this session instance
	ID string

	// Browser is the process-level handle
	Browser BrowserHandle

	// Page is the active page
	Page PageHandle

	// Process is the spawned browser process, nil when attached externally
	Process ProcessHandle

	// Strategy is the name of the strategy that produced the session
	Strategy string

	// Endpoint is the debugging endpoint the session is connected to
	Endpoint string

	// CreatedAt is when the connection succeeded
	CreatedAt time.Time
}

// SessionInfo contains metadata about the current session.
type SessionInfo struct {
	ID        string
	Strategy  string
	Endpoint  string
	URL       string
	Pid       int
	CreatedAt time.Time
}

// Info returns a read-only summary of the session.
func (s *Session) Info() SessionInfo {
	info := SessionInfo{
		ID:        s.ID,
		Strategy:  s.Strategy,
		Endpoint:  s.Endpoint,
		CreatedAt: s.CreatedAt,
	}
	if s.Page != nil {
		info.URL = s.Page.URL()
	}
	if s.Process != nil {
		info.Pid = s.Process.Pid()
	}
	return info
}
