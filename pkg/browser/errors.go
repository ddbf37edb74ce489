package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoSession     = errors.New("browser session not initialized")
	ErrDepthExceeded = errors.New("session initialization depth exceeded")
	ErrCircuitOpen   = errors.New("browser connections temporarily disabled")
	ErrNoExecutable  = errors.New("browser executable not found")
)

// Category classifies a browser failure so callers can decide whether to
// retry at a higher level.
type Category string

const (
	CategoryFrameDetached     Category = "FrameDetached"
	CategorySessionClosed     Category = "SessionClosed"
	CategoryTargetClosed      Category = "TargetClosed"
	CategoryProtocolError     Category = "ProtocolError"
	CategoryNavigationTimeout Category = "NavigationTimeout"
	CategoryElementNotFound   Category = "ElementNotFound"
	CategoryTimeout           Category = "Timeout"
	CategoryDepthExceeded     Category = "DepthExceeded"
	CategoryCircuitOpen       Category = "CircuitOpen"
	CategoryUnknown           Category = "Unknown"
)

// Retryable reports whether a fresh attempt might succeed.
func (c Category) Retryable() bool {
	switch c {
	case CategoryFrameDetached, CategorySessionClosed, CategoryTargetClosed,
		CategoryProtocolError, CategoryTimeout, CategoryNavigationTimeout:
		return true
	}
	return false
}

// categoryPatterns is matched against the lower-cased message. Order matters:
// the first match wins, so narrow phrases precede "timeout".
var categoryPatterns = []struct {
	substr   string
	category Category
}{
	{"frame was detached", CategoryFrameDetached},
	{"detached frame", CategoryFrameDetached},
	{"session closed", CategorySessionClosed},
	{"session not initialized", CategorySessionClosed},
	{"target closed", CategoryTargetClosed},
	{"target page, context or browser has been closed", CategoryTargetClosed},
	{"protocol error", CategoryProtocolError},
	{"navigation timeout", CategoryNavigationTimeout},
	{"element not found", CategoryElementNotFound},
	{"no element found", CategoryElementNotFound},
	{"failed to find element", CategoryElementNotFound},
	{"timeout", CategoryTimeout},
	{"timed out", CategoryTimeout},
	{"depth exceeded", CategoryDepthExceeded},
	{"temporarily disabled", CategoryCircuitOpen},
	{"circuit breaker", CategoryCircuitOpen},
}

// Categorize maps an error onto the closed taxonomy. Typed errors are
// checked first, then the message text.
func Categorize(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var (
		connErr    *ConnectError
		timeoutErr *TimeoutError
	)
	switch {
	case errors.Is(err, ErrDepthExceeded):
		return CategoryDepthExceeded
	case errors.Is(err, ErrCircuitOpen):
		return CategoryCircuitOpen
	case errors.Is(err, ErrNoSession):
		return CategorySessionClosed
	case errors.As(err, &connErr) && connErr.Category != "":
		return connErr.Category
	case errors.As(err, &timeoutErr):
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())
	for _, p := range categoryPatterns {
		if strings.Contains(msg, p.substr) {
			return p.category
		}
	}
	return CategoryUnknown
}

// TimeoutError is returned by Race when the deadline fires first.
type TimeoutError struct {
	Label string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timeout after %s", e.Label, e.After)
}

// AttemptError records one failed strategy attempt.
type AttemptError struct {
	Strategy string
	Host     string
	Elapsed  time.Duration
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("strategy %q via %s failed after %s: %v", e.Strategy, e.Host, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}

// ConnectError is the aggregate raised when every strategy failed.
type ConnectError struct {
	Attempts []*AttemptError
	Category Category
	Guidance string
	Elapsed  time.Duration
}

func (e *ConnectError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to connect to browser after %d attempt(s) in %s", len(e.Attempts), e.Elapsed.Round(time.Millisecond))
	if last := e.Last(); last != nil {
		fmt.Fprintf(&b, "; last error: %v", last)
	}
	if e.Guidance != "" {
		fmt.Fprintf(&b, ". %s", e.Guidance)
	}
	return b.String()
}

// Last returns the final underlying attempt error.
func (e *ConnectError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1]
}

func (e *ConnectError) Unwrap() error {
	return e.Last()
}

// connectGuidance picks remediation advice for the final connect failure.
func connectGuidance(err error, refused *refusedMatcher) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, ErrNoExecutable),
		strings.Contains(msg, "executable not found"),
		strings.Contains(msg, "no such file or directory"),
		strings.Contains(msg, "enoent"):
		return "Browser executable not found: install Brave or set BRAVE_PATH to the browser binary"
	case refused != nil && refused.Match(err):
		return "Connection refused on the debugging port: close other browser instances using the port, or check that localhost resolves to 127.0.0.1"
	case Categorize(err) == CategoryTimeout:
		return "Browser did not become ready in time: close running instances, try headless mode, or raise the connect timeout"
	}
	return "Check the browser logs and launch flags"
}
