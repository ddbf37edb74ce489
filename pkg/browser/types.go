package browser

import (
	"runtime"
	"time"
)

// Default values for the session lifecycle
const (
	DefaultPortRangeStart = 9222
	DefaultPortRangeEnd   = 9322
	DefaultProbePort      = 9333

	DefaultHost      = "127.0.0.1"
	LocalhostHost    = "localhost"
	DefaultMaxDepth  = 2
	DefaultThreshold = 5
	DefaultCooldown  = 30 * time.Second

	DefaultValidateTimeout   = 5 * time.Second
	DefaultPageCloseTimeout  = 2 * time.Second
	DefaultBrowserCloseTime  = 10 * time.Second
	DefaultPagesListTimeout  = 5 * time.Second
	DefaultTerminateGrace    = 1 * time.Second
	DefaultBackoffBase       = 2000 * time.Millisecond
	DefaultBackoffStep       = 1000 * time.Millisecond
	defaultConnectTimeout    = 30 * time.Second
	defaultConnectTimeoutWin = 60 * time.Second
)

// DefaultConnectTimeout returns the per-strategy connect deadline for the
// current platform. Windows gets more time because process start is slower.
func DefaultConnectTimeout() time.Duration {
	if runtime.GOOS == "windows" {
		return defaultConnectTimeoutWin
	}
	return defaultConnectTimeout
}

// DefaultFlags are passed to every strategy except minimal ones.
var DefaultFlags = []string{
	"--no-first-run",
	"--no-default-browser-check",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-popup-blocking",
	"--disable-translate",
	"--disable-dev-shm-usage",
}

// MinimalFlags is the smallest flag set a strategy will launch with.
var MinimalFlags = []string{
	"--no-first-run",
	"--no-default-browser-check",
}

// DefaultRefusedPatterns match connection-refused errors across platforms.
// Patterns are globs matched against the lower-cased error message.
var DefaultRefusedPatterns = []string{
	"*econnrefused*",
	"*connection refused*",
	"*actively refused*",
	"*connectex: no connection could be made*",
}

// LaunchOptions configures a session request. Zero values fall back to the
// manager defaults.
type LaunchOptions struct {
	// Headless overrides the default headless mode when non-nil
	Headless *bool

	// Proxy is passed as --proxy-server when set
	Proxy string

	// ExtraFlags are appended to the richest strategy only
	ExtraFlags []string

	// ExtensionPaths are unpacked extension directories to load
	ExtensionPaths []string

	// ExecutablePath overrides the discovered browser executable
	ExecutablePath string

	// Overrides are raw flags that replace same-named defaults, e.g.
	// "--window-size" => "1280,720"
	Overrides map[string]string
}

// Config holds the tunables of a SessionManager.
type Config struct {
	Headless        bool
	ExecutablePath  string
	PortRangeStart  int
	PortRangeEnd    int
	ProbePort       int
	ConnectTimeout  time.Duration
	RefusedPatterns []string

	MaxDepth         int
	FailureThreshold int
	Cooldown         time.Duration

	ValidateTimeout     time.Duration
	PageCloseTimeout    time.Duration
	BrowserCloseTimeout time.Duration
	PagesListTimeout    time.Duration
	TerminateGrace      time.Duration

	BackoffBase time.Duration
	BackoffStep time.Duration
}

// DefaultConfig returns the recommended manager configuration.
func DefaultConfig() Config {
	return Config{
		Headless:            false,
		PortRangeStart:      DefaultPortRangeStart,
		PortRangeEnd:        DefaultPortRangeEnd,
		ProbePort:           DefaultProbePort,
		ConnectTimeout:      DefaultConnectTimeout(),
		RefusedPatterns:     append([]string(nil), DefaultRefusedPatterns...),
		MaxDepth:            DefaultMaxDepth,
		FailureThreshold:    DefaultThreshold,
		Cooldown:            DefaultCooldown,
		ValidateTimeout:     DefaultValidateTimeout,
		PageCloseTimeout:    DefaultPageCloseTimeout,
		BrowserCloseTimeout: DefaultBrowserCloseTime,
		PagesListTimeout:    DefaultPagesListTimeout,
		TerminateGrace:      DefaultTerminateGrace,
		BackoffBase:         DefaultBackoffBase,
		BackoffStep:         DefaultBackoffStep,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PortRangeStart == 0 {
		c.PortRangeStart = d.PortRangeStart
	}
	if c.PortRangeEnd == 0 {
		c.PortRangeEnd = d.PortRangeEnd
	}
	if c.ProbePort == 0 {
		c.ProbePort = d.ProbePort
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if len(c.RefusedPatterns) == 0 {
		c.RefusedPatterns = d.RefusedPatterns
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.Cooldown == 0 {
		c.Cooldown = d.Cooldown
	}
	if c.ValidateTimeout == 0 {
		c.ValidateTimeout = d.ValidateTimeout
	}
	if c.PageCloseTimeout == 0 {
		c.PageCloseTimeout = d.PageCloseTimeout
	}
	if c.BrowserCloseTimeout == 0 {
		c.BrowserCloseTimeout = d.BrowserCloseTimeout
	}
	if c.PagesListTimeout == 0 {
		c.PagesListTimeout = d.PagesListTimeout
	}
	if c.TerminateGrace == 0 {
		c.TerminateGrace = d.TerminateGrace
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = d.BackoffBase
	}
	if c.BackoffStep == 0 {
		c.BackoffStep = d.BackoffStep
	}
	return c
}
