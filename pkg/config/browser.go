package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/brave-mcp/pkg/browser"
)

// SectionIDBrowser is the identifier for the browser settings section
const SectionIDBrowser = "browser"

// BrowserSection holds persisted launch and resilience settings.
type BrowserSection struct {
	ExecutablePath   string        `json:"executable_path"`
	Headless         bool          `json:"headless"`
	PortRangeStart   int           `json:"port_range_start"`
	PortRangeEnd     int           `json:"port_range_end"`
	ConnectTimeout   time.Duration `json:"connect_timeout"`
	RefusedPatterns  []string      `json:"refused_patterns"`
	FailureThreshold int           `json:"failure_threshold"`
	Cooldown         time.Duration `json:"cooldown"`
	mu               sync.RWMutex
}

// NewBrowserSection creates a section holding the browser defaults.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string {
	return SectionIDBrowser
}

// Title returns the section title.
func (s *BrowserSection) Title() string {
	return "Browser"
}

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "Browser executable, debug port range, connect timeout and circuit breaker settings."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	patterns := make([]interface{}, len(s.RefusedPatterns))
	for i, p := range s.RefusedPatterns {
		patterns[i] = p
	}
	return map[string]interface{}{
		"executable_path":   s.ExecutablePath,
		"headless":          s.Headless,
		"port_range_start":  s.PortRangeStart,
		"port_range_end":    s.PortRangeEnd,
		"connect_timeout":   s.ConnectTimeout.String(),
		"refused_patterns":  patterns,
		"failure_threshold": s.FailureThreshold,
		"cooldown":          s.Cooldown.String(),
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "executable_path":
			s.ExecutablePath, err = asString(key, value)
		case "headless":
			v, ok := value.(bool)
			if !ok {
				err = fmt.Errorf("invalid value type for headless: expected bool, got %T", value)
			}
			s.Headless = v
		case "port_range_start":
			s.PortRangeStart, err = asInt(key, value)
		case "port_range_end":
			s.PortRangeEnd, err = asInt(key, value)
		case "connect_timeout":
			s.ConnectTimeout, err = asDuration(key, value)
		case "refused_patterns":
			s.RefusedPatterns, err = asStrings(key, value)
		case "failure_threshold":
			s.FailureThreshold, err = asInt(key, value)
		case "cooldown":
			s.Cooldown, err = asDuration(key, value)
		default:
			// Unknown keys are kept for forward compatibility
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks ranges and durations.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.PortRangeStart < 1 || s.PortRangeEnd > 65535 || s.PortRangeStart > s.PortRangeEnd {
		return fmt.Errorf("invalid port range %d-%d", s.PortRangeStart, s.PortRangeEnd)
	}
	if s.ConnectTimeout < time.Second {
		return fmt.Errorf("connect_timeout must be at least 1s, got %s", s.ConnectTimeout)
	}
	if s.FailureThreshold < 1 {
		return fmt.Errorf("failure_threshold must be positive, got %d", s.FailureThreshold)
	}
	if s.Cooldown <= 0 {
		return fmt.Errorf("cooldown must be positive, got %s", s.Cooldown)
	}
	return nil
}

// Reset restores the browser defaults.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := browser.DefaultConfig()
	s.ExecutablePath = ""
	s.Headless = d.Headless
	s.PortRangeStart = d.PortRangeStart
	s.PortRangeEnd = d.PortRangeEnd
	s.ConnectTimeout = d.ConnectTimeout
	s.RefusedPatterns = append([]string(nil), d.RefusedPatterns...)
	s.FailureThreshold = d.FailureThreshold
	s.Cooldown = d.Cooldown
}

// BrowserConfig returns the manager configuration described by this section.
func (s *BrowserSection) BrowserConfig() browser.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := browser.DefaultConfig()
	cfg.ExecutablePath = s.ExecutablePath
	cfg.Headless = s.Headless
	cfg.PortRangeStart = s.PortRangeStart
	cfg.PortRangeEnd = s.PortRangeEnd
	cfg.ConnectTimeout = s.ConnectTimeout
	if len(s.RefusedPatterns) > 0 {
		cfg.RefusedPatterns = append([]string(nil), s.RefusedPatterns...)
	}
	cfg.FailureThreshold = s.FailureThreshold
	cfg.Cooldown = s.Cooldown
	return cfg
}

func asString(key string, value interface{}) (string, error) {
	v, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	return v, nil
}

func asInt(key string, value interface{}) (int, error) {
	switch v := value.(type) {
	case float64:
		// JSON numbers come as float64
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	}
	return 0, fmt.Errorf("invalid value type for %s: expected number, got %T", key, value)
}

func asDuration(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	}
	return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
}

func asStrings(key string, value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("invalid element type in %s: expected string, got %T", key, item)
			}
			out = append(out, str)
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid value type for %s: expected list, got %T", key, value)
}
