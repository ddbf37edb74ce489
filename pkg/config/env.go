package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/entrhq/brave-mcp/pkg/browser"
)

// Environment variables honoured by Resolve
const (
	EnvBravePath = browser.EnvExecutablePath
	EnvHeadless  = "HEADLESS"
)

// LoadDotEnv seeds the process environment from .env files. Variables
// that are already set keep their value, and missing files are skipped.
// With no arguments ".env" in the working directory is used.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Overrides are values given explicitly on the command line. Zero values
// mean "not set".
type Overrides struct {
	ExecutablePath string
	Headless       *bool
	ConnectTimeout time.Duration
	PortRangeStart int
	PortRangeEnd   int
}

// Resolve builds the manager configuration with precedence
// command line > environment > settings file > defaults. A nil section
// means no settings file.
func Resolve(section *BrowserSection, lookup func(string) (string, bool), flags Overrides) browser.Config {
	cfg := browser.DefaultConfig()
	if section != nil {
		cfg = section.BrowserConfig()
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvBravePath); ok && v != "" {
		cfg.ExecutablePath = v
	}
	if v, ok := lookup(EnvHeadless); ok {
		cfg.Headless = strings.EqualFold(strings.TrimSpace(v), "true")
	}

	if flags.ExecutablePath != "" {
		cfg.ExecutablePath = flags.ExecutablePath
	}
	if flags.Headless != nil {
		cfg.Headless = *flags.Headless
	}
	if flags.ConnectTimeout > 0 {
		cfg.ConnectTimeout = flags.ConnectTimeout
	}
	if flags.PortRangeStart > 0 {
		cfg.PortRangeStart = flags.PortRangeStart
	}
	if flags.PortRangeEnd > 0 {
		cfg.PortRangeEnd = flags.PortRangeEnd
	}
	return cfg
}
