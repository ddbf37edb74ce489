package browser

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Strategy is one way of requesting a browser launch. Strategies are tried
// in order; a failing strategy is not fatal to the sequence.
type Strategy struct {
	Name           string
	Headless       bool
	Flags          []string
	ExtensionArgs  []string
	ExecutablePath string
	Host           string
	Port           int
}

// Args returns the full command-line argument list for the launch.
func (s Strategy) Args() []string {
	args := make([]string, 0, len(s.Flags)+len(s.ExtensionArgs)+1)
	args = append(args, s.Flags...)
	args = append(args, s.ExtensionArgs...)
	if s.Headless {
		args = append(args, "--headless=new")
	}
	return args
}

// WithHost returns a copy of the strategy targeting host.
func (s Strategy) WithHost(host string) Strategy {
	s.Host = host
	return s
}

func (s Strategy) sameLaunch(o Strategy) bool {
	return s.Headless == o.Headless &&
		s.ExecutablePath == o.ExecutablePath &&
		slices.Equal(s.Flags, o.Flags) &&
		slices.Equal(s.ExtensionArgs, o.ExtensionArgs)
}

// BuildStrategies returns the ordered strategy table, from the richest
// user-customized configuration down to a bare headless fallback.
// Entries identical to an earlier one are dropped.
func BuildStrategies(opts LaunchOptions, headless bool, host string, port int) []Strategy {
	if opts.Headless != nil {
		headless = *opts.Headless
	}
	extArgs := extensionArgs(opts.ExtensionPaths)

	custom := append([]string(nil), DefaultFlags...)
	if opts.Proxy != "" {
		custom = append(custom, "--proxy-server="+opts.Proxy)
	}
	custom = append(custom, opts.ExtraFlags...)
	custom = applyOverrides(custom, opts.Overrides)

	candidates := []Strategy{
		{Name: "custom", Headless: headless, Flags: custom, ExtensionArgs: extArgs},
		{Name: "standard", Headless: headless, Flags: append([]string(nil), DefaultFlags...), ExtensionArgs: extArgs},
		{Name: "no-extensions", Headless: headless, Flags: append([]string(nil), DefaultFlags...)},
		{Name: "minimal", Headless: headless, Flags: append([]string(nil), MinimalFlags...)},
		{Name: "headless-fallback", Headless: true, Flags: append(append([]string(nil), MinimalFlags...), "--disable-gpu", "--no-sandbox")},
	}

	strategies := make([]Strategy, 0, len(candidates))
	for _, c := range candidates {
		c.ExecutablePath = opts.ExecutablePath
		c.Host = host
		c.Port = port
		if slices.ContainsFunc(strategies, c.sameLaunch) {
			continue
		}
		strategies = append(strategies, c)
	}
	return strategies
}

func extensionArgs(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	joined := strings.Join(paths, ",")
	return []string{
		"--disable-extensions-except=" + joined,
		"--load-extension=" + joined,
	}
}

// applyOverrides replaces or appends --name=value flags.
func applyOverrides(flags []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return flags
	}
	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flag := name
		if !strings.HasPrefix(flag, "--") {
			flag = "--" + flag
		}
		value := overrides[name]
		rendered := flag
		if value != "" {
			rendered = flag + "=" + value
		}
		flags = slices.DeleteFunc(flags, func(f string) bool {
			return f == flag || strings.HasPrefix(f, flag+"=")
		})
		flags = append(flags, rendered)
	}
	return flags
}

// refusedMatcher decides whether an error is connection-refused-class.
// The phrasing differs by platform, so the table is configurable.
type refusedMatcher struct {
	patterns []glob.Glob
}

func newRefusedMatcher(patterns []string) (*refusedMatcher, error) {
	m := &refusedMatcher{}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid refused pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// Match reports whether err's message matches any pattern.
func (m *refusedMatcher) Match(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, g := range m.patterns {
		if g.Match(msg) {
			return true
		}
	}
	return false
}
