package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/brave-mcp/pkg/browser"
)

// Profile is a YAML launch profile passed with --profile:
//
//	headless: true
//	proxy: socks5://127.0.0.1:1080
//	flags: ["--lang=en-US"]
//	extensions: ["/path/to/unpacked"]
//	overrides:
//	  window-size: "1280,720"
//	refused_patterns: ["*connection refused*"]
type Profile struct {
	Headless        *bool             `yaml:"headless"`
	ExecutablePath  string            `yaml:"executable_path"`
	Proxy           string            `yaml:"proxy"`
	Flags           []string          `yaml:"flags"`
	Extensions      []string          `yaml:"extensions"`
	Overrides       map[string]string `yaml:"overrides"`
	RefusedPatterns []string          `yaml:"refused_patterns"`
}

// LoadProfile reads a launch profile. Unknown keys are rejected so typos
// surface at startup.
func LoadProfile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	var p Profile
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return &p, nil
}

// LaunchOptions converts the profile into per-request launch options.
func (p *Profile) LaunchOptions() browser.LaunchOptions {
	if p == nil {
		return browser.LaunchOptions{}
	}
	opts := browser.LaunchOptions{
		Headless:       p.Headless,
		Proxy:          p.Proxy,
		ExecutablePath: p.ExecutablePath,
		ExtraFlags:     append([]string(nil), p.Flags...),
		ExtensionPaths: append([]string(nil), p.Extensions...),
	}
	if len(p.Overrides) > 0 {
		opts.Overrides = make(map[string]string, len(p.Overrides))
		for k, v := range p.Overrides {
			opts.Overrides[k] = v
		}
	}
	return opts
}

// Apply copies profile-level manager settings onto cfg.
func (p *Profile) Apply(cfg *browser.Config) {
	if p == nil {
		return
	}
	if len(p.RefusedPatterns) > 0 {
		cfg.RefusedPatterns = append([]string(nil), p.RefusedPatterns...)
	}
}
