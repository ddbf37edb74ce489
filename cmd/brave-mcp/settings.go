package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/entrhq/brave-mcp/pkg/browser"
	"github.com/entrhq/brave-mcp/pkg/config"
)

// settings is the resolved configuration shared by every command.
type settings struct {
	Browser    browser.Config
	Launch     browser.LaunchOptions
	ConfigPath string
}

// loadSettings seeds the environment from the env file, loads the settings
// file, applies environment and flag overrides, then the launch profile.
func loadSettings(flags *pflag.FlagSet) (*settings, error) {
	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		if err := config.LoadDotEnv(envFile); err != nil {
			return nil, err
		}
	}

	configPath, _ := flags.GetString("config")
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}
	if err := config.Initialize(configPath); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	cfg := config.Resolve(config.GetBrowser(), os.LookupEnv, overridesFromFlags(flags))

	var launch browser.LaunchOptions
	if profilePath, _ := flags.GetString("profile"); profilePath != "" {
		profile, err := config.LoadProfile(profilePath)
		if err != nil {
			return nil, err
		}
		profile.Apply(&cfg)
		launch = profile.LaunchOptions()
	}

	return &settings{
		Browser:    cfg,
		Launch:     launch,
		ConfigPath: configPath,
	}, nil
}

// overridesFromFlags collects only the flags the user actually set.
func overridesFromFlags(flags *pflag.FlagSet) config.Overrides {
	var o config.Overrides
	if flags.Changed("executable") {
		o.ExecutablePath, _ = flags.GetString("executable")
	}
	if flags.Changed("headless") {
		headless, _ := flags.GetBool("headless")
		o.Headless = &headless
	}
	if flags.Changed("connect-timeout") {
		o.ConnectTimeout, _ = flags.GetDuration("connect-timeout")
	}
	if flags.Changed("port-start") {
		o.PortRangeStart, _ = flags.GetInt("port-start")
	}
	if flags.Changed("port-end") {
		o.PortRangeEnd, _ = flags.GetInt("port-end")
	}
	return o
}
