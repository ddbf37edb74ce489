package config

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/brave-mcp/pkg/browser"
)

func TestBrowserSection_Defaults(t *testing.T) {
	s := NewBrowserSection()

	assert.Equal(t, SectionIDBrowser, s.ID())
	assert.Equal(t, browser.DefaultPortRangeStart, s.PortRangeStart)
	assert.Equal(t, browser.DefaultPortRangeEnd, s.PortRangeEnd)
	assert.Equal(t, browser.DefaultThreshold, s.FailureThreshold)
	assert.Equal(t, browser.DefaultCooldown, s.Cooldown)
	assert.Equal(t, browser.DefaultRefusedPatterns, s.RefusedPatterns)
	assert.NoError(t, s.Validate())
}

func TestBrowserSection_SetData(t *testing.T) {
	s := NewBrowserSection()

	err := s.SetData(map[string]interface{}{
		"executable_path":   "/opt/brave/brave",
		"headless":          true,
		"port_range_start":  float64(9300),
		"port_range_end":    float64(9310),
		"connect_timeout":   "45s",
		"refused_patterns":  []interface{}{"*refused*"},
		"failure_threshold": float64(3),
		"cooldown":          float64(10 * time.Second),
		"future_key":        "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "/opt/brave/brave", s.ExecutablePath)
	assert.True(t, s.Headless)
	assert.Equal(t, 9300, s.PortRangeStart)
	assert.Equal(t, 9310, s.PortRangeEnd)
	assert.Equal(t, 45*time.Second, s.ConnectTimeout)
	assert.Equal(t, []string{"*refused*"}, s.RefusedPatterns)
	assert.Equal(t, 3, s.FailureThreshold)
	assert.Equal(t, 10*time.Second, s.Cooldown)
}

func TestBrowserSection_SetDataTypeErrors(t *testing.T) {
	tests := map[string]interface{}{
		"headless":         "yes",
		"port_range_start": "9222",
		"connect_timeout":  "soon",
		"refused_patterns": []interface{}{1},
		"executable_path":  42,
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			s := NewBrowserSection()
			assert.Error(t, s.SetData(map[string]interface{}{key: value}))
		})
	}
}

func TestBrowserSection_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BrowserSection)
	}{
		{"inverted range", func(s *BrowserSection) { s.PortRangeStart, s.PortRangeEnd = 9300, 9200 }},
		{"port too large", func(s *BrowserSection) { s.PortRangeEnd = 70000 }},
		{"short timeout", func(s *BrowserSection) { s.ConnectTimeout = 10 * time.Millisecond }},
		{"zero threshold", func(s *BrowserSection) { s.FailureThreshold = 0 }},
		{"zero cooldown", func(s *BrowserSection) { s.Cooldown = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewBrowserSection()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestBrowserSection_ResetAndConfig(t *testing.T) {
	s := NewBrowserSection()
	s.ExecutablePath = "/x"
	s.Headless = true
	s.Cooldown = time.Minute

	cfg := s.BrowserConfig()
	assert.Equal(t, "/x", cfg.ExecutablePath)
	assert.True(t, cfg.Headless)
	assert.Equal(t, time.Minute, cfg.Cooldown)
	assert.Equal(t, browser.DefaultMaxDepth, cfg.MaxDepth)

	s.Reset()
	assert.Empty(t, s.ExecutablePath)
	assert.False(t, s.Headless)
	assert.Equal(t, browser.DefaultCooldown, s.Cooldown)
}

func TestBrowserSection_RoundTripThroughStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	manager := NewManager(store)
	section := NewBrowserSection()
	require.NoError(t, manager.RegisterSection(section))
	section.Headless = true
	section.PortRangeStart = 9250
	section.ConnectTimeout = 90 * time.Second
	require.NoError(t, manager.SaveAll())

	reloadedStore, err := NewFileStore(path)
	require.NoError(t, err)
	reloaded := NewManager(reloadedStore)
	fresh := NewBrowserSection()
	require.NoError(t, reloaded.RegisterSection(fresh))
	require.NoError(t, reloaded.LoadAll())

	assert.True(t, fresh.Headless)
	assert.Equal(t, 9250, fresh.PortRangeStart)
	assert.Equal(t, 90*time.Second, fresh.ConnectTimeout)
	assert.Equal(t, browser.DefaultRefusedPatterns, fresh.RefusedPatterns)
}

func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	})
}

func TestInitialize(t *testing.T) {
	resetGlobal(t)
	assert.False(t, IsInitialized())
	assert.Nil(t, GetBrowser())
	assert.Panics(t, func() { Global() })

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Initialize(path))
	require.True(t, IsInitialized())

	b := GetBrowser()
	require.NotNil(t, b)
	b.Headless = true
	require.NoError(t, Global().SaveAll())

	resetGlobal(t)
	require.NoError(t, Initialize(path))
	assert.True(t, GetBrowser().Headless)
}

func TestInitialize_ConcurrentAccess(t *testing.T) {
	resetGlobal(t)
	require.NoError(t, Initialize(filepath.Join(t.TempDir(), "config.json")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, GetBrowser())
		}()
	}
	wg.Wait()
}
