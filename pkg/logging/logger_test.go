package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// setupTestDir points the logger at a temp directory and resets global state
func setupTestDir(t *testing.T) string {
	t.Helper()

	tempDir := t.TempDir()
	t.Setenv(EnvLogDir, tempDir)
	t.Setenv(EnvLogLevel, "")

	origLogDir := logDir
	origInitErr := initErr
	origSessionID := sessionID

	logDir = ""
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	t.Cleanup(func() {
		logDir = origLogDir
		initErr = origInitErr
		initOnce = sync.Once{}
		sessionID = origSessionID
		sessionIDOnce = sync.Once{}
	})
	return tempDir
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	dir := setupTestDir(t)

	logger, err := NewLogger("test-component")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.component != "test-component" {
		t.Errorf("Expected component 'test-component', got %q", logger.component)
	}
	if logger.sessionID == "" {
		t.Error("Expected non-empty session ID")
	}
	if filepath.Dir(logger.logPath) != dir {
		t.Errorf("Expected log in %s, got %s", dir, logger.logPath)
	}
	if _, err := os.Stat(logger.logPath); os.IsNotExist(err) {
		t.Errorf("Log file does not exist at %s", logger.logPath)
	}
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("supervisor")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Printf("strategy %q selected", "custom")
	logger.Debugf("probing port %d", 9222)
	logger.Infof("connected")
	logger.Warnf("host flip")
	logger.Errorf("all strategies failed")

	logContent := readLog(t, logger)
	expectedPatterns := []string{
		`[supervisor] [INFO] strategy "custom" selected`,
		"[supervisor] [DEBUG] probing port 9222",
		"[supervisor] [INFO] connected",
		"[supervisor] [WARN] host flip",
		"[supervisor] [ERROR] all strategies failed",
	}
	for _, pattern := range expectedPatterns {
		if !strings.Contains(logContent, pattern) {
			t.Errorf("Log content missing expected pattern: %q\nContent:\n%s", pattern, logContent)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	setupTestDir(t)
	t.Setenv(EnvLogLevel, "warn")

	logger, err := NewLogger("filter")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("hidden debug")
	logger.Infof("hidden info")
	logger.Warnf("shown warn")

	logContent := readLog(t, logger)
	if strings.Contains(logContent, "hidden") {
		t.Errorf("Expected entries below warn to be dropped:\n%s", logContent)
	}
	if !strings.Contains(logContent, "shown warn") {
		t.Errorf("Expected warn entry:\n%s", logContent)
	}

	logger.SetLevel(LevelDebug)
	logger.Debugf("now visible")
	if !strings.Contains(readLog(t, logger), "now visible") {
		t.Error("Expected debug entry after SetLevel")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"":        LevelDebug,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
		"bogus":   LevelDebug,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("manager")
	if err != nil {
		t.Fatalf("Failed to create logger1: %v", err)
	}
	defer logger1.Close()

	logger2, err := NewLogger("tools")
	if err != nil {
		t.Fatalf("Failed to create logger2: %v", err)
	}
	defer logger2.Close()

	if logger1.sessionID != logger2.sessionID {
		t.Errorf("Expected same session ID, got %q and %q", logger1.sessionID, logger2.sessionID)
	}
	if logger1.logPath != logger2.logPath {
		t.Errorf("Expected same log path, got %q and %q", logger1.logPath, logger2.logPath)
	}

	logger1.Printf("Message from manager")
	logger2.Printf("Message from tools")

	logContent := readLog(t, logger1)
	if !strings.Contains(logContent, "[manager]") {
		t.Error("Log missing manager entries")
	}
	if !strings.Contains(logContent, "[tools]") {
		t.Error("Log missing tools entries")
	}
}

func TestWithSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	parent := New(&buf, "cli")
	child := parent.With("browser")

	child.Infof("hello")
	if !strings.Contains(buf.String(), "[browser] [INFO] hello") {
		t.Errorf("Expected child entry in parent output, got %q", buf.String())
	}
	if err := child.Close(); err != nil {
		t.Errorf("Closing a derived logger should be a no-op: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Errorf("dropped %d", 1)
	if l.LogPath() != "" {
		t.Errorf("Expected no log path, got %q", l.LogPath())
	}
}

func TestGetSessionID(t *testing.T) {
	setupTestDir(t)

	id1 := GetSessionID()
	id2 := GetSessionID()
	if id1 != id2 {
		t.Errorf("Expected consistent session ID, got %q and %q", id1, id2)
	}
	if id1 == "" {
		t.Error("Expected non-empty session ID")
	}
}

func TestGetLogDirectory(t *testing.T) {
	want := setupTestDir(t)

	dir, err := GetLogDirectory()
	if err != nil {
		t.Fatalf("Failed to get log directory: %v", err)
	}
	if dir != want {
		t.Errorf("Expected %s, got %s", want, dir)
	}
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	fileName := filepath.Base(logger.logPath)
	if !strings.HasSuffix(fileName, "-brave-mcp.log") {
		t.Errorf("Expected log file to end with '-brave-mcp.log', got %q", fileName)
	}
	sessionPart := strings.TrimSuffix(fileName, "-brave-mcp.log")
	if !strings.Contains(sessionPart, "-") {
		t.Errorf("Expected session ID part to contain dashes (UUID format), got %q", sessionPart)
	}
}
