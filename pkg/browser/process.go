package browser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"
)

// EnvExecutablePath overrides executable discovery.
const EnvExecutablePath = "BRAVE_PATH"

// osProcess is a spawned browser process. The user data directory is
// removed once the process has exited.
type osProcess struct {
	cmd         *exec.Cmd
	done        chan struct{}
	userDataDir string
	waitErr     error
}

func startProcess(path string, args []string, userDataDir string) (*osProcess, error) {
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", path, err)
	}

	p := &osProcess{
		cmd:         cmd,
		done:        make(chan struct{}),
		userDataDir: userDataDir,
	}
	go func() {
		p.waitErr = cmd.Wait()
		if p.userDataDir != "" {
			_ = os.RemoveAll(p.userDataDir)
		}
		close(p.done)
	}()
	return p, nil
}

func (p *osProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *osProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *osProcess) Terminate() error {
	if runtime.GOOS == "windows" {
		return p.cmd.Process.Kill()
	}
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

func (p *osProcess) Kill() error {
	return p.cmd.Process.Kill()
}

// exitError describes why the process ended; valid once done is closed.
func (p *osProcess) exitError() error {
	if p.waitErr != nil {
		return fmt.Errorf("browser process exited: %w", p.waitErr)
	}
	return fmt.Errorf("browser process exited")
}

// ResolveExecutable finds the browser binary: explicit path, then
// BRAVE_PATH, then PATH and well-known install locations.
func ResolveExecutable(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(EnvExecutablePath)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%w at %s: %v", ErrNoExecutable, p, err)
		}
		return p, nil
	}

	for _, c := range executableCandidates() {
		if filepath.IsAbs(c) {
			if _, err := os.Stat(c); err == nil {
				return c, nil
			}
			continue
		}
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: set %s to the browser binary", ErrNoExecutable, EnvExecutablePath)
}

func executableCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Brave Browser.app/Contents/MacOS/Brave Browser",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		var out []string
		for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			base := os.Getenv(env)
			if base == "" {
				continue
			}
			out = append(out,
				filepath.Join(base, "BraveSoftware", "Brave-Browser", "Application", "brave.exe"),
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
			)
		}
		return out
	}
	return []string{
		"brave-browser",
		"brave",
		"brave-browser-stable",
		"/opt/brave.com/brave/brave",
		"/snap/bin/brave",
		"google-chrome",
		"chromium",
		"chromium-browser",
	}
}
