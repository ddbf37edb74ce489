package browser

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

const (
	devToolsPortFile   = "DevToolsActivePort"
	endpointRetries    = 3
	endpointPollPeriod = 200 * time.Millisecond
)

// PlaywrightLauncher spawns the browser itself and attaches playwright to
// its debugging endpoint over CDP.
type PlaywrightLauncher struct {
	mu     sync.Mutex
	pw     *playwright.Playwright
	logger Logger
	client *http.Client
}

// NewPlaywrightLauncher creates a launcher. The playwright driver is
// installed and started lazily on the first launch.
func NewPlaywrightLauncher(logger Logger) *PlaywrightLauncher {
	if logger == nil {
		logger = nopLogger{}
	}
	return &PlaywrightLauncher{
		logger: logger,
		client: &http.Client{Timeout: 2 * time.Second},
	}
}

func (l *PlaywrightLauncher) driver() (*playwright.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw != nil {
		return l.pw, nil
	}

	// Output is discarded so it cannot corrupt a stdio transport
	opts := &playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("failed to install playwright driver: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}
	l.pw = pw
	return pw, nil
}

// Launch starts a browser for strategy and connects to it. The process is
// killed if ctx is cancelled before the connection completes.
func (l *PlaywrightLauncher) Launch(ctx context.Context, strategy Strategy) (*Session, error) {
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}

	exe, err := ResolveExecutable(strategy.ExecutablePath)
	if err != nil {
		return nil, err
	}

	userDataDir, err := os.MkdirTemp("", "brave-mcp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create user data dir: %w", err)
	}

	args := append([]string{
		"--remote-debugging-port=" + strconv.Itoa(strategy.Port),
		"--user-data-dir=" + userDataDir,
	}, strategy.Args()...)
	args = append(args, "about:blank")

	proc, err := startProcess(exe, args, userDataDir)
	if err != nil {
		_ = os.RemoveAll(userDataDir)
		return nil, err
	}
	l.logger.Infof("started %s (pid %d) for strategy %q", filepath.Base(exe), proc.Pid(), strategy.Name)

	stop := context.AfterFunc(ctx, func() {
		_ = proc.Kill()
	})

	session, err := l.connect(ctx, pw, proc, strategy, userDataDir)
	if !stop() {
		// ctx fired and the process is being killed
		if session != nil {
			_ = session.Browser.Close(context.Background())
		}
		return nil, fmt.Errorf("launch abandoned: %w", ctx.Err())
	}
	if err != nil {
		_ = proc.Kill()
		return nil, err
	}
	return session, nil
}

func (l *PlaywrightLauncher) connect(ctx context.Context, pw *playwright.Playwright, proc *osProcess, strategy Strategy, userDataDir string) (*Session, error) {
	port, err := waitForDevToolsPort(ctx, proc, userDataDir)
	if err != nil {
		return nil, err
	}
	if strategy.Port != 0 && port != strategy.Port {
		l.logger.Warnf("browser bound debug port %d, requested %d", port, strategy.Port)
	}

	endpoint := "http://" + net.JoinHostPort(strategy.Host, strconv.Itoa(port))
	if err := l.waitForEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}

	browser, err := pw.Chromium.ConnectOverCDP(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect over CDP at %s: %w", endpoint, err)
	}

	page, err := firstPage(browser)
	if err != nil {
		_ = browser.Close()
		return nil, err
	}

	return &Session{
		ID:        uuid.New().String(),
		Browser:   &playwrightBrowser{browser: browser},
		Page:      &playwrightPage{page: page},
		Process:   proc,
		Strategy:  strategy.Name,
		Endpoint:  endpoint,
		CreatedAt: time.Now(),
	}, nil
}

// Close stops the playwright driver.
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	if err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	return nil
}

// waitForDevToolsPort waits for the browser to write the port it bound.
// The file appears once the debugging server is listening, which also
// resolves port 0 to the system-assigned port.
func waitForDevToolsPort(ctx context.Context, proc *osProcess, userDataDir string) (int, error) {
	path := filepath.Join(userDataDir, devToolsPortFile)
	ticker := time.NewTicker(endpointPollPeriod)
	defer ticker.Stop()

	for {
		if port, err := readDevToolsPort(path); err == nil {
			return port, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-proc.done:
			return 0, proc.exitError()
		case <-ticker.C:
		}
	}
}

func readDevToolsPort(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return 0, errors.New("empty DevToolsActivePort file")
	}
	port, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || port <= 0 {
		return 0, fmt.Errorf("invalid DevToolsActivePort contents %q", scanner.Text())
	}
	return port, nil
}

// waitForEndpoint checks /json/version on the chosen host. The port is
// already bound, so repeated failure means this host name cannot reach it.
func (l *PlaywrightLauncher) waitForEndpoint(ctx context.Context, endpoint string) error {
	var lastErr error
	for i := 0; i < endpointRetries; i++ {
		if i > 0 {
			if err := sleepContext(ctx, endpointPollPeriod); err != nil {
				return err
			}
		}
		lastErr = l.probeVersion(ctx, endpoint)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("debugging endpoint %s not reachable: %w", endpoint, lastErr)
}

func (l *PlaywrightLauncher) probeVersion(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/json/version", nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	var info struct {
		WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decoding version info: %w", err)
	}
	if info.WebSocketDebuggerURL == "" {
		return errors.New("version info has no webSocketDebuggerUrl")
	}
	return nil
}

func firstPage(browser playwright.Browser) (playwright.Page, error) {
	for _, bctx := range browser.Contexts() {
		if pages := bctx.Pages(); len(pages) > 0 {
			return pages[0], nil
		}
	}
	contexts := browser.Contexts()
	if len(contexts) > 0 {
		page, err := contexts[0].NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to open page: %w", err)
		}
		return page, nil
	}
	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return page, nil
}

// playwrightBrowser adapts playwright.Browser. Playwright calls are not
// context-aware; callers bound them with Race.
type playwrightBrowser struct {
	browser playwright.Browser
}

func (b *playwrightBrowser) Version(ctx context.Context) (string, error) {
	if !b.browser.IsConnected() {
		return "", errors.New("target closed: browser disconnected")
	}
	cdp, err := b.browser.NewBrowserCDPSession()
	if err != nil {
		return "", fmt.Errorf("protocol error: opening CDP session: %w", err)
	}
	defer cdp.Detach()

	res, err := cdp.Send("Browser.getVersion", nil)
	if err != nil {
		return "", err
	}
	if m, ok := res.(map[string]interface{}); ok {
		if product, ok := m["product"].(string); ok {
			return product, nil
		}
	}
	return b.browser.Version(), nil
}

func (b *playwrightBrowser) Pages(ctx context.Context) ([]PageHandle, error) {
	var pages []PageHandle
	for _, bctx := range b.browser.Contexts() {
		for _, p := range bctx.Pages() {
			pages = append(pages, &playwrightPage{page: p})
		}
	}
	return pages, nil
}

func (b *playwrightBrowser) Close(ctx context.Context) error {
	return b.browser.Close()
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Evaluate(ctx context.Context, expression string) (any, error) {
	return p.page.Evaluate(expression)
}

func (p *playwrightPage) Navigate(ctx context.Context, url string) error {
	_, err := p.page.Goto(url)
	return err
}

func (p *playwrightPage) Content(ctx context.Context) (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Title(ctx context.Context) (string, error) {
	return p.page.Title()
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Close(ctx context.Context) error {
	return p.page.Close()
}
