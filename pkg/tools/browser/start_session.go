package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	core "github.com/entrhq/brave-mcp/pkg/browser"
)

func startSessionTool() mcp.Tool {
	return mcp.NewTool("browser_start_session",
		mcp.WithDescription("Start or reuse the Brave browser session. An existing healthy session is reused; a stale one is replaced. Launch falls back through progressively simpler strategies when the browser fails to start."),
		mcp.WithBoolean("headless",
			mcp.Description("Run without a visible window (defaults to the HEADLESS setting)"),
		),
		mcp.WithString("proxy",
			mcp.Description("Proxy server, e.g. socks5://127.0.0.1:1080"),
		),
		mcp.WithString("extensions",
			mcp.Description("Comma-separated unpacked extension directories to load"),
		),
	)
}

func (t *Toolset) startSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := t.launchOptions(request)

	start := time.Now()
	session, err := t.provider.InitializeSession(ctx, opts)
	if err != nil {
		return t.toolError("Start session", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`Browser session ready

Session Details:
- ID: %s
- Strategy: %s
- Endpoint: %s
- URL: %s
- Ready in: %s

You can now use browser_navigate, browser_evaluate and browser_extract_content.`,
		session.ID,
		session.Strategy,
		session.Endpoint,
		pageURL(session),
		time.Since(start).Round(time.Millisecond),
	)), nil
}

// launchOptions merges per-call arguments over the toolset defaults.
func (t *Toolset) launchOptions(request mcp.CallToolRequest) core.LaunchOptions {
	opts := t.defaults
	args := request.GetArguments()

	if _, ok := args["headless"]; ok {
		headless := request.GetBool("headless", false)
		opts.Headless = &headless
	}
	if proxy := strings.TrimSpace(request.GetString("proxy", "")); proxy != "" {
		opts.Proxy = proxy
	}
	if raw := request.GetString("extensions", ""); raw != "" {
		var paths []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) > 0 {
			opts.ExtensionPaths = paths
		}
	}
	return opts
}

func pageURL(session *core.Session) string {
	if session.Page == nil {
		return "about:blank"
	}
	if u := session.Page.URL(); u != "" {
		return u
	}
	return "about:blank"
}
