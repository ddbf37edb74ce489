package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	core "github.com/entrhq/brave-mcp/pkg/browser"
)

func navigateTool() mcp.Tool {
	return mcp.NewTool("browser_navigate",
		mcp.WithDescription("Navigate the browser to a URL and wait for the page to load. Starts a session if none is running."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL to load"),
		),
		timeoutOption(),
	)
}

func (t *Toolset) navigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := validateURL(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := t.session(ctx)
	if err != nil {
		return t.toolError("Navigate", err), nil
	}

	timeout := operationTimeout(request)
	err = core.RaceErr(ctx, timeout, "navigation", func(ctx context.Context) error {
		return session.Page.Navigate(ctx, target)
	})
	if err != nil {
		return t.toolError("Navigate", err), nil
	}

	title, err := core.Race(ctx, timeout, "page title", session.Page.Title)
	if err != nil || title == "" {
		title = "Unknown"
	}

	return mcp.NewToolResultText(fmt.Sprintf(`Navigation successful

Page Details:
- URL: %s
- Title: %s
- Session: %s

The page has loaded. Use browser_extract_content or browser_evaluate to inspect it.`,
		session.Page.URL(),
		title,
		session.ID,
	)), nil
}

func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "file", "about", "data":
	default:
		return "", fmt.Errorf("unsupported url scheme %q (use http or https)", u.Scheme)
	}
	return u.String(), nil
}
