package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	core "github.com/entrhq/brave-mcp/pkg/browser"
)

func evaluateTool() mcp.Tool {
	return mcp.NewTool("browser_evaluate",
		mcp.WithDescription("Execute a JavaScript expression in the current page and return its JSON-encoded result. Starts a session if none is running."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("JavaScript expression or function body, e.g. document.title or () => location.href"),
		),
		timeoutOption(),
	)
}

func (t *Toolset) evaluate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(code) == "" {
		return mcp.NewToolResultError("code must not be empty"), nil
	}

	session, err := t.session(ctx)
	if err != nil {
		return t.toolError("Evaluate", err), nil
	}

	result, err := core.Race(ctx, operationTimeout(request), "evaluate", func(ctx context.Context) (any, error) {
		return session.Page.Evaluate(ctx, code)
	})
	if err != nil {
		return t.toolError("Evaluate", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(`JavaScript Execution Complete

Session: %s
URL: %s

Result:
%s`,
		session.ID,
		session.Page.URL(),
		formatResult(result),
	)), nil
}

func formatResult(result any) string {
	if result == nil {
		return "undefined"
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(data)
}
