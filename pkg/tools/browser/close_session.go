package browser

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func closeSessionTool() mcp.Tool {
	return mcp.NewTool("browser_close_session",
		mcp.WithDescription("Close the browser session. Pages and the browser are closed gracefully and the process is stopped. Safe to call when no session exists."),
	)
}

func (t *Toolset) closeSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := t.provider.GetSession()
	if err != nil {
		return mcp.NewToolResultText("No browser session is open; nothing to close."), nil
	}

	id := session.ID
	t.provider.CloseSession(ctx)

	return mcp.NewToolResultText(fmt.Sprintf(`Session closed successfully

Session: %s

The browser process has been stopped and all resources were released.`, id)), nil
}
