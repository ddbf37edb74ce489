package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	core "github.com/entrhq/brave-mcp/pkg/browser"
	"github.com/entrhq/brave-mcp/pkg/logging"
)

// Logger is the logging surface the tools use.
type Logger = core.Logger

// Toolset builds the browser tools on top of a single managed session.
type Toolset struct {
	provider SessionProvider
	defaults core.LaunchOptions
	logger   Logger
}

// NewToolset creates the browser tools. defaults are the launch options used
// when a tool call does not override them.
func NewToolset(provider SessionProvider, defaults core.LaunchOptions, logger Logger) *Toolset {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Toolset{
		provider: provider,
		defaults: defaults,
		logger:   logger,
	}
}

// Tools returns every browser tool with its handler.
func (t *Toolset) Tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: startSessionTool(), Handler: t.startSession},
		{Tool: closeSessionTool(), Handler: t.closeSession},
		{Tool: sessionStatusTool(), Handler: t.sessionStatus},
		{Tool: navigateTool(), Handler: t.navigate},
		{Tool: evaluateTool(), Handler: t.evaluate},
		{Tool: extractContentTool(), Handler: t.extractContent},
	}
}

// Register adds the browser tools to an MCP server.
func (t *Toolset) Register(s *server.MCPServer) {
	s.AddTools(t.Tools()...)
}

// session returns a live session for page tools, connecting when needed.
func (t *Toolset) session(ctx context.Context) (*core.Session, error) {
	return t.provider.InitializeSession(ctx, t.defaults)
}

// toolError converts a failure into a tool result that carries its category
// and whether retrying may help. Protocol-level errors are reserved for
// malformed requests.
func (t *Toolset) toolError(action string, err error) *mcp.CallToolResult {
	category := core.Categorize(err)
	t.logger.Warnf("%s failed [%s]: %v", action, category, err)

	msg := fmt.Sprintf("%s failed [%s]: %v", action, category, err)
	if category.Retryable() {
		msg += "\n\nThis error is transient; retrying the call may succeed."
	}
	return mcp.NewToolResultError(msg)
}

// operationTimeout reads timeout_ms, clamped to a sane range.
func operationTimeout(request mcp.CallToolRequest) time.Duration {
	ms := request.GetInt("timeout_ms", 0)
	if ms <= 0 {
		return DefaultOperationTimeout
	}
	d := time.Duration(ms) * time.Millisecond
	if d > maxOperationTimeout {
		return maxOperationTimeout
	}
	return d
}

func timeoutOption() mcp.ToolOption {
	return mcp.WithNumber("timeout_ms",
		mcp.Description(fmt.Sprintf("Operation timeout in milliseconds (default %d)", DefaultOperationTimeout.Milliseconds())),
	)
}
