package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func sessionStatusTool() mcp.Tool {
	return mcp.NewTool("browser_session_status",
		mcp.WithDescription("Report the current browser session, the connection circuit breaker state and the number of in-flight session requests. Does not start a browser."),
	)
}

type statusReport struct {
	Connected bool           `json:"connected"`
	Session   *sessionReport `json:"session,omitempty"`
	Breaker   breakerReport  `json:"breaker"`
	Depth     int            `json:"depth"`
}

type sessionReport struct {
	ID        string    `json:"id"`
	Strategy  string    `json:"strategy"`
	Endpoint  string    `json:"endpoint"`
	URL       string    `json:"url"`
	Pid       int       `json:"pid,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type breakerReport struct {
	State        string     `json:"state"`
	FailureCount int        `json:"failure_count"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

func (t *Toolset) sessionStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := t.provider.Status()

	report := statusReport{
		Connected: st.Session != nil,
		Breaker: breakerReport{
			State:        st.Breaker.State.String(),
			FailureCount: st.Breaker.FailureCount,
		},
		Depth: st.Depth,
	}
	if !st.Breaker.LastFailure.IsZero() {
		last := st.Breaker.LastFailure
		report.Breaker.LastFailure = &last
	}
	if info := st.Session; info != nil {
		report.Session = &sessionReport{
			ID:        info.ID,
			Strategy:  info.Strategy,
			Endpoint:  info.Endpoint,
			URL:       info.URL,
			Pid:       info.Pid,
			CreatedAt: info.CreatedAt,
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode status: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
