package browser

import (
	"context"
	"time"

	core "github.com/entrhq/brave-mcp/pkg/browser"
)

// SessionProvider is the part of the session manager the tools depend on.
// *core.SessionManager satisfies it.
type SessionProvider interface {
	InitializeSession(ctx context.Context, opts core.LaunchOptions) (*core.Session, error)
	GetSession() (*core.Session, error)
	CloseSession(ctx context.Context)
	Status() core.Status
}

// ContentFormat specifies the format for content extraction.
type ContentFormat string

const (
	// FormatHTML returns cleaned HTML with scripts, styles and noise removed
	FormatHTML ContentFormat = "html"

	// FormatText returns the visible text only
	FormatText ContentFormat = "text"

	// FormatStructured returns title, description, headings and links as JSON
	FormatStructured ContentFormat = "structured"
)

const (
	// DefaultMaxLength is the default maximum content length
	DefaultMaxLength = 10000

	minMaxLength = 100
	maxMaxLength = 100000

	// DefaultOperationTimeout bounds a single page operation
	DefaultOperationTimeout = 30 * time.Second

	maxOperationTimeout = 5 * time.Minute
)

// StructuredContent is the structured extraction result.
type StructuredContent struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Headings    []string `json:"headings"`
	Links       []Link   `json:"links"`
	Text        string   `json:"text"`
	Truncated   bool     `json:"truncated"`
}

// Link represents a hyperlink on the page.
type Link struct {
	Text string `json:"text"`
	Href string `json:"href"`
}
