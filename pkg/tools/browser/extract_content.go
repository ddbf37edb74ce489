package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	core "github.com/entrhq/brave-mcp/pkg/browser"
)

func extractContentTool() mcp.Tool {
	return mcp.NewTool("browser_extract_content",
		mcp.WithDescription("Extract the current page's content as cleaned HTML, plain text, or a structured JSON summary. Scripts, styles and embedded objects are removed."),
		mcp.WithString("format",
			mcp.Description("Output format (default text)"),
			mcp.Enum(string(FormatText), string(FormatHTML), string(FormatStructured)),
		),
		mcp.WithNumber("max_length",
			mcp.Description(fmt.Sprintf("Maximum characters to return, %d-%d (default %d)", minMaxLength, maxMaxLength, DefaultMaxLength)),
		),
		timeoutOption(),
	)
}

func (t *Toolset) extractContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format := ContentFormat(request.GetString("format", string(FormatText)))
	switch format {
	case FormatText, FormatHTML, FormatStructured:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid format: %s (must be 'text', 'html', or 'structured')", format)), nil
	}

	maxLength := request.GetInt("max_length", DefaultMaxLength)
	if maxLength < minMaxLength || maxLength > maxMaxLength {
		return mcp.NewToolResultError(fmt.Sprintf("max_length must be between %d and %d", minMaxLength, maxMaxLength)), nil
	}

	session, err := t.session(ctx)
	if err != nil {
		return t.toolError("Extract content", err), nil
	}

	raw, err := core.Race(ctx, operationTimeout(request), "page content", session.Page.Content)
	if err != nil {
		return t.toolError("Extract content", err), nil
	}

	content, truncated, err := renderContent(raw, session.Page.URL(), format, maxLength)
	if err != nil {
		return t.toolError("Extract content", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Content extracted successfully

Extraction Details:
- Session: %s
- URL: %s
- Format: %s
- Length: %d characters
`, session.ID, session.Page.URL(), format, len(content))
	if truncated {
		fmt.Fprintf(&b, "- Truncated at %d characters\n", maxLength)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(content)

	return mcp.NewToolResultText(b.String()), nil
}

func renderContent(raw, pageURL string, format ContentFormat, maxLength int) (string, bool, error) {
	switch format {
	case FormatHTML:
		cleaned, err := cleanHTML(raw, maxLength)
		if err != nil {
			return "", false, err
		}
		return cleaned.HTML, cleaned.Truncated, nil

	case FormatStructured:
		summary, err := summarizeHTML(raw, maxLength)
		if err != nil {
			return "", false, err
		}
		summary.URL = pageURL
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return "", false, fmt.Errorf("failed to encode content: %w", err)
		}
		return string(data), summary.Truncated, nil

	default:
		text, truncated, err := visibleText(raw, maxLength)
		return text, truncated, err
	}
}
