package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanedHTML represents cleaned HTML content with metadata
type CleanedHTML struct {
	HTML        string
	Title       string
	Description string
	Truncated   bool
}

// Elements removed together with their subtree.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"iframe":   true,
	"embed":    true,
	"object":   true,
	"svg":      true,
	"canvas":   true,
}

var blockElements = map[string]bool{
	"div": true, "p": true, "section": true, "article": true, "header": true,
	"footer": true, "nav": true, "main": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true, "td": true,
	"th": true, "form": true, "fieldset": true, "blockquote": true, "pre": true,
	"br": true, "hr": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var globalAttributes = map[string]bool{
	"id":               true,
	"class":            true,
	"role":             true,
	"aria-label":       true,
	"aria-describedby": true,
}

// cleanHTML parses page HTML and re-renders it without scripts, styles and
// other noise, keeping semantic structure and targeting attributes.
func cleanHTML(rawHTML string, maxLength int) (*CleanedHTML, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	c := &cleaner{maxLength: maxLength}
	result := &CleanedHTML{
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
		Truncated:   c.node(doc, 0),
	}
	result.HTML = c.b.String()
	return result, nil
}

// cleaner renders nodes into b until maxLength content characters are used.
type cleaner struct {
	b         strings.Builder
	length    int
	maxLength int
}

// node renders n and reports whether output was truncated.
func (c *cleaner) node(n *html.Node, depth int) bool {
	if c.length >= c.maxLength {
		return true
	}

	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return false
	case html.TextNode:
		return c.text(n.Data)
	case html.ElementNode:
		tag := strings.ToLower(n.Data)
		if skippedElements[tag] {
			return false
		}
		return c.element(n, tag, depth)
	}
	return c.children(n, depth)
}

func (c *cleaner) text(data string) bool {
	text := strings.TrimSpace(data)
	if text == "" {
		return false
	}
	if c.length+len(text) > c.maxLength {
		c.b.WriteString(truncateUTF8(text, c.maxLength-c.length))
		c.b.WriteString("...")
		c.length = c.maxLength
		return true
	}
	c.b.WriteString(text)
	c.length += len(text)
	return false
}

func (c *cleaner) element(n *html.Node, tag string, depth int) bool {
	block := blockElements[tag]
	if depth > 0 && block {
		c.newline(depth)
	}

	c.b.WriteString("<")
	c.b.WriteString(tag)
	for _, attr := range n.Attr {
		if preserveAttribute(tag, attr.Key) {
			fmt.Fprintf(&c.b, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	c.b.WriteString(">")
	c.length += len(tag) + 2

	truncated := c.children(n, depth+1)

	if !voidElements[tag] {
		if block {
			c.newline(depth)
		}
		c.b.WriteString("</")
		c.b.WriteString(tag)
		c.b.WriteString(">")
		c.length += len(tag) + 3
	}
	return truncated
}

func (c *cleaner) children(n *html.Node, depth int) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if c.node(child, depth) {
			return true
		}
	}
	return false
}

func (c *cleaner) newline(depth int) {
	c.b.WriteString("\n")
	c.b.WriteString(strings.Repeat("  ", depth))
}

// preserveAttribute reports whether an attribute is useful for targeting.
func preserveAttribute(tag, attr string) bool {
	attr = strings.ToLower(attr)
	if globalAttributes[attr] || strings.HasPrefix(attr, "data-") {
		return true
	}

	switch tag {
	case "a":
		return attr == "href" || attr == "target"
	case "img":
		return attr == "src" || attr == "alt"
	case "input", "textarea", "select":
		return attr == "name" || attr == "type" || attr == "placeholder" || attr == "value"
	case "button":
		return attr == "type" || attr == "name"
	case "form":
		return attr == "action" || attr == "method"
	case "table":
		return attr == "summary"
	}
	return false
}

// visibleText returns the page's rendered text with one line per block.
func visibleText(rawHTML string, maxLength int) (string, bool, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	return truncateText(collectText(body), maxLength)
}

// summarizeHTML builds the structured view of a page.
func summarizeHTML(rawHTML string, maxLength int) (*StructuredContent, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	summary := &StructuredContent{
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
		Headings:    []string{},
		Links:       []Link{},
	}

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		tag := strings.ToLower(n.Data)
		switch {
		case skippedElements[tag]:
			return false
		case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
			if text := normalizeSpace(collectText(n)); text != "" {
				summary.Headings = append(summary.Headings, text)
			}
		case tag == "a":
			if href := attribute(n, "href"); href != "" {
				summary.Links = append(summary.Links, Link{
					Text: normalizeSpace(collectText(n)),
					Href: href,
				})
			}
		}
		return true
	})

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	summary.Text, summary.Truncated, _ = truncateText(collectText(body), maxLength)
	return summary, nil
}

// collectText gathers text below n, breaking lines at block elements.
func collectText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(n *html.Node) bool {
		switch n.Type {
		case html.ElementNode:
			tag := strings.ToLower(n.Data)
			if skippedElements[tag] {
				return false
			}
			if blockElements[tag] {
				b.WriteString("\n")
			}
		case html.TextNode:
			if text := normalizeSpace(n.Data); text != "" {
				if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
					b.WriteString(" ")
				}
				b.WriteString(text)
			}
		}
		return true
	})

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	var found *html.Node
	walk(n, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && n.Data == tag {
			found = n
			return false
		}
		return true
	})
	return found
}

func attribute(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return strings.TrimSpace(attr.Val)
		}
	}
	return ""
}

// extractTitle extracts the page title from the document
func extractTitle(doc *html.Node) string {
	title := findElement(doc, "title")
	if title == nil {
		return ""
	}
	return normalizeSpace(collectText(title))
}

// extractMetaDescription extracts the meta description from the document
func extractMetaDescription(doc *html.Node) string {
	var description string
	walk(doc, func(n *html.Node) bool {
		if description != "" {
			return false
		}
		if n.Type == html.ElementNode && n.Data == "meta" &&
			strings.EqualFold(attribute(n, "name"), "description") {
			description = attribute(n, "content")
		}
		return true
	})
	return description
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateText(text string, maxLength int) (string, bool, error) {
	if len(text) <= maxLength {
		return text, false, nil
	}
	return truncateUTF8(text, maxLength) + "...", true, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
