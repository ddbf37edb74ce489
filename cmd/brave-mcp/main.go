// Package main is the brave-mcp command: an MCP server that drives a
// resilient Brave browser session, plus diagnostics for the host it runs on.
package main

func main() {
	Execute()
}
