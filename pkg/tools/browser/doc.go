// Package browser exposes the managed Brave session as MCP tools.
//
// All tools share one session owned by a SessionProvider (normally
// *browser.SessionManager from pkg/browser). Page tools call
// InitializeSession before every operation, so a dead or stale browser is
// replaced transparently and repeated launch failures trip the circuit
// breaker instead of hammering the machine.
//
// # Tools
//
//   - browser_start_session: start or reuse the session, with optional
//     headless, proxy and extension overrides
//   - browser_close_session: tear the session down; a no-op when closed
//   - browser_session_status: session, breaker and depth snapshot as JSON
//   - browser_navigate: load a URL and report the resulting title
//   - browser_evaluate: run a JavaScript expression and return its result
//   - browser_extract_content: page content as text, cleaned HTML, or a
//     structured summary
//
// # Errors
//
// Failures are returned as tool results with IsError set, not as protocol
// errors. The message carries the failure category in brackets, for example
// "[CircuitOpen]", and notes when the category is transient so the caller
// can decide whether to retry.
package browser
