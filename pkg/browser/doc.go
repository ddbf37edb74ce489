// Package browser manages the lifecycle of the single browser session that
// brave-mcp exposes to tool handlers.
//
// The browser is an external process reached over its remote-debugging
// (CDP) endpoint. It can crash, start slowly, lose its port to another
// process, or be unreachable through one loopback name but not the other.
// SessionManager hides this behind three calls:
//
//   - InitializeSession returns a live session, reusing the cached one when
//     it passes a liveness probe and reconnecting otherwise
//   - GetSession returns the cached session without any I/O
//   - CloseSession tears the session down and is safe to repeat
//
// # Admission
//
// Every InitializeSession call passes a ReentrancyGuard (at most two
// initializations in flight) and then a CircuitBreaker (five consecutive
// exhausted connection runs open it for thirty seconds). Both checks happen
// before any connection I/O.
//
// # Connecting
//
// The ConnectionSupervisor checks which loopback names work, picks a free
// debug port in 9222-9322, and walks an ordered strategy table from the
// richest user configuration down to a minimal headless fallback. Each
// launch is bounded by Race. A connection-refused error is retried once on
// the other loopback name; other failures move on after a growing backoff.
// The breaker sees one outcome per run, not per strategy.
//
// # Teardown
//
// The session reference is cleared before any I/O. Pages and the browser
// are closed under individual deadlines, and a process that is still
// alive afterwards is sent a terminate signal and then killed. Teardown
// never returns an error.
package browser
