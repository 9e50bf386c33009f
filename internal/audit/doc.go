// Package audit relays session and gate events to a caller-supplied sink
// without blocking the request path.
//
// # Components
//
//   - [Sink] is the consumer interface (channel, JSON lines, no-op).
//   - [Dispatcher] is a buffered async relay that either drops or blocks when full.
//   - [Event] is the structured record: tab, user, path, decision, outcome.
//
// # What this package must NOT do
//
//   - Decide which events to emit. The engine does that.
//   - Import goGate or any sibling internal package.
package audit
