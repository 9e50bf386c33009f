// Package goGate keeps a per-tab authentication session and decides, on every
// navigation to a protected view, whether to render it or redirect to the
// login or forbidden page.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after [Builder.Build].
//
// # Architecture boundaries
//
// goGate is the public surface. It exposes [Engine], [Builder], [Config] and
// value types ([AuthState], [MetricsSnapshot]). Session persistence lives in
// session and storage, the decision rule in gate, role inheritance in role.
// Audit dispatch and logger construction live under internal/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, SQL handles or the session wire format.
//   - Treat an absent, expired or corrupt session as an error. Those are
//     unauthenticated states.
//   - Import any sub-package that re-imports goGate.
package goGate
