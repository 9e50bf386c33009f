// Package middleware exposes net/http adapters that put the access gate in
// front of handlers.
//
// # Guards
//
//   - [Guard]: resolves the tab, reads its session and applies the route table.
//   - [RequireRoles]: applies an explicit role list to one handler.
//   - [TokenLogin]: turns a bearer login token into a tab session.
//
// Guards redirect with 302 Found to the engine's login or forbidden path and
// inject the tab's [goGate.AuthState] into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. Every decision is
// delegated to Engine.Authorize or Engine.Evaluate.
//
// # What this package must NOT do
//
//   - Read or write session storage directly.
//   - Parse or create tokens.
//   - Decide access beyond forwarding the Engine's decision.
package middleware
