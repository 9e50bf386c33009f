// Package session persists the single authentication record of a tab and
// enforces its expiry.
//
// # Lifecycle
//
// A [Record] is written by [Store.Save] after a successful login, read by
// [Store.Get] on every authentication check, and removed by [Store.Clear] on
// logout. Get clears the slot itself when the record has expired or cannot
// be decoded, so an expired record is never handed back.
//
// # Architecture boundaries
//
// This package owns the record format and the expiry policy. Storage is an
// injected [storage.Storage] and time is an injected [Clock]; neither is read
// from globals.
//
// # What this package must NOT do
//
//   - Verify token signatures or otherwise validate the payload cryptographically.
//   - Make authorization decisions (see package gate).
//   - Coordinate writers across tabs.
package session
