// Package role names the coarse-grained role tags carried by an authenticated
// identity and answers the one question the access gate asks: does this user
// hold at least one of the allowed roles?
//
// # Model
//
// Each role registered with a [Registry] gets a stable bit. A role may inherit
// other roles; a user's effective [Set] is the closure over inheritance. Role
// tags the registry has never seen grant nothing.
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Import session, gate or the root package.
package role
