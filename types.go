package goGate

import (
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
)

// AuthState is the authentication snapshot of one tab, derived from its
// session record. It satisfies gate.State. A nil *AuthState is
// unauthenticated.
type AuthState struct {
	TabID  string
	Record *session.Record
	roles  *role.Registry
}

// Authenticated reports whether the tab holds a live session.
func (s *AuthState) Authenticated() bool {
	return s != nil && s.Record != nil
}

// HasRole reports whether the session's roles satisfy at least one of
// allowed. With a role registry, inherited roles count.
func (s *AuthState) HasRole(allowed []string) bool {
	if !s.Authenticated() || len(allowed) == 0 {
		return false
	}
	held := s.Record.Roles()
	if s.roles != nil {
		return s.roles.HasAny(held, allowed)
	}
	for _, want := range allowed {
		for _, have := range held {
			if want == have {
				return true
			}
		}
	}
	return false
}

// UserID returns the session's user id, or "".
func (s *AuthState) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Record.UserID()
}

// Roles returns the session's directly held roles.
func (s *AuthState) Roles() []string {
	if !s.Authenticated() {
		return nil
	}
	return s.Record.Roles()
}
