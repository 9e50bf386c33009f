// Package gate decides, per navigation to a protected view, whether to render
// the view or redirect the visitor to the login or forbidden page.
//
// Evaluation is a pure function of an authentication snapshot. Nothing is
// remembered between calls and no errors are produced: an unauthenticated or
// under-privileged visitor is an expected outcome, expressed as a [Decision].
package gate

// Decision is the outcome of one evaluation.
type Decision uint8

const (
	// Render lets the nested view render.
	Render Decision = iota
	// RedirectLogin sends an unauthenticated visitor to the login page.
	RedirectLogin
	// RedirectForbidden sends an authenticated visitor lacking every allowed role
	// to the forbidden page.
	RedirectForbidden
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectForbidden:
		return "redirect_forbidden"
	default:
		return "unknown"
	}
}

// Evaluate maps an authentication snapshot to a Decision. allowed may be nil
// or empty, meaning any authenticated user passes. hasRole is consulted only
// when the visitor is authenticated and allowed is non-empty.
func Evaluate(authenticated bool, hasRole func(allowed []string) bool, allowed []string) Decision {
	if !authenticated {
		return RedirectLogin
	}
	if len(allowed) > 0 && (hasRole == nil || !hasRole(allowed)) {
		return RedirectForbidden
	}
	return Render
}

// State is the authentication capability the gate consumes.
type State interface {
	Authenticated() bool
	HasRole(allowed []string) bool
}

// EvaluateState is Evaluate over a State. A nil State is unauthenticated.
func EvaluateState(st State, allowed []string) Decision {
	if st == nil {
		return RedirectLogin
	}
	return Evaluate(st.Authenticated(), st.HasRole, allowed)
}

// Default redirect targets.
const (
	DefaultLoginPath     = "/login"
	DefaultForbiddenPath = "/403"
)

// Paths holds the two fixed redirect targets.
type Paths struct {
	Login     string
	Forbidden string
}

// DefaultPaths returns the default redirect targets.
func DefaultPaths() Paths {
	return Paths{Login: DefaultLoginPath, Forbidden: DefaultForbiddenPath}
}

// Target returns the redirect path for d, or "" for Render.
func (p Paths) Target(d Decision) string {
	switch d {
	case RedirectLogin:
		if p.Login == "" {
			return DefaultLoginPath
		}
		return p.Login
	case RedirectForbidden:
		if p.Forbidden == "" {
			return DefaultForbiddenPath
		}
		return p.Forbidden
	default:
		return ""
	}
}
