package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/gate"
)

// TabHeader carries a tab identifier chosen by the client, typically kept in
// the browser's per-tab storage. It takes precedence over the tab cookie.
const TabHeader = "X-Gate-Tab"

type authStateContextKey struct{}

// AuthStateFromContext returns the state injected by a guard.
func AuthStateFromContext(ctx context.Context) (*goGate.AuthState, bool) {
	st, ok := ctx.Value(authStateContextKey{}).(*goGate.AuthState)
	return st, ok
}

// WithAuthState returns a copy of ctx carrying st.
func WithAuthState(ctx context.Context, st *goGate.AuthState) context.Context {
	return context.WithValue(ctx, authStateContextKey{}, st)
}

// Guard evaluates every request against the engine's route table. Requests
// to unprotected paths pass through with their state attached.
func Guard(engine *goGate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "gate unavailable", http.StatusServiceUnavailable)
				return
			}

			tab := TabID(w, r, engine.Config().Gate.TabCookie)
			ctx := goGate.WithClientIP(r.Context(), ClientIP(r))

			decision, state := engine.Authorize(ctx, tab, r.URL.Path)
			if decision != gate.Render {
				http.Redirect(w, r, engine.Paths().Target(decision), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAuthState(ctx, state)))
		})
	}
}

// TabID returns the request's tab identifier. When neither TabHeader nor the
// named cookie is present a new identifier is minted and set as a session
// cookie on w.
func TabID(w http.ResponseWriter, r *http.Request, cookieName string) string {
	if tab := strings.TrimSpace(r.Header.Get(TabHeader)); tab != "" {
		return tab
	}
	if c, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(c.Value) != "" {
		return c.Value
	}
	tab := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    tab,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// Later handlers in this request see the new tab.
	r.AddCookie(&http.Cookie{Name: cookieName, Value: tab})
	return tab
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
