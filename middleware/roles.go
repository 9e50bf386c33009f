package middleware

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/gate"
)

// RequireRoles gates one handler on an explicit role list, independent of
// the route table. With no roles any authenticated tab passes. It reuses the
// state injected by an outer Guard when there is one.
func RequireRoles(engine *goGate.Engine, roles ...string) func(http.Handler) http.Handler {
	allowed := append([]string(nil), roles...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "gate unavailable", http.StatusServiceUnavailable)
				return
			}

			ctx := goGate.WithRequestPath(goGate.WithClientIP(r.Context(), ClientIP(r)), r.URL.Path)
			state, ok := AuthStateFromContext(ctx)
			if !ok {
				tab := TabID(w, r, engine.Config().Gate.TabCookie)
				// A read failure leaves state unauthenticated.
				state, _ = engine.AuthState(ctx, tab)
			}

			decision := engine.Evaluate(ctx, state, allowed)
			if decision != gate.Render {
				http.Redirect(w, r, engine.Paths().Target(decision), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAuthState(ctx, state)))
		})
	}
}
