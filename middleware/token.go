package middleware

import (
	"net/http"
	"strings"

	goGate "github.com/MrEthical07/goGate"
)

// TokenLogin establishes a tab session from an "Authorization: Bearer"
// login token before calling next. Requests without the header pass through
// untouched; an invalid token is rejected with 401.
func TokenLogin(engine *goGate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tab := TabID(w, r, engine.Config().Gate.TabCookie)
			ctx := goGate.WithClientIP(r.Context(), ClientIP(r))
			if _, err := engine.LoginWithToken(ctx, tab, token); err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
