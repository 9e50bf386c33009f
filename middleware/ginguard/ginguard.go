// Package ginguard adapts the access gate to gin routers.
package ginguard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/gate"
	"github.com/MrEthical07/goGate/middleware"
)

// ContextKey is the gin context key holding the request's *goGate.AuthState.
const ContextKey = "gogate.auth"

// Guard evaluates each request against the engine's route table and
// redirects with 302 Found when access is not granted.
func Guard(engine *goGate.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		if engine == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "gate unavailable"})
			return
		}

		tab := middleware.TabID(c.Writer, c.Request, engine.Config().Gate.TabCookie)
		ctx := goGate.WithClientIP(c.Request.Context(), c.ClientIP())

		decision, state := engine.Authorize(ctx, tab, c.Request.URL.Path)
		if decision != gate.Render {
			c.Redirect(http.StatusFound, engine.Paths().Target(decision))
			c.Abort()
			return
		}

		c.Set(ContextKey, state)
		c.Request = c.Request.WithContext(middleware.WithAuthState(ctx, state))
		c.Next()
	}
}

// RequireRoles gates a route on an explicit role list. Mount it after Guard
// or on its own.
func RequireRoles(engine *goGate.Engine, roles ...string) gin.HandlerFunc {
	allowed := append([]string(nil), roles...)
	return func(c *gin.Context) {
		if engine == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "gate unavailable"})
			return
		}

		ctx := goGate.WithRequestPath(goGate.WithClientIP(c.Request.Context(), c.ClientIP()), c.Request.URL.Path)
		state, ok := AuthState(c)
		if !ok {
			tab := middleware.TabID(c.Writer, c.Request, engine.Config().Gate.TabCookie)
			state, _ = engine.AuthState(ctx, tab)
			c.Set(ContextKey, state)
		}

		if decision := engine.Evaluate(ctx, state, allowed); decision != gate.Render {
			c.Redirect(http.StatusFound, engine.Paths().Target(decision))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthState returns the state set by Guard or RequireRoles.
func AuthState(c *gin.Context) (*goGate.AuthState, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil, false
	}
	st, ok := v.(*goGate.AuthState)
	return st, ok
}
