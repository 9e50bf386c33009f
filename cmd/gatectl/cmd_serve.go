package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/locale"
	"github.com/MrEthical07/goGate/metrics/export/prometheus"
	"github.com/MrEthical07/goGate/middleware"
	"github.com/MrEthical07/goGate/middleware/ginguard"
)

var serveHwd = &ServeRunner{}

type ServeRunner struct{}

func (r *ServeRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a demo site behind the gate",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: ":8080",
				Usage: "listen address",
			},
			&cli.StringFlag{
				Name:  "locales",
				Usage: "directory of <lang>.yaml dictionaries replacing the built-in ones",
			},
		},
		Action: r.run,
	}
}

func (r *ServeRunner) run(ctx context.Context, cmd *cli.Command) error {
	engine, log, closeEngine, err := buildEngine(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer closeEngine()

	texts, err := loadLocales(cmd.String("locales"), engine.Config().Locale.Default)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cmd.String("addr"),
		Handler:           newRouter(engine, texts, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("gate listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalCh)

	select {
	case sig := <-signalCh:
		log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadLocales(dir, defaultLang string) (*locale.Provider, error) {
	if dir == "" {
		return locale.LoadEmbedded(defaultLang)
	}
	return locale.LoadFS(os.DirFS(dir), defaultLang)
}

// newRouter wires the demo site: a localized login page, login and logout
// endpoints, the forbidden page, metrics, and a catch-all page every
// protected route renders through.
func newRouter(engine *goGate.Engine, texts *locale.Provider, log logrus.FieldLogger) *gin.Engine {
	cfg := engine.Config()
	router := gin.New()
	router.Use(gin.Recovery(), languageMiddleware(texts))

	router.GET("/metrics", gin.WrapH(prometheus.NewPrometheusExporter(engine).Handler()))

	router.Use(ginguard.Guard(engine))

	router.GET(cfg.Gate.LoginPath, func(c *gin.Context) {
		lang := c.GetString(langKey)
		c.String(http.StatusOK, "%s\n%s\n", texts.Text(lang, "auth.login.title"), texts.Text(lang, "auth.login.submit"))
	})

	router.POST(cfg.Gate.LoginPath, func(c *gin.Context) {
		lang := c.GetString(langKey)
		user := strings.TrimSpace(c.PostForm("user"))
		if user == "" {
			c.String(http.StatusBadRequest, "%s\n", texts.Text(lang, "auth.login.required"))
			return
		}
		roles := splitRoles(c.PostForm("roles"))
		tab := middleware.TabID(c.Writer, c.Request, cfg.Gate.TabCookie)
		ctx := goGate.WithClientIP(c.Request.Context(), c.ClientIP())

		var err error
		if cfg.Token.Enabled {
			_, err = engine.Login(ctx, tab, user, roles)
		} else {
			_, err = engine.StartSession(ctx, tab, user, roles)
		}
		if err != nil {
			log.WithError(err).WithField("tab", tab).Warn("login failed")
			c.String(http.StatusServiceUnavailable, "%s\n", texts.Text(lang, "session.storage_unavailable"))
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	})

	router.POST("/logout", func(c *gin.Context) {
		tab := middleware.TabID(c.Writer, c.Request, cfg.Gate.TabCookie)
		if err := engine.ClearSession(c.Request.Context(), tab); err != nil {
			log.WithError(err).WithField("tab", tab).Warn("logout failed")
		}
		c.Redirect(http.StatusSeeOther, cfg.Gate.LoginPath)
	})

	router.GET(cfg.Gate.ForbiddenPath, func(c *gin.Context) {
		lang := c.GetString(langKey)
		c.String(http.StatusForbidden, "%s\n%s\n", texts.Text(lang, "gate.forbidden.title"), texts.Text(lang, "gate.forbidden.body"))
	})

	router.NoRoute(func(c *gin.Context) {
		lang := c.GetString(langKey)
		state, _ := ginguard.AuthState(c)
		if !state.Authenticated() {
			c.String(http.StatusOK, "%s\n", c.Request.URL.Path)
			return
		}
		c.String(http.StatusOK, "%s\n%s\n", texts.Sprintf(lang, "auth.welcome", state.UserID()), c.Request.URL.Path)
	})
	return router
}

const langKey = "gogate.lang"

// languageMiddleware resolves the UI language and persists an explicit
// choice in a cookie.
func languageMiddleware(texts *locale.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang, persist := texts.Resolve(c.Request)
		if persist {
			locale.SetCookie(c.Writer, lang)
		}
		c.Set(langKey, lang)
		c.Next()
	}
}

func splitRoles(raw string) []string {
	var out []string
	for _, r := range strings.Split(raw, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
