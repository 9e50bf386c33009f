package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v3"
)

var sessionHwd = &SessionRunner{}

type SessionRunner struct{}

func (r *SessionRunner) cmd() *cli.Command {
	tabFlag := &cli.StringFlag{
		Name:     "tab",
		Usage:    "tab identifier",
		Required: true,
	}
	return &cli.Command{
		Name:  "session",
		Usage: "Inspect or clear one tab's session in the configured backend",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Print the tab's live session as JSON",
				Flags:  []cli.Flag{tabFlag},
				Action: r.get,
			},
			{
				Name:   "clear",
				Usage:  "Remove the tab's session",
				Flags:  []cli.Flag{tabFlag},
				Action: r.clear,
			},
			{
				Name:  "start",
				Usage: "Store a new session for a user on the tab",
				Flags: []cli.Flag{
					tabFlag,
					&cli.StringFlag{Name: "user", Required: true, Usage: "user id"},
					&cli.StringFlag{Name: "roles", Usage: "comma separated roles"},
				},
				Action: r.start,
			},
		},
	}
}

func (r *SessionRunner) get(ctx context.Context, cmd *cli.Command) error {
	engine, _, closeEngine, err := buildEngine(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer closeEngine()

	rec, err := engine.Session(ctx, cmd.String("tab"))
	if err != nil {
		return err
	}
	if rec == nil {
		fmt.Fprintln(cmd.Root().Writer, "no session")
		return nil
	}
	out, err := sonic.ConfigStd.MarshalIndent(map[string]any{
		"expires_at": rec.ExpiresTime().UTC().Format(time.RFC3339),
		"user_id":    rec.UserID(),
		"session_id": rec.SessionID(),
		"roles":      rec.Roles(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, string(out))
	return nil
}

func (r *SessionRunner) clear(ctx context.Context, cmd *cli.Command) error {
	engine, _, closeEngine, err := buildEngine(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer closeEngine()

	if err := engine.ClearSession(ctx, cmd.String("tab")); err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, "cleared")
	return nil
}

func (r *SessionRunner) start(ctx context.Context, cmd *cli.Command) error {
	user := strings.TrimSpace(cmd.String("user"))
	if user == "" {
		return errors.New("--user cannot be empty")
	}
	engine, _, closeEngine, err := buildEngine(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer closeEngine()

	rec, err := engine.StartSession(ctx, cmd.String("tab"), user, splitRoles(cmd.String("roles")))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "session %s expires %s\n", rec.SessionID(), rec.ExpiresTime().UTC().Format(time.RFC3339))
	return nil
}
