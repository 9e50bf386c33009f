package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

var tokenHwd = &TokenRunner{}

type TokenRunner struct{}

func (r *TokenRunner) cmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue signed login tokens",
		Commands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Print a login token redeemable with Authorization: Bearer",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Required: true, Usage: "user id"},
					&cli.StringFlag{Name: "roles", Usage: "comma separated roles"},
				},
				Action: r.issue,
			},
		},
	}
}

func (r *TokenRunner) issue(ctx context.Context, cmd *cli.Command) error {
	user := strings.TrimSpace(cmd.String("user"))
	if user == "" {
		return errors.New("--user cannot be empty")
	}
	engine, _, closeEngine, err := buildEngine(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer closeEngine()

	token, err := engine.IssueToken(user, splitRoles(cmd.String("roles")))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, token)
	return nil
}
