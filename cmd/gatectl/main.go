// Command gatectl serves the access gate over HTTP and inspects tab sessions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "gatectl",
		Usage: "Run and inspect the tab-scoped session gate",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Value: ".env",
				Usage: "dotenv file layered under GOGATE_* variables",
			},
		},
		Commands: []*cli.Command{
			serveHwd.cmd(),
			sessionHwd.cmd(),
			tokenHwd.cmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "gatectl: %v\n", err)
		os.Exit(1)
	}
}
