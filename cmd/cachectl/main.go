package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/dleutenegger/breez-sdk/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newApp builds the cachectl command tree. Command output goes to out; logs go to stderr.
func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "cachectl",
		Usage:     "Inspect and maintain the node cache",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration directory or file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level (debug, info, warn, error)",
			},
		},
		After: func(context.Context, *cli.Command) error {
			_ = logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Print the raw value stored under KEY",
				ArgsUsage: "KEY",
				Action:    withStack(getAction),
			},
			{
				Name:      "set",
				Usage:     "Store VALUE under KEY, replacing any previous value",
				ArgsUsage: "KEY VALUE",
				Action:    withStack(setAction),
			},
			{
				Name:      "delete",
				Usage:     "Remove KEY from the cache",
				ArgsUsage: "KEY",
				Action:    withStack(deleteAction),
			},
			{
				Name:   "show",
				Usage:  "Decode and print every typed slot",
				Action: withStack(showAction),
			},
			{
				Name:  "backup",
				Usage: "Write a cache snapshot and record the backup time",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "schedule",
						Usage: "Cron schedule; when set, keep running and back up periodically",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory receiving snapshot files",
					},
				},
				Action: withStack(backupAction),
			},
			{
				Name:   "ping",
				Usage:  "Check that the cache database is reachable",
				Action: withStack(pingAction),
			},
		},
	}
}
