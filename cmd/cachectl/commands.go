package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dleutenegger/breez-sdk/internal/app"
	"github.com/dleutenegger/breez-sdk/internal/app/maintenance"
	"github.com/dleutenegger/breez-sdk/internal/cache"
	"github.com/dleutenegger/breez-sdk/pkg/logger"
)

var errKeyNotFound = errors.New("key not found")

type stackAction func(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error

// withStack loads configuration, configures logging and opens the cache for
// the duration of a single command.
func withStack(action stackAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		root := cmd.Root()

		cfg, err := loadApplicationConfig(root.String("config"))
		if err != nil {
			return err
		}
		if err := app.ConfigureLogging(cfg.Log, root.String("log-level")); err != nil {
			return fmt.Errorf("configure logging: %w", err)
		}

		log := logger.WithModule("cachectl")
		stack, err := bootstrapRuntime(cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, stack.Shutdown(log))
		}()

		return action(ctx, cmd, stack)
	}
}

func requireArgs(cmd *cli.Command, n int) ([]string, error) {
	args := cmd.Args().Slice()
	if len(args) != n {
		return nil, fmt.Errorf("%s: expected %d argument(s) (%s), got %d", cmd.Name, n, cmd.ArgsUsage, len(args))
	}
	return args, nil
}

func getAction(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}

	res := stack.Store.Lookup(ctx, args[0])
	switch res.Status {
	case cache.StatusFound:
		_, err = fmt.Fprintln(out(cmd), res.Value)
		return err
	case cache.StatusNotFound:
		return fmt.Errorf("%w: %q", errKeyNotFound, args[0])
	default:
		return res.Err
	}
}

func setAction(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error {
	args, err := requireArgs(cmd, 2)
	if err != nil {
		return err
	}

	if cache.IsSlotKey(args[0]) {
		logger.WithModule("cachectl").Warn("writing raw value into typed slot", zap.String("key", args[0]))
	}
	return stack.Store.Set(ctx, args[0], args[1])
}

func deleteAction(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error {
	args, err := requireArgs(cmd, 1)
	if err != nil {
		return err
	}
	return stack.Store.Delete(ctx, args[0])
}

func showAction(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error {
	w := out(cmd)
	a := stack.Accessors

	state, found, err := a.GetNodeState(ctx)
	printSlot(w, cache.SlotNodeState, found, err, func() string { return string(state) })

	ts, found, err := a.GetLastBackupTime(ctx)
	printSlot(w, cache.SlotLastBackupTime, found, err, func() string {
		return fmt.Sprintf("%d (%s)", ts, time.Unix(int64(ts), 0).UTC().Format(time.RFC3339))
	})

	// Credentials are summarised, never printed.
	creds, found, err := a.GetGlCredentials(ctx)
	printSlot(w, cache.SlotGlCredentials, found, err, func() string {
		fingerprint := creds
		if len(fingerprint) > 4 {
			fingerprint = fingerprint[:4]
		}
		return fmt.Sprintf("%d bytes (%s…)", len(creds), hex.EncodeToString(fingerprint))
	})

	items, found, err := a.GetStaticBackup(ctx)
	printSlot(w, cache.SlotStaticBackup, found, err, func() string {
		return fmt.Sprintf("%d item(s) [%s]", len(items), strings.Join(items, ", "))
	})

	return nil
}

func printSlot(w io.Writer, slot cache.Slot, found bool, err error, render func() string) {
	switch {
	case err != nil:
		fmt.Fprintf(w, "%s: error: %v\n", slot, err)
	case !found:
		fmt.Fprintf(w, "%s: <absent>\n", slot)
	default:
		fmt.Fprintf(w, "%s: %s\n", slot, render())
	}
}

func backupAction(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error {
	dir := stack.Config.Backup.Dir
	if v := strings.TrimSpace(cmd.String("dir")); v != "" {
		dir = v
	}
	schedule := stack.Config.Backup.Schedule
	if cmd.IsSet("schedule") {
		schedule = strings.TrimSpace(cmd.String("schedule"))
	}

	backuper, err := maintenance.NewBackuper(
		maintenance.FileExporter(dir, stack.Store),
		stack.Accessors,
		maintenance.WithSchedule(schedule),
	)
	if err != nil {
		return err
	}

	if schedule == "" {
		if err := backuper.RunOnce(ctx); err != nil {
			return err
		}
		_, err = fmt.Fprintf(out(cmd), "backup written to %s\n", dir)
		return err
	}

	if err := backuper.Start(); err != nil {
		return err
	}
	logger.WithModule("cachectl").Info("backup schedule running", zap.String("schedule", schedule), zap.String("dir", dir))

	<-ctx.Done()
	<-backuper.Stop().Done()
	return nil
}

func pingAction(ctx context.Context, cmd *cli.Command, stack *runtimeStack) error {
	if err := stack.Store.Ping(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out(cmd), "ok")
	return err
}

func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}
