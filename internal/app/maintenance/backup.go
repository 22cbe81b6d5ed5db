package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/dleutenegger/breez-sdk/internal/cache"
	"github.com/dleutenegger/breez-sdk/pkg/logger"
	"github.com/dleutenegger/breez-sdk/pkg/metrics"
)

const snapshotFilePattern = "cache-snapshot-%d.json"

// Exporter produces a backup and returns where it was written.
type Exporter func(ctx context.Context, now time.Time) (string, error)

// BackupRecorder persists the time of the last successful backup.
type BackupRecorder interface {
	SetLastBackupTime(ctx context.Context, t uint64) error
}

// Backuper runs the cache snapshot backup, either once or on a cron schedule,
// and records the completion time through the typed cache accessor.
type Backuper struct {
	export   Exporter
	recorder BackupRecorder
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string

	mu      sync.Mutex
	started bool
}

// Option customises the Backuper.
type Option func(*Backuper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(b *Backuper) {
		if c != nil {
			b.cron = c
		}
	}
}

// WithNow overrides the clock used for file names and recorded timestamps.
func WithNow(now func() time.Time) Option {
	return func(b *Backuper) {
		if now != nil {
			b.now = now
		}
	}
}

// WithSchedule sets the cron specification for periodic backups. An empty
// schedule disables the periodic job.
func WithSchedule(spec string) Option {
	return func(b *Backuper) {
		b.schedule = spec
	}
}

// NewBackuper constructs a Backuper. Both export and recorder are required.
func NewBackuper(export Exporter, recorder BackupRecorder, opts ...Option) (*Backuper, error) {
	if export == nil {
		return nil, errors.New("backup: exporter is required")
	}
	if recorder == nil {
		return nil, errors.New("backup: recorder is required")
	}

	b := &Backuper{
		export:   export,
		recorder: recorder,
		now:      time.Now,
		log:      logger.WithModule("backup"),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.cron == nil {
		b.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return b, nil
}

// Start registers the periodic job and launches the scheduler. It is a no-op
// when no schedule is configured.
func (b *Backuper) Start() error {
	if b.schedule == "" {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}

	if _, err := b.cron.AddFunc(b.schedule, func() {
		if err := b.RunOnce(context.Background()); err != nil {
			b.log.Warn("scheduled backup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("backup: schedule %q: %w", b.schedule, err)
	}

	b.cron.Start()
	b.started = true
	return nil
}

// Stop halts the scheduler, returning a context that is done once running jobs complete.
func (b *Backuper) Stop() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return context.Background()
	}
	b.started = false
	return b.cron.Stop()
}

// RunOnce exports a backup and, on success, records its time as Unix seconds.
func (b *Backuper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	now := b.now()
	location, err := b.export(ctx, now)
	if err != nil {
		metrics.BackupRuns.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("backup: export: %w", err)
	}

	if err := b.recorder.SetLastBackupTime(ctx, uint64(now.Unix())); err != nil {
		metrics.BackupRuns.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("backup: record time: %w", err)
	}

	metrics.BackupRuns.WithLabelValues(metrics.ResultOK).Inc()
	b.log.Info("cache backup written", zap.String("location", location), zap.Int64("time", now.Unix()))
	return nil
}

// FileExporter writes a JSON snapshot of src into dir, one file per run.
func FileExporter(dir string, src cache.EntrySource) Exporter {
	return func(ctx context.Context, now time.Time) (path string, err error) {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", err
		}

		path = filepath.Join(dir, fmt.Sprintf(snapshotFilePattern, now.Unix()))
		tmp, err := os.CreateTemp(dir, ".snapshot-*")
		if err != nil {
			return "", err
		}
		defer func() {
			if err != nil {
				_ = os.Remove(tmp.Name())
			}
		}()

		writeErr := cache.WriteSnapshot(ctx, src, tmp, now)
		closeErr := tmp.Close()
		if err = multierr.Combine(writeErr, closeErr); err != nil {
			return "", err
		}

		if err = os.Rename(tmp.Name(), path); err != nil {
			return "", err
		}
		return path, nil
	}
}
