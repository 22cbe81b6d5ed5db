package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dleutenegger/breez-sdk/internal/app"
	"github.com/dleutenegger/breez-sdk/internal/cache"
	"github.com/dleutenegger/breez-sdk/internal/database"
	"github.com/dleutenegger/breez-sdk/pkg/logger"
)

// runtimeStack bundles the resources a single cachectl invocation works with.
// Node state is kept as raw JSON since the CLI does not know the node's schema.
type runtimeStack struct {
	Config    *app.Config
	DB        *gorm.DB
	Store     *cache.DatabaseStore
	Accessors *cache.Accessors[json.RawMessage]
}

// bootstrapRuntime opens and migrates the database and wires the cache on top of it.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	stack := &runtimeStack{Config: cfg}
	success := false
	defer func() {
		if !success {
			_ = stack.Shutdown(log)
		}
	}()

	var err error
	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Store = cache.NewDatabaseStore(stack.DB)
	stack.Accessors, err = cache.NewAccessors[json.RawMessage](stack.Store)
	if err != nil {
		return nil, fmt.Errorf("initialise cache accessors: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown flushes metrics when enabled and closes the database.
func (s *runtimeStack) Shutdown(log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var err error
	if s.Config != nil && s.Config.Metrics.Enabled {
		if metricsErr := writeMetrics(s.Config.Metrics.Textfile); metricsErr != nil {
			log.Warn("failed to write metrics textfile", zap.Error(metricsErr))
			err = multierr.Append(err, metricsErr)
		}
	}

	if s.DB != nil {
		err = multierr.Append(err, database.Close(s.DB))
		s.DB = nil
	}
	return err
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	logger.WithModule("database").Debug("database connected", zap.String("driver", dbCfg.Driver))
	return db, nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func writeMetrics(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
