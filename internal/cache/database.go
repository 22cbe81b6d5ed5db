package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dleutenegger/breez-sdk/internal/models"
	apperrors "github.com/dleutenegger/breez-sdk/pkg/errors"
	"github.com/dleutenegger/breez-sdk/pkg/logger"
	"github.com/dleutenegger/breez-sdk/pkg/metrics"
)

var errStoreNotInitialised = errors.New("cache: database store not initialised")

// DatabaseStore implements Store on top of the cached_items table.
type DatabaseStore struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db, log: logger.WithModule("cache")}
}

// Lookup retrieves the value stored under key.
func (s *DatabaseStore) Lookup(ctx context.Context, key string) Lookup {
	if s == nil {
		return Lookup{Status: StatusUnavailable, Err: errStoreNotInitialised}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer observe("lookup", time.Now())

	var item models.CachedItem
	err := s.db.WithContext(ctx).Where(keyEquals(key)).Take(&item).Error
	switch {
	case err == nil:
		metrics.CacheOperations.WithLabelValues("lookup", metrics.ResultHit).Inc()
		return Lookup{Value: item.Value, Status: StatusFound}
	case errors.Is(err, gorm.ErrRecordNotFound):
		metrics.CacheOperations.WithLabelValues("lookup", metrics.ResultMiss).Inc()
		return Lookup{Status: StatusNotFound}
	default:
		metrics.CacheOperations.WithLabelValues("lookup", metrics.ResultUnavailable).Inc()
		return Lookup{Status: StatusUnavailable, Err: apperrors.Storage("get", key, err)}
	}
}

// Get retrieves the value stored under key. Store failures are logged and
// reported as a miss.
func (s *DatabaseStore) Get(ctx context.Context, key string) (string, bool) {
	res := s.Lookup(ctx, key)
	if res.Status == StatusUnavailable && s != nil {
		s.log.Warn("cache lookup failed; treating as missing", zap.String("key", key), zap.Error(res.Err))
	}
	return res.Collapse()
}

// Set upserts the value for key.
func (s *DatabaseStore) Set(ctx context.Context, key, value string) error {
	if s == nil {
		return apperrors.Storage("set", key, errStoreNotInitialised)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer observe("set", time.Now())

	item := models.CachedItem{Key: key, Value: value}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).Create(&item).Error
	if err != nil {
		metrics.CacheOperations.WithLabelValues("set", metrics.ResultError).Inc()
		return apperrors.Storage("set", key, err)
	}

	metrics.CacheOperations.WithLabelValues("set", metrics.ResultOK).Inc()
	return nil
}

// Delete removes key from the store. Missing keys are not an error.
func (s *DatabaseStore) Delete(ctx context.Context, key string) error {
	if s == nil {
		return apperrors.Storage("delete", key, errStoreNotInitialised)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer observe("delete", time.Now())

	if err := s.db.WithContext(ctx).Where(keyEquals(key)).Delete(&models.CachedItem{}).Error; err != nil {
		metrics.CacheOperations.WithLabelValues("delete", metrics.ResultError).Inc()
		return apperrors.Storage("delete", key, err)
	}

	metrics.CacheOperations.WithLabelValues("delete", metrics.ResultOK).Inc()
	return nil
}

// Entries returns every stored row ordered by key.
func (s *DatabaseStore) Entries(ctx context.Context) ([]models.CachedItem, error) {
	if s == nil {
		return nil, apperrors.Storage("entries", "", errStoreNotInitialised)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var items []models.CachedItem
	if err := s.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&items).Error; err != nil {
		return nil, apperrors.Storage("entries", "", err)
	}
	return items, nil
}

// Ping checks that the underlying connection pool can reach the database.
func (s *DatabaseStore) Ping(ctx context.Context) error {
	if s == nil {
		return apperrors.Storage("ping", "", errStoreNotInitialised)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return apperrors.Storage("ping", "", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.Storage("ping", "", err)
	}
	return nil
}

// keyEquals quotes the key column, which is a reserved word in MySQL.
func keyEquals(key string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func observe(op string, start time.Time) {
	metrics.CacheLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
