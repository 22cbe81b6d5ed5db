package cache

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/dleutenegger/breez-sdk/pkg/errors"
)

// Slot names a well-known cache key. The set of slots is closed: every slot
// is declared here and bound to exactly one codec in accessors.go.
type Slot string

const (
	SlotNodeState      Slot = "node_state"
	SlotLastBackupTime Slot = "last_backup_time"
	SlotGlCredentials  Slot = "gl_credentials"
	SlotStaticBackup   Slot = "static_backup"
)

// Slots lists every declared slot.
func Slots() []Slot {
	return []Slot{SlotNodeState, SlotLastBackupTime, SlotGlCredentials, SlotStaticBackup}
}

// Valid reports whether s is a declared slot.
func (s Slot) Valid() bool {
	switch s {
	case SlotNodeState, SlotLastBackupTime, SlotGlCredentials, SlotStaticBackup:
		return true
	default:
		return false
	}
}

func (s Slot) String() string {
	return string(s)
}

// IsSlotKey reports whether key is reserved by a typed slot.
func IsSlotKey(key string) bool {
	return Slot(key).Valid()
}

// typedSlot binds a slot to its codec and read policy.
type typedSlot[T any] struct {
	slot  Slot
	codec Codec[T]
	// lenientDecode reports malformed stored text as absent instead of failing.
	lenientDecode bool
	// strictLookup surfaces an unavailable store as a StorageError instead of absence.
	strictLookup bool
}

func (t typedSlot[T]) load(ctx context.Context, store Store, log *zap.Logger) (T, bool, error) {
	var zero T
	key := string(t.slot)

	res := store.Lookup(ctx, key)
	switch res.Status {
	case StatusNotFound:
		return zero, false, nil
	case StatusUnavailable:
		if t.strictLookup {
			return zero, false, apperrors.FromError(res.Err)
		}
		log.Warn("cache slot unavailable; treating as missing", zap.String("key", key), zap.Error(res.Err))
		return zero, false, nil
	}

	v, ok, err := t.codec.Decode(res.Value)
	if err != nil {
		if t.lenientDecode {
			log.Warn("cache slot holds malformed value; treating as missing", zap.String("key", key), zap.Error(err))
			return zero, false, nil
		}
		return zero, false, apperrors.Wrap(t.codec.Kind(), "get", key, err)
	}
	return v, ok, nil
}

func (t typedSlot[T]) save(ctx context.Context, store Store, v T) error {
	key := string(t.slot)

	raw, err := t.codec.Encode(v)
	if err != nil {
		return apperrors.Wrap(t.codec.Kind(), "set", key, err)
	}
	return store.Set(ctx, key, raw)
}
