package cache

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dleutenegger/breez-sdk/pkg/logger"
)

var (
	lastBackupTimeSlot = typedSlot[uint64]{
		slot:          SlotLastBackupTime,
		codec:         Uint64Codec{},
		lenientDecode: true,
	}
	glCredentialsSlot = typedSlot[[]byte]{
		slot:         SlotGlCredentials,
		codec:        HexCodec{},
		strictLookup: true,
	}
	staticBackupSlot = typedSlot[[]string]{
		slot:  SlotStaticBackup,
		codec: StringListCodec{},
	}
)

// Accessors exposes the typed cache slots. S is the node state payload; the
// cache only requires that it round-trips through JSON.
type Accessors[S any] struct {
	store     Store
	nodeState typedSlot[S]
	log       *zap.Logger
}

// NewAccessors wraps store with the typed slot accessors.
func NewAccessors[S any](store Store) (*Accessors[S], error) {
	if store == nil {
		return nil, errors.New("cache: store is required")
	}
	return &Accessors[S]{
		store: store,
		nodeState: typedSlot[S]{
			slot:  SlotNodeState,
			codec: JSONCodec[S]{},
		},
		log: logger.WithModule("cache"),
	}, nil
}

// SetNodeState stores the node state snapshot as JSON.
func (a *Accessors[S]) SetNodeState(ctx context.Context, state S) error {
	return a.nodeState.save(ctx, a.store, state)
}

// GetNodeState returns the last stored node state, or ok == false if none was stored.
func (a *Accessors[S]) GetNodeState(ctx context.Context) (S, bool, error) {
	return a.nodeState.load(ctx, a.store, a.log)
}

// SetLastBackupTime records the time of the last successful backup.
func (a *Accessors[S]) SetLastBackupTime(ctx context.Context, t uint64) error {
	return lastBackupTimeSlot.save(ctx, a.store, t)
}

// GetLastBackupTime returns the last backup time. A malformed stored value is
// reported as absent.
func (a *Accessors[S]) GetLastBackupTime(ctx context.Context) (uint64, bool, error) {
	return lastBackupTimeSlot.load(ctx, a.store, a.log)
}

// SetGlCredentials stores credential bytes hex encoded.
func (a *Accessors[S]) SetGlCredentials(ctx context.Context, creds []byte) error {
	return glCredentialsSlot.save(ctx, a.store, creds)
}

// GetGlCredentials returns the stored credential bytes. Invalid hex fails with
// an encoding error, and an unreachable store fails with a storage error.
func (a *Accessors[S]) GetGlCredentials(ctx context.Context) ([]byte, bool, error) {
	return glCredentialsSlot.load(ctx, a.store, a.log)
}

// SetStaticBackup stores the static backup items in order.
func (a *Accessors[S]) SetStaticBackup(ctx context.Context, items []string) error {
	return staticBackupSlot.save(ctx, a.store, items)
}

// GetStaticBackup returns the stored static backup items.
func (a *Accessors[S]) GetStaticBackup(ctx context.Context) ([]string, bool, error) {
	return staticBackupSlot.load(ctx, a.store, a.log)
}
