package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dleutenegger/breez-sdk/internal/models"
)

// EntrySource lists every cached row.
type EntrySource interface {
	Entries(ctx context.Context) ([]models.CachedItem, error)
}

// Snapshot is the on-disk form of a full cache export.
type Snapshot struct {
	CreatedAt time.Time           `json:"created_at"`
	Items     []models.CachedItem `json:"items"`
}

// WriteSnapshot exports every row from src to w as indented JSON.
func WriteSnapshot(ctx context.Context, src EntrySource, w io.Writer, now time.Time) error {
	if src == nil {
		return fmt.Errorf("snapshot: source is required")
	}

	items, err := src.Entries(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if items == nil {
		items = []models.CachedItem{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Snapshot{CreatedAt: now.UTC(), Items: items}); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot previously written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	return snap, nil
}
