package cache

import (
	"context"
)

// LookupStatus distinguishes the outcomes of a raw cache read.
type LookupStatus int

const (
	// StatusNotFound means the key has never been set or was deleted.
	StatusNotFound LookupStatus = iota
	// StatusFound means Value holds the stored text.
	StatusFound
	// StatusUnavailable means the store could not answer; Err holds the cause.
	StatusUnavailable
)

func (s LookupStatus) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Lookup is the result of a raw cache read.
type Lookup struct {
	Value  string
	Status LookupStatus
	Err    error
}

// Found reports whether the lookup produced a value.
func (l Lookup) Found() bool {
	return l.Status == StatusFound
}

// Collapse folds an unavailable store into "not found", the lenient reading used by Get.
func (l Lookup) Collapse() (string, bool) {
	if l.Status != StatusFound {
		return "", false
	}
	return l.Value, true
}

// Store is the raw string-keyed persistent cache.
type Store interface {
	// Lookup reads key and reports found, not found, or unavailable.
	Lookup(ctx context.Context, key string) Lookup
	// Get reads key, treating store failures as absence.
	Get(ctx context.Context, key string) (string, bool)
	// Set inserts or replaces the value for key in a single statement.
	Set(ctx context.Context, key, value string) error
	// Delete removes key; deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error
}
