package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a cache failure.
type Kind string

const (
	// KindStorage marks I/O, connection or constraint failures reported by the backing store.
	KindStorage Kind = "STORAGE_ERROR"
	// KindSerialization marks structured (JSON) encode or decode failures.
	KindSerialization Kind = "SERIALIZATION_ERROR"
	// KindEncoding marks binary-to-text (hex) decode failures.
	KindEncoding Kind = "ENCODING_ERROR"
)

// CacheError provides a structured error describing which cache operation failed and why.
type CacheError struct {
	Kind     Kind   `json:"kind"`
	Op       string `json:"op,omitempty"`
	Key      string `json:"key,omitempty"`
	Message  string `json:"message"`
	Internal error  `json:"-"`
}

func (e *CacheError) Error() string {
	if e == nil {
		return "<nil>"
	}

	msg := e.Message
	if e.Key != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Key)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("cache: %s: %s", e.Op, msg)
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", msg, e.Internal)
	}

	return msg
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *CacheError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// Is reports whether target is a CacheError of the same kind, so the exported
// sentinels match any error of their kind.
func (e *CacheError) Is(target error) bool {
	if e == nil {
		return false
	}
	var other *CacheError
	if !errors.As(target, &other) || other == nil {
		return false
	}
	return other.Kind == e.Kind
}

// WithInternal returns a copy of the CacheError with an attached internal error.
func (e *CacheError) WithInternal(err error) *CacheError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Sentinels for errors.Is checks by kind.
var (
	ErrStorage = &CacheError{
		Kind:    KindStorage,
		Message: "storage error",
	}

	ErrSerialization = &CacheError{
		Kind:    KindSerialization,
		Message: "serialization error",
	}

	ErrEncoding = &CacheError{
		Kind:    KindEncoding,
		Message: "encoding error",
	}
)

// New builds a cache error without an internal cause.
func New(kind Kind, op, key, message string) *CacheError {
	return &CacheError{
		Kind:    kind,
		Op:      op,
		Key:     key,
		Message: message,
	}
}

// Wrap turns any error into a CacheError of the given kind, keeping the original for logging.
func Wrap(kind Kind, op, key string, err error) *CacheError {
	return &CacheError{
		Kind:     kind,
		Op:       op,
		Key:      key,
		Message:  messageFor(kind),
		Internal: err,
	}
}

// Storage wraps a backing store failure.
func Storage(op, key string, err error) *CacheError {
	return Wrap(KindStorage, op, key, err)
}

// Serialization wraps a JSON encode/decode failure.
func Serialization(op, key string, err error) *CacheError {
	return Wrap(KindSerialization, op, key, err)
}

// Encoding wraps a hex decode failure.
func Encoding(op, key string, err error) *CacheError {
	return Wrap(KindEncoding, op, key, err)
}

// FromError converts a generic error into a CacheError, defaulting to a storage failure.
func FromError(err error) *CacheError {
	if err == nil {
		return nil
	}

	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		return cacheErr
	}

	return ErrStorage.WithInternal(err)
}

// KindOf returns the kind of the first CacheError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var cacheErr *CacheError
	if errors.As(err, &cacheErr) {
		return cacheErr.Kind
	}
	return ""
}

func messageFor(kind Kind) string {
	switch kind {
	case KindStorage:
		return ErrStorage.Message
	case KindSerialization:
		return ErrSerialization.Message
	case KindEncoding:
		return ErrEncoding.Message
	default:
		return "cache error"
	}
}
