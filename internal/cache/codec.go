package cache

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	apperrors "github.com/dleutenegger/breez-sdk/pkg/errors"
)

// Codec translates between a typed value and the text stored in the cache.
// Decode returns ok == false when the stored text encodes "no value".
type Codec[T any] interface {
	Kind() apperrors.Kind
	Encode(v T) (string, error)
	Decode(raw string) (v T, ok bool, err error)
}

// JSONCodec stores values as JSON text. A stored JSON null decodes as absent.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Kind() apperrors.Kind { return apperrors.KindSerialization }

func (JSONCodec[T]) Encode(v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (JSONCodec[T]) Decode(raw string) (T, bool, error) {
	var v T
	if strings.TrimSpace(raw) == "null" {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false, err
	}
	return v, true, nil
}

// StringListCodec stores an ordered list of strings as a JSON array. A nil
// list is written as an empty array.
type StringListCodec struct {
	JSONCodec[[]string]
}

func (c StringListCodec) Encode(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	return c.JSONCodec.Encode(items)
}

// Uint64Codec stores unsigned integers as decimal text.
type Uint64Codec struct{}

func (Uint64Codec) Kind() apperrors.Kind { return apperrors.KindSerialization }

func (Uint64Codec) Encode(v uint64) (string, error) {
	return strconv.FormatUint(v, 10), nil
}

func (Uint64Codec) Decode(raw string) (uint64, bool, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// HexCodec stores bytes as lowercase hexadecimal text.
type HexCodec struct{}

func (HexCodec) Kind() apperrors.Kind { return apperrors.KindEncoding }

func (HexCodec) Encode(v []byte) (string, error) {
	return hex.EncodeToString(v), nil
}

func (HexCodec) Decode(raw string) ([]byte, bool, error) {
	v, err := hex.DecodeString(raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
