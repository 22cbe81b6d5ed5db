package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/dleutenegger/breez-sdk/pkg/errors"
)

func TestHexCodecEncodesLowercaseWithoutSeparators(t *testing.T) {
	raw, err := HexCodec{}.Encode([]byte{0x0A, 0xBC, 0xFF})
	require.NoError(t, err)
	require.Equal(t, "0abcff", raw)
}

func TestHexCodecAcceptsUppercaseInput(t *testing.T) {
	v, ok, err := HexCodec{}.Decode("DEADBEEF")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, v)
}

func TestUint64CodecRejectsNonDecimal(t *testing.T) {
	for _, raw := range []string{"0x10", "1e3", "+5", "12abc"} {
		_, _, err := Uint64Codec{}.Decode(raw)
		require.Error(t, err, "raw %q", raw)
	}
}

func TestJSONCodecNullIsAbsent(t *testing.T) {
	_, ok, err := JSONCodec[map[string]string]{}.Decode(" null ")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStringListCodecPreservesOrder(t *testing.T) {
	codec := StringListCodec{}
	raw, err := codec.Encode([]string{"z", "a", "m"})
	require.NoError(t, err)
	require.Equal(t, `["z","a","m"]`, raw)

	items, ok, err := codec.Decode(raw)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"z", "a", "m"}, items)
}

func TestCodecKinds(t *testing.T) {
	require.Equal(t, apperrors.KindSerialization, JSONCodec[int]{}.Kind())
	require.Equal(t, apperrors.KindSerialization, StringListCodec{}.Kind())
	require.Equal(t, apperrors.KindSerialization, Uint64Codec{}.Kind())
	require.Equal(t, apperrors.KindEncoding, HexCodec{}.Kind())
}
