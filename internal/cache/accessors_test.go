package cache

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/dleutenegger/breez-sdk/pkg/errors"
	"github.com/dleutenegger/breez-sdk/pkg/logger"
)

type testNodeState struct {
	ID                  string   `json:"id"`
	BlockHeight         uint32   `json:"block_height"`
	ChannelsBalanceMsat uint64   `json:"channels_balance_msat"`
	ConnectedPeers      []string `json:"connected_peers"`
}

// unavailableStore answers every lookup with an unavailable store and
// delegates writes to an in-memory map.
type unavailableStore struct {
	values map[string]string
}

func (s *unavailableStore) Lookup(context.Context, string) Lookup {
	return Lookup{Status: StatusUnavailable, Err: apperrors.Storage("get", "", errors.New("connection refused"))}
}

func (s *unavailableStore) Get(ctx context.Context, key string) (string, bool) {
	return s.Lookup(ctx, key).Collapse()
}

func (s *unavailableStore) Set(_ context.Context, key, value string) error {
	s.values[key] = value
	return nil
}

func (s *unavailableStore) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func newTestAccessors(t *testing.T) (*Accessors[testNodeState], *DatabaseStore) {
	t.Helper()

	store, _ := newTestStore(t)
	accessors, err := NewAccessors[testNodeState](store)
	require.NoError(t, err)
	return accessors, store
}

func TestNewAccessorsRequiresStore(t *testing.T) {
	_, err := NewAccessors[testNodeState](nil)
	require.Error(t, err)
}

func TestNodeStateRoundTrip(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	_, found, err := accessors.GetNodeState(ctx)
	require.NoError(t, err)
	require.False(t, found)

	state := testNodeState{
		ID:                  "02abc",
		BlockHeight:         812345,
		ChannelsBalanceMsat: 1_500_000,
		ConnectedPeers:      []string{"peer-a", "peer-b"},
	}
	require.NoError(t, accessors.SetNodeState(ctx, state))

	got, found, err := accessors.GetNodeState(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, state, got)

	raw, found := store.Get(ctx, "node_state")
	require.True(t, found)
	require.JSONEq(t, `{"id":"02abc","block_height":812345,"channels_balance_msat":1500000,"connected_peers":["peer-a","peer-b"]}`, raw)
}

func TestNodeStateMalformedJSONIsSerializationError(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "node_state", "{not json"))
	_, _, err := accessors.GetNodeState(ctx)
	require.ErrorIs(t, err, apperrors.ErrSerialization)

	require.NoError(t, store.Set(ctx, "node_state", `{"block_height":"tall"}`))
	_, _, err = accessors.GetNodeState(ctx)
	require.ErrorIs(t, err, apperrors.ErrSerialization)
}

func TestNodeStateNullIsAbsent(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "node_state", "null"))
	_, found, err := accessors.GetNodeState(ctx)
	require.NoError(t, err)
	require.False(t, found)
}

func TestNodeStateEncodeFailureIsSerializationError(t *testing.T) {
	store, _ := newTestStore(t)
	accessors, err := NewAccessors[map[string]float64](store)
	require.NoError(t, err)
	ctx := context.Background()

	err = accessors.SetNodeState(ctx, map[string]float64{"fee_rate": math.NaN()})
	require.ErrorIs(t, err, apperrors.ErrSerialization)

	_, found := store.Get(ctx, "node_state")
	require.False(t, found, "nothing should be written when encoding fails")
}

func TestLastBackupTimeScenario(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	_, found, err := accessors.GetLastBackupTime(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, accessors.SetLastBackupTime(ctx, 1700000000))
	got, found, err := accessors.GetLastBackupTime(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(1700000000), got)

	raw, _ := store.Get(ctx, "last_backup_time")
	require.Equal(t, "1700000000", raw)
}

func TestLastBackupTimeExtremes(t *testing.T) {
	accessors, _ := newTestAccessors(t)
	ctx := context.Background()

	for _, v := range []uint64{0, 1, math.MaxUint64} {
		require.NoError(t, accessors.SetLastBackupTime(ctx, v))
		got, found, err := accessors.GetLastBackupTime(ctx)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, v, got)
	}
}

func TestLastBackupTimeMalformedIsAbsent(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	logger.Replace(zap.New(core))
	t.Cleanup(func() {
		logger.Replace(nil)
	})

	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	for _, raw := range []string{"", "yesterday", "-1", "18446744073709551616", " 42"} {
		require.NoError(t, store.Set(ctx, "last_backup_time", raw))
		_, found, err := accessors.GetLastBackupTime(ctx)
		require.NoError(t, err, "raw %q", raw)
		require.False(t, found, "raw %q", raw)
	}
	require.Equal(t, 5, recorded.FilterMessage("cache slot holds malformed value; treating as missing").Len())
}

func TestGlCredentialsScenario(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	require.NoError(t, accessors.SetGlCredentials(ctx, []byte{0xDE, 0xAD, 0xBE, 0xEF}))

	got, found, err := accessors.GetGlCredentials(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, got)

	raw, found := store.Get(ctx, "gl_credentials")
	require.True(t, found)
	require.Equal(t, "deadbeef", raw)
}

func TestGlCredentialsRoundTrip(t *testing.T) {
	accessors, _ := newTestAccessors(t)
	ctx := context.Background()

	all := make([]byte, 256)
	for i := range all {
		all[i] = byte(i)
	}

	for _, creds := range [][]byte{{}, {0x00}, {0xff, 0x00, 0x10}, all} {
		require.NoError(t, accessors.SetGlCredentials(ctx, creds))
		got, found, err := accessors.GetGlCredentials(ctx)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, creds, got)
	}
}

func TestGlCredentialsInvalidHexIsEncodingError(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	for _, raw := range []string{"abc", "zz", "dead beef"} {
		require.NoError(t, store.Set(ctx, "gl_credentials", raw))
		_, found, err := accessors.GetGlCredentials(ctx)
		require.ErrorIs(t, err, apperrors.ErrEncoding, "raw %q", raw)
		require.False(t, found)
	}
}

func TestStaticBackupRoundTrip(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	_, found, err := accessors.GetStaticBackup(ctx)
	require.NoError(t, err)
	require.False(t, found)

	items := []string{"channel-3", "channel-1", "channel-2", "", "quote\"d"}
	require.NoError(t, accessors.SetStaticBackup(ctx, items))

	got, found, err := accessors.GetStaticBackup(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, items, got)

	require.NoError(t, accessors.SetStaticBackup(ctx, []string{}))
	got, found, err = accessors.GetStaticBackup(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Empty(t, got)

	require.NoError(t, accessors.SetStaticBackup(ctx, nil))
	raw, _ := store.Get(ctx, "static_backup")
	require.Equal(t, "[]", raw)
}

func TestStaticBackupMalformedIsSerializationError(t *testing.T) {
	accessors, store := newTestAccessors(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "static_backup", `["unterminated"`))
	_, _, err := accessors.GetStaticBackup(ctx)
	require.ErrorIs(t, err, apperrors.ErrSerialization)

	require.NoError(t, store.Set(ctx, "static_backup", `[1,2,3]`))
	_, _, err = accessors.GetStaticBackup(ctx)
	require.ErrorIs(t, err, apperrors.ErrSerialization)
}

func TestSlotsDoNotInterfere(t *testing.T) {
	accessors, _ := newTestAccessors(t)
	ctx := context.Background()

	require.NoError(t, accessors.SetNodeState(ctx, testNodeState{ID: "node"}))
	require.NoError(t, accessors.SetLastBackupTime(ctx, 7))
	require.NoError(t, accessors.SetGlCredentials(ctx, []byte{1, 2}))
	require.NoError(t, accessors.SetStaticBackup(ctx, []string{"a"}))

	state, _, err := accessors.GetNodeState(ctx)
	require.NoError(t, err)
	require.Equal(t, "node", state.ID)

	ts, _, err := accessors.GetLastBackupTime(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(7), ts)

	creds, _, err := accessors.GetGlCredentials(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, creds)

	items, _, err := accessors.GetStaticBackup(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, items)
}

func TestUnavailableStorePolicyPerSlot(t *testing.T) {
	store := &unavailableStore{values: map[string]string{}}
	accessors, err := NewAccessors[testNodeState](store)
	require.NoError(t, err)
	ctx := context.Background()

	_, found, err := accessors.GetNodeState(ctx)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = accessors.GetLastBackupTime(ctx)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = accessors.GetStaticBackup(ctx)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = accessors.GetGlCredentials(ctx)
	require.ErrorIs(t, err, apperrors.ErrStorage)
	require.False(t, found)
}

func TestSetPropagatesStorageError(t *testing.T) {
	accessors, _ := newTestAccessors(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, accessors.SetLastBackupTime(ctx, 1), apperrors.ErrStorage)
	require.ErrorIs(t, accessors.SetGlCredentials(ctx, []byte{1}), apperrors.ErrStorage)
	require.ErrorIs(t, accessors.SetStaticBackup(ctx, []string{"x"}), apperrors.ErrStorage)
	require.ErrorIs(t, accessors.SetNodeState(ctx, testNodeState{}), apperrors.ErrStorage)
}
