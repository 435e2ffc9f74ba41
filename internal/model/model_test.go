package model

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	redis "github.com/go-redis/redis/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntitlementActive(t *testing.T) {
	assert := assert.New(t)

	now := time.Unix(1700000000, 0)

	permanent := &EntitlementRecord{DonatorEnd: 0}
	assert.True(permanent.Permanent())
	assert.True(permanent.Active(now))
	assert.True(permanent.Active(now.Add(100 * 365 * 24 * time.Hour)))

	future := &EntitlementRecord{DonatorEnd: now.Add(time.Hour).UnixMilli()}
	assert.False(future.Permanent())
	assert.True(future.Active(now))

	past := &EntitlementRecord{DonatorEnd: now.Add(-time.Hour).UnixMilli()}
	assert.False(past.Active(now))

	exact := &EntitlementRecord{DonatorEnd: now.UnixMilli()}
	assert.False(exact.Active(now))
}

func testHistory(t *testing.T, h MuteHistoryStore) {
	assert := assert.New(t)
	ctx := context.Background()

	_, err := h.MuteHistory(ctx, "g", "42", HistoryLimit)
	assert.ErrorIs(err, ErrRecordNotFound)

	for i := 1; i <= 8; i++ {
		assert.NoError(h.AppendMute(ctx, "g", "42", fmt.Sprintf("%dd reason %d", i, i)))
	}

	list, err := h.MuteHistory(ctx, "g", "42", HistoryLimit)
	assert.NoError(err)
	assert.Equal([]string{
		"3d reason 3",
		"4d reason 4",
		"5d reason 5",
		"6d reason 6",
		"7d reason 7",
		"8d reason 8",
	}, list)

	all, err := h.MuteHistory(ctx, "g", "42", 0)
	assert.NoError(err)
	assert.Len(all, 8)

	_, err = h.MuteHistory(ctx, "other", "42", HistoryLimit)
	assert.ErrorIs(err, ErrRecordNotFound)
}

func TestMemHistory(t *testing.T) {
	testHistory(t, NewMemHistory())
}

func TestMemHistoryDistinctAppends(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	h := NewMemHistory()
	assert.NoError(h.AppendMute(ctx, "g", "1", "1h spam"))
	assert.NoError(h.AppendMute(ctx, "g", "1", "1h spam"))

	list, err := h.MuteHistory(ctx, "g", "1", HistoryLimit)
	assert.NoError(err)
	assert.Equal([]string{"1h spam", "1h spam"}, list)
}

func TestFileHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mutes.json")

	h, err := OpenFileHistory(path)
	require.NoError(t, err)

	testHistory(t, h)

	reopened, err := OpenFileHistory(path)
	require.NoError(t, err)

	list, err := reopened.MuteHistory(context.Background(), "g", "42", 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"7d reason 7", "8d reason 8"}, list)
}

func TestMemSettings(t *testing.T) {
	assert := assert.New(t)

	s := NewMemSettings()

	v, err := s.ConfigGet("g", "scam", "enabled")
	assert.NoError(err)
	assert.Empty(v)

	assert.NoError(s.ConfigSet("g", "scam", "enabled", "true"))

	v, err = s.ConfigGet("g", "scam", "enabled")
	assert.NoError(err)
	assert.Equal("true", v)

	assert.NoError(s.ConfigSet("g", "global", "prefix", "?"))
	assert.NoError(s.ConfigSet("other", "global", "prefix", "."))

	all, err := s.ConfigList("g", "")
	assert.NoError(err)
	assert.Equal(map[string]string{"scam.enabled": "true", "global.prefix": "?"}, all)

	some, err := s.ConfigList("g", "prefix")
	assert.NoError(err)
	assert.Equal(map[string]string{"global.prefix": "?"}, some)

	assert.NoError(s.ConfigDel("g", "scam", "enabled"))

	v, err = s.ConfigGet("g", "scam", "enabled")
	assert.NoError(err)
	assert.Empty(v)
}

func TestRedisRepository(t *testing.T) {
	t.Skip("live test, need redis running locally")

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	require.NoError(t, client.FlushDB().Err())

	testHistory(t, NewRepository(client))
}

func TestSQLEntitlements(t *testing.T) {
	t.Skip("live test, need billing database running locally")

	s, err := OpenEntitlements("mysql", "root@tcp(localhost:3306)/quaver", 10)
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	_, err = s.Entitlement(context.Background(), "0")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
