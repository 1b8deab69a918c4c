package stock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewAlertStore(client, time.Hour)
	ctx := context.Background()

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, Summary{Total: 3, Expired: 1, GeneratedAt: at, Alerts: []Alert{{RecordID: 9, Batch: "B9", Status: StatusExpired}}}))

	got, ok, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Total)
	assert.True(t, at.Equal(got.GeneratedAt))
	assert.Equal(t, "B9", got.Alerts[0].Batch)
	assert.Equal(t, time.Hour, mr.TTL(AlertSummaryKey))
}

func TestAlertStoreRejectsCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, mr.Set(AlertSummaryKey, "{not json"))

	_, _, err := NewAlertStore(client, 0).Load(context.Background())
	require.Error(t, err)
}

func TestNilAlertStore(t *testing.T) {
	store := NewAlertStore(nil, time.Hour)
	assert.Nil(t, store)
	require.NoError(t, store.Save(context.Background(), Summary{}))
	_, ok, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
