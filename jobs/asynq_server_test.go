package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueStockScanKeepsOneManualScanQueued(t *testing.T) {
	mr := miniredis.RunT(t)
	opts := asynq.RedisClientOpt{Addr: mr.Addr()}
	client, err := NewClient(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	inspector := asynq.NewInspector(opts)
	t.Cleanup(func() { _ = inspector.Close() })

	now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	first, err := client.EnqueueStockScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stockScanManualID, first)

	now = now.Add(2 * time.Second)
	second, err := client.EnqueueStockScan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, second)

	pending, err := inspector.ListPendingTasks(QueueDefault)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, stockScanManualID, pending[0].ID)

	require.NoError(t, inspector.DeleteTask(QueueDefault, first))
	third, err := client.EnqueueStockScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stockScanManualID, third)
}
