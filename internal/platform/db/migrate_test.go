package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrderedAndComplete(t *testing.T) {
	list, err := Migrations()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "0001_activity_log", list[0].Version)
	assert.Equal(t, "0002_idempotency_keys", list[1].Version)
	assert.Contains(t, list[0].SQL, "CREATE TABLE IF NOT EXISTS activity_log")
	assert.Contains(t, list[1].SQL, "idempotency_keys")
}
