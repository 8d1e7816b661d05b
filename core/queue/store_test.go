package queue

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pms-sync/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:queue_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Command{}))
	return NewStore(db)
}

func mustCommand(t *testing.T, op Operation, target string, delay time.Duration) Command {
	t.Helper()
	cmd, err := New(op, target, nil, delay)
	require.NoError(t, err)
	return cmd
}

func TestStore_EnqueueAndDue(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, mustCommand(t, OpReservationSync, "r-1", 0)))
	require.NoError(t, store.Enqueue(ctx, mustCommand(t, OpCalendarApply, "l-1", time.Hour)))

	due, err := store.Due(ctx, 10)
	require.NoError(t, err)

	// The delayed command must not surface before its RunAfter.
	require.Len(t, due, 1)
	assert.Equal(t, OpReservationSync, due[0].Operation)
	assert.Equal(t, "r-1", due[0].TargetID)
}

func TestStore_MarkDone(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	cmd := mustCommand(t, OpReservationSync, "r-1", 0)
	require.NoError(t, store.Enqueue(ctx, cmd))
	require.NoError(t, store.MarkDone(ctx, cmd.ID))

	due, err := store.Due(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestStore_MarkFailedBacksOffThenParks(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	cmd := mustCommand(t, OpPushReserve, "r-2", 0)
	require.NoError(t, store.Enqueue(ctx, cmd))

	cause := errors.New("dates not available")
	for i := 0; i < MaxAttempts; i++ {
		require.NoError(t, store.MarkFailed(ctx, cmd.ID, cause))
	}

	var stored Command
	require.NoError(t, store.db.First(&stored, "id = ?", cmd.ID).Error)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, MaxAttempts, stored.Attempts)
	assert.Equal(t, "dates not available", stored.LastError)

	due, err := store.Due(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestStore_MarkFailedDelaysRetry(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	cmd := mustCommand(t, OpReservationSync, "r-3", 0)
	require.NoError(t, store.Enqueue(ctx, cmd))
	require.NoError(t, store.MarkFailed(ctx, cmd.ID, errors.New("transient")))

	var stored Command
	require.NoError(t, store.db.First(&stored, "id = ?", cmd.ID).Error)
	assert.Equal(t, StatusPending, stored.Status)
	assert.True(t, stored.RunAfter.After(time.Now()))
}

func TestStore_MarkFailedMissingCommand(t *testing.T) {
	store := testStore(t)

	err := store.MarkFailed(context.Background(), "missing", errors.New("boom"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
