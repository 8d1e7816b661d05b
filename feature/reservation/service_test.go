package reservation_test

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService(t *testing.T, f *fixture) *reservation.Service {
	t.Helper()
	logger := zap.NewNop()
	listings := listing.NewService(f.db, f.client, logger)
	return reservation.NewService(f.db, f.client, listings, f.reconciler, f.dispatcher, f.store, logger)
}

func TestWatermarkRoundTrip(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.db.AutoMigrate(&reservation.SyncState{}))
	svc := testService(t, f)

	mark, err := svc.Watermark(context.Background())
	require.NoError(t, err)
	assert.Empty(t, mark)

	require.NoError(t, svc.SetWatermark(context.Background(), "2026-08-20T10:00:00"))
	require.NoError(t, svc.SetWatermark(context.Background(), "2026-08-21T10:00:00"))

	mark, err = svc.Watermark(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-08-21T10:00:00", mark)
}

func TestPullUpdatedFilters(t *testing.T) {
	f := setup(t)
	svc := testService(t, f)

	f.client.On("GetAll", mock.Anything, "reservations", mock.MatchedBy(func(params url.Values) bool {
		filters := params.Get("filters")
		return strings.Contains(filters, "lastUpdatedAt") &&
			strings.Contains(filters, "2026-08-20T10:00:00")
	})).Return([]json.RawMessage{rawReservation()}, true).Once()

	docs, err := svc.PullUpdated(context.Background(), "2026-08-20T10:00:00")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	f.client.AssertExpectations(t)
}

func TestPullUpdatedVendorFailure(t *testing.T) {
	f := setup(t)
	svc := testService(t, f)

	f.client.On("GetAll", mock.Anything, "reservations", mock.Anything).
		Return([]json.RawMessage(nil), false)

	_, err := svc.PullUpdated(context.Background(), "")
	assert.Error(t, err)
}
