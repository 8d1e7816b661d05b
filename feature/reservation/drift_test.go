package reservation_test

import (
	"context"
	"encoding/json"
	"testing"

	"pms-sync/core/drift"
	"pms-sync/feature/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDriftReportsStatusDivergence(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	_, err := f.reconciler.Reconcile(context.Background(), rawReservation(), reservation.Scope{})
	require.NoError(t, err)

	// The vendor has since canceled r-1 and created r-2.
	f.client.On("GetAll", mock.Anything, "reservations", mock.Anything).
		Return([]json.RawMessage{
			rawReservation(func(doc map[string]any) { doc["status"] = "canceled" }),
			rawReservation(func(doc map[string]any) {
				doc["_id"] = "r-2"
				doc["confirmationCode"] = "CONF-2"
			}),
		}, true)

	spec := &drift.Spec{Adapter: reservation.NewDriftAdapter()}
	defer drift.InvalidateCache(spec)

	report, err := drift.Run(context.Background(), spec, f.db, f.client)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Summary.TotalItems)
	assert.Equal(t, 1, report.Summary.MissingLocal)
	assert.Equal(t, 1, report.Summary.Mismatches)

	require.Len(t, report.Results, 2)
	assert.Equal(t, "r-1", report.Results[0].ID)
	assert.Contains(t, report.Results[0].Mismatch, "status: remote=canceled local=reserved")
	assert.Equal(t, "r-2", report.Results[1].ID)
	assert.False(t, report.Results[1].LocalPresent)
}
