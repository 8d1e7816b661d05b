package reservation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pms-sync/core/database"
	"pms-sync/core/guesty/mocks"
	"pms-sync/core/queue"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

type fixture struct {
	db         *gorm.DB
	client     *mocks.Client
	store      *queue.Store
	reconciler *reservation.Reconciler
	dispatcher *reservation.Dispatcher
	mapping    *listing.Mapping
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:reservation_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&listing.Mapping{}, &guest.Contact{}, &guest.Mapping{},
		&calendar.Day{}, &queue.Command{},
		&reservation.Record{}, &reservation.SaleTransaction{}, &reservation.SaleLine{},
	))

	mapping := listing.Mapping{ExternalID: "l-1", Name: "Beach Villa", Currency: "MXN"}
	require.NoError(t, db.Create(&mapping).Error)

	client := new(mocks.Client)
	logger := zap.NewNop()
	guests := guest.NewService(db, client, logger, "Mexico")
	listings := listing.NewService(db, client, logger)
	calendars := calendar.NewService(db, client, logger)
	store := queue.NewStore(db)

	return &fixture{
		db:         db,
		client:     client,
		store:      store,
		reconciler: reservation.NewReconciler(db, guests, listings, calendars, store, logger),
		dispatcher: reservation.NewDispatcher(db, client, guests, calendars, logger, "America/Mexico_City"),
		mapping:    &mapping,
	}
}

func (f *fixture) expectGuest(id, name string) {
	f.client.On("Get", mock.Anything, "guests/"+id, mock.Anything, mock.Anything).
		Return(mocks.OKResult(map[string]any{"_id": id, "fullName": name}), nil)
}

type docOverride func(map[string]any)

func rawReservation(overrides ...docOverride) json.RawMessage {
	doc := map[string]any{
		"_id":              "r-1",
		"listingId":        "l-1",
		"guestId":          "g-1",
		"accountId":        "acc-1",
		"status":           "reserved",
		"confirmationCode": "CONF-1",
		"checkIn":          "2026-09-01T15:00:00.000Z",
		"checkOut":         "2026-09-04T12:00:00.000Z",
		"nightsCount":      3,
		"lastUpdatedAt":    "2026-08-20T10:00:00.000Z",
		"source":           "Airbnb",
		"money": map[string]any{
			"invoiceItems": []map[string]any{
				{"type": "ACCOMMODATION_FARE", "amount": 300.0},
				{"type": "CLEANING_FEE", "amount": 150.0},
			},
			"currency": "MXN",
		},
	}
	for _, override := range overrides {
		override(doc)
	}
	raw, _ := json.Marshal(doc)
	return raw
}

func TestReconcileCreatesReservationWithTransaction(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	rec, err := f.reconciler.Reconcile(context.Background(), rawReservation(), reservation.Scope{})
	require.NoError(t, err)
	require.NotNil(t, rec.ExternalID)
	assert.Equal(t, "r-1", *rec.ExternalID)
	assert.Equal(t, reservation.StatusReserved, rec.Status)
	assert.Equal(t, 3, rec.NightsCount)
	assert.InDelta(t, 300.0, rec.FareAccommodation, 0.001)
	assert.InDelta(t, 150.0, rec.FareCleaning, 0.001)

	// A reserved stay auto-confirms its transaction. The accommodation item
	// is the nightly fare; the total multiplies it over the stay.
	var sale reservation.SaleTransaction
	require.NoError(t, f.db.Where("reservation_id = ?", rec.ID).First(&sale).Error)
	assert.Equal(t, reservation.TxConfirmed, sale.Status)
	assert.Equal(t, "CONF-1", sale.Reference)
	assert.InDelta(t, 1050.0, sale.Total, 0.001)

	var lines []reservation.SaleLine
	require.NoError(t, f.db.Where("transaction_id = ?", sale.ID).Order("kind").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, reservation.LineAccommodation, lines[0].Kind)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.InDelta(t, 300.0, lines[0].UnitPrice, 0.001)
	assert.Equal(t, reservation.LineCleaning, lines[1].Kind)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.InDelta(t, 150.0, lines[1].UnitPrice, 0.001)

	// The stay nights are mirrored as reserved, check-out day untouched.
	var reserved int64
	require.NoError(t, f.db.Model(&calendar.Day{}).
		Where("listing_id = ? AND state = ?", f.mapping.ID, calendar.StateReserved).
		Count(&reserved).Error)
	assert.EqualValues(t, 3, reserved)
}

func TestReconcileReplayIsIdempotent(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	_, err := f.reconciler.Reconcile(context.Background(), rawReservation(), reservation.Scope{})
	require.NoError(t, err)
	_, err = f.reconciler.Reconcile(context.Background(), rawReservation(), reservation.Scope{})
	require.NoError(t, err)

	var records int64
	require.NoError(t, f.db.Model(&reservation.Record{}).Count(&records).Error)
	assert.EqualValues(t, 1, records)

	var sales int64
	require.NoError(t, f.db.Model(&reservation.SaleTransaction{}).Count(&sales).Error)
	assert.EqualValues(t, 1, sales)
}

func TestReconcileKeepsNewerState(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	newer := rawReservation(func(doc map[string]any) {
		doc["status"] = "confirmed"
		doc["lastUpdatedAt"] = "2026-08-21T10:00:00.000Z"
	})
	older := rawReservation(func(doc map[string]any) {
		doc["status"] = "inquiry"
		doc["lastUpdatedAt"] = "2026-08-19T10:00:00.000Z"
	})

	// The newer document arrives first; the late older one must not win.
	_, err := f.reconciler.Reconcile(context.Background(), newer, reservation.Scope{})
	require.NoError(t, err)
	rec, err := f.reconciler.Reconcile(context.Background(), older, reservation.Scope{})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, rec.Status)
}

func TestReconcileAppliesNewerUpdate(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	_, err := f.reconciler.Reconcile(context.Background(),
		rawReservation(func(doc map[string]any) { doc["status"] = "inquiry" }),
		reservation.Scope{})
	require.NoError(t, err)

	rec, err := f.reconciler.Reconcile(context.Background(),
		rawReservation(func(doc map[string]any) {
			doc["status"] = "confirmed"
			doc["lastUpdatedAt"] = "2026-08-22T10:00:00.000Z"
		}),
		reservation.Scope{})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusConfirmed, rec.Status)

	// Still a single transaction, kept exactly as first derived. Billing
	// documents are never rewritten behind the accountant's back.
	var sales []reservation.SaleTransaction
	require.NoError(t, f.db.Find(&sales).Error)
	require.Len(t, sales, 1)
	assert.Equal(t, reservation.TxDraft, sales[0].Status)
}

func TestReconcileRequeuesBehindLocalEdits(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	rec, err := f.reconciler.Reconcile(context.Background(), rawReservation(), reservation.Scope{})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(rec).Update("pending_push", true).Error)

	newer := rawReservation(func(doc map[string]any) {
		doc["status"] = "canceled"
		doc["lastUpdatedAt"] = "2026-08-25T10:00:00.000Z"
	})
	before := time.Now()
	kept, err := f.reconciler.Reconcile(context.Background(), newer, reservation.Scope{})
	require.NoError(t, err)

	// The local state is untouched and the update waits in the queue.
	assert.Equal(t, reservation.StatusReserved, kept.Status)

	var cmd queue.Command
	require.NoError(t, f.db.Where("operation = ?", queue.OpReservationSync).First(&cmd).Error)
	assert.Equal(t, "r-1", cmd.TargetID)
	assert.GreaterOrEqual(t, cmd.RunAfter.Sub(before), 9*time.Second)
}

func TestReconcileRejectsUnmappedListing(t *testing.T) {
	f := setup(t)

	doc := rawReservation(func(doc map[string]any) { doc["listingId"] = "l-unknown" })
	_, err := f.reconciler.Reconcile(context.Background(), doc, reservation.Scope{})
	assert.ErrorIs(t, err, listing.ErrUnmapped)
}

func TestReconcileRejectsIncompleteDocument(t *testing.T) {
	f := setup(t)

	doc := rawReservation(func(doc map[string]any) { delete(doc, "_id") })
	_, err := f.reconciler.Reconcile(context.Background(), doc, reservation.Scope{})
	assert.Error(t, err)
}

func TestReconcileCanceledReleasesNights(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	_, err := f.reconciler.Reconcile(context.Background(), rawReservation(), reservation.Scope{})
	require.NoError(t, err)

	canceled := rawReservation(func(doc map[string]any) {
		doc["status"] = "canceled"
		doc["lastUpdatedAt"] = "2026-08-25T10:00:00.000Z"
	})
	rec, err := f.reconciler.Reconcile(context.Background(), canceled, reservation.Scope{})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCanceled, rec.Status)

	// The transaction derived at reserved time stays as it was.
	var sale reservation.SaleTransaction
	require.NoError(t, f.db.Where("reservation_id = ?", rec.ID).First(&sale).Error)
	assert.Equal(t, reservation.TxConfirmed, sale.Status)

	var reserved int64
	require.NoError(t, f.db.Model(&calendar.Day{}).
		Where("listing_id = ? AND state = ?", f.mapping.ID, calendar.StateReserved).
		Count(&reserved).Error)
	assert.EqualValues(t, 0, reserved)
}

func TestReconcileCoercesStringAmounts(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	// Some vendor endpoints serialize numbers as strings.
	doc := rawReservation(func(doc map[string]any) {
		doc["nightsCount"] = "3"
		doc["money"] = map[string]any{
			"invoiceItems": []map[string]any{
				{"type": "ACCOMMODATION_FARE", "amount": "300"},
				{"type": "CLEANING_FEE", "amount": "150.0"},
			},
			"currency": "MXN",
		}
	})
	rec, err := f.reconciler.Reconcile(context.Background(), doc, reservation.Scope{})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.NightsCount)
	assert.InDelta(t, 300.0, rec.FareAccommodation, 0.001)
	assert.InDelta(t, 150.0, rec.FareCleaning, 0.001)
}

func TestReconcileTerminalStatusGetsNoTransaction(t *testing.T) {
	f := setup(t)
	f.expectGuest("g-1", "Maria Lopez")

	for _, status := range []string{"canceled", "declined", "expired", "closed"} {
		doc := rawReservation(func(doc map[string]any) {
			doc["_id"] = "r-" + status
			doc["status"] = status
		})
		rec, err := f.reconciler.Reconcile(context.Background(), doc, reservation.Scope{})
		require.NoError(t, err)
		assert.Equal(t, status, rec.Status)

		var sales int64
		require.NoError(t, f.db.Model(&reservation.SaleTransaction{}).
			Where("reservation_id = ?", rec.ID).Count(&sales).Error)
		assert.Zero(t, sales, "no billing document for a %s reservation", status)
	}
}
