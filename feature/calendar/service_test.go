package calendar_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"pms-sync/core/database"
	"pms-sync/core/guesty/mocks"
	"pms-sync/feature/calendar"
	"pms-sync/feature/listing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testDBSeq atomic.Int64

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:calendar_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&listing.Mapping{}, &calendar.Day{}))
	return db
}

func seedMapping(t *testing.T, db *gorm.DB, externalID string) *listing.Mapping {
	t.Helper()
	m := listing.Mapping{ExternalID: externalID, Name: "Listing " + externalID, Currency: "MXN"}
	require.NoError(t, db.Create(&m).Error)
	return &m
}

func seedDays(t *testing.T, db *gorm.DB, listingID uint, start time.Time, states []string, prices []float64) {
	t.Helper()
	for i, state := range states {
		day := calendar.Day{
			ListingID: listingID,
			Date:      start.AddDate(0, 0, i).Format(calendar.DateLayout),
			State:     state,
			Price:     prices[i],
			Currency:  "MXN",
		}
		require.NoError(t, db.Create(&day).Error)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSearchQualifiesFullyAvailableListing(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")
	seedDays(t, db, m.ID, date(2026, 9, 1),
		[]string{"available", "available", "available"},
		[]float64{100, 200, 300})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	options, err := svc.Search(context.Background(), nil, date(2026, 9, 1), date(2026, 9, 4))
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, m.ID, options[0].ListingID)
	assert.Equal(t, "l-1", options[0].ExternalID)
	assert.Equal(t, 3, options[0].Nights)
	assert.InDelta(t, 200.0, options[0].MeanPrice, 0.001)
	assert.Equal(t, "MXN", options[0].Currency)
}

func TestSearchExcludesBrokenRun(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")
	seedDays(t, db, m.ID, date(2026, 9, 1),
		[]string{"available", "unavailable", "available"},
		[]float64{100, 100, 100})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	options, err := svc.Search(context.Background(), nil, date(2026, 9, 1), date(2026, 9, 4))
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestSearchExcludesGapInMirror(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")
	// Only two of the three nights exist in the mirror.
	seedDays(t, db, m.ID, date(2026, 9, 1),
		[]string{"available", "available"},
		[]float64{100, 100})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	options, err := svc.Search(context.Background(), nil, date(2026, 9, 1), date(2026, 9, 4))
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestSearchRanksOnlyQualifyingListings(t *testing.T) {
	db := testDB(t)
	good := seedMapping(t, db, "l-good")
	bad := seedMapping(t, db, "l-bad")
	seedDays(t, db, good.ID, date(2026, 9, 1),
		[]string{"available", "available"}, []float64{100, 300})
	seedDays(t, db, bad.ID, date(2026, 9, 1),
		[]string{"available", "booked"}, []float64{100, 100})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	options, err := svc.Search(context.Background(), nil, date(2026, 9, 1), date(2026, 9, 3))
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "l-good", options[0].ExternalID)
	assert.InDelta(t, 200.0, options[0].MeanPrice, 0.001)
}

func TestSearchNarrowsToRequestedListings(t *testing.T) {
	db := testDB(t)
	wanted := seedMapping(t, db, "l-wanted")
	other := seedMapping(t, db, "l-other")
	seedDays(t, db, wanted.ID, date(2026, 9, 1),
		[]string{"available", "available"}, []float64{100, 100})
	seedDays(t, db, other.ID, date(2026, 9, 1),
		[]string{"available", "available"}, []float64{100, 100})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	options, err := svc.Search(context.Background(), []string{"l-wanted"},
		date(2026, 9, 1), date(2026, 9, 3))
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "l-wanted", options[0].ExternalID)

	// A filter naming only unknown listings matches nothing.
	options, err = svc.Search(context.Background(), []string{"l-unknown"},
		date(2026, 9, 1), date(2026, 9, 3))
	require.NoError(t, err)
	assert.Empty(t, options)
}

func TestSearchIgnoresClockTimes(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")
	seedDays(t, db, m.ID, date(2026, 9, 1),
		[]string{"available", "available", "available"},
		[]float64{100, 100, 100})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	// An early check-in and a late check-out still span the same three
	// nights.
	checkIn := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 4, 11, 0, 0, 0, time.UTC)
	options, err := svc.Search(context.Background(), nil, checkIn, checkOut)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, 3, options[0].Nights)
}

func TestPullRangeUpsertsMirror(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")

	client := new(mocks.Client)
	client.On("Get", mock.Anything, "availability-pricing/api/calendar/listings/l-1", mock.Anything, mock.Anything).
		Return(mocks.OKResult(map[string]any{
			"data": map[string]any{
				"days": []map[string]any{
					{"date": "2026-09-01", "status": "available", "price": 150.0, "currency": "MXN"},
					{"date": "2026-09-02", "status": "booked", "price": 150.0, "currency": "MXN"},
					{"date": "not-a-date", "status": "available"},
				},
			},
		}), nil)

	svc := calendar.NewService(db, client, zap.NewNop())

	count, err := svc.PullRange(context.Background(), m, date(2026, 9, 1), date(2026, 9, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var day calendar.Day
	require.NoError(t, db.Where("listing_id = ? AND date = ?", m.ID, "2026-09-02").First(&day).Error)
	assert.Equal(t, calendar.StateBooked, day.State)
}

func TestPullRangeCoercesStringPrices(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")

	// Some vendor endpoints serialize prices as strings.
	client := new(mocks.Client)
	client.On("Get", mock.Anything, "availability-pricing/api/calendar/listings/l-1", mock.Anything, mock.Anything).
		Return(mocks.OKResult(map[string]any{
			"data": map[string]any{
				"days": []map[string]any{
					{"date": "2026-09-01", "status": "available", "price": "175.50", "currency": "MXN"},
				},
			},
		}), nil)

	svc := calendar.NewService(db, client, zap.NewNop())

	count, err := svc.PullRange(context.Background(), m, date(2026, 9, 1), date(2026, 9, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var day calendar.Day
	require.NoError(t, db.Where("listing_id = ? AND date = ?", m.ID, "2026-09-01").First(&day).Error)
	assert.InDelta(t, 175.5, day.Price, 0.001)
}

func TestLiveCheckRejectsUnavailableNight(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")

	client := new(mocks.Client)
	client.On("Get", mock.Anything, "availability-pricing/api/calendar/listings/l-1", mock.Anything, mock.Anything).
		Return(mocks.OKResult(map[string]any{
			"data": map[string]any{
				"days": []map[string]any{
					{"date": "2026-09-01", "status": "available", "price": 150.0},
					{"date": "2026-09-02", "status": "reserved", "price": 150.0},
				},
			},
		}), nil)

	svc := calendar.NewService(db, client, zap.NewNop())

	err := svc.LiveCheck(context.Background(), m, date(2026, 9, 1), date(2026, 9, 3))
	assert.ErrorIs(t, err, calendar.ErrDatesUnavailable)
}

func TestBlockMarksStayNights(t *testing.T) {
	db := testDB(t)
	m := seedMapping(t, db, "l-1")
	seedDays(t, db, m.ID, date(2026, 9, 1),
		[]string{"available", "available", "available"},
		[]float64{100, 100, 100})

	svc := calendar.NewService(db, new(mocks.Client), zap.NewNop())

	err := svc.Block(context.Background(), m.ID, date(2026, 9, 1), date(2026, 9, 3), calendar.StateReserved)
	require.NoError(t, err)

	var reserved int64
	require.NoError(t, db.Model(&calendar.Day{}).
		Where("listing_id = ? AND state = ?", m.ID, calendar.StateReserved).
		Count(&reserved).Error)
	// Check-out day stays untouched.
	assert.EqualValues(t, 2, reserved)
}
