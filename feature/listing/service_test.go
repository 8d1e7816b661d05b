package listing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"pms-sync/core/database"
	"pms-sync/core/guesty/mocks"
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
	dsn := fmt.Sprintf("file:listing_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := database.OpenSQLite(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&listing.Mapping{}))
	return db
}

func rawListing(id, title, currency string) json.RawMessage {
	doc := fmt.Sprintf(`{
		"_id": %q,
		"accountId": "acc-1",
		"title": %q,
		"nickname": "villa",
		"timezone": "America/Mexico_City",
		"active": true,
		"prices": {"currency": %q}
	}`, id, title, currency)
	return json.RawMessage(doc)
}

func TestPullAllUpsertsCatalog(t *testing.T) {
	db := testDB(t)

	client := new(mocks.Client)
	client.On("GetAll", mock.Anything, "listings", mock.Anything).
		Return([]json.RawMessage{
			rawListing("l-1", "Beach Villa", "MXN"),
			rawListing("l-2", "City Loft", "USD"),
		}, true)

	svc := listing.NewService(db, client, zap.NewNop())
	count, err := svc.PullAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	m, err := svc.Resolve(context.Background(), "l-2")
	require.NoError(t, err)
	assert.Equal(t, "City Loft", m.Name)
	assert.Equal(t, "USD", m.Currency)
	assert.Equal(t, "acc-1", m.AccountID)
}

func TestPullAllFailedPage(t *testing.T) {
	db := testDB(t)

	client := new(mocks.Client)
	client.On("GetAll", mock.Anything, "listings", mock.Anything).
		Return([]json.RawMessage(nil), false)

	svc := listing.NewService(db, client, zap.NewNop())
	_, err := svc.PullAll(context.Background())
	assert.Error(t, err)
}

func TestUpsertIsIdempotent(t *testing.T) {
	db := testDB(t)
	svc := listing.NewService(db, new(mocks.Client), zap.NewNop())

	require.NoError(t, svc.Upsert(context.Background(), rawListing("l-1", "Old Name", "MXN")))
	require.NoError(t, svc.Upsert(context.Background(), rawListing("l-1", "New Name", "MXN")))

	var count int64
	require.NoError(t, db.Model(&listing.Mapping{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	m, err := svc.Resolve(context.Background(), "l-1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", m.Name)
}

func TestResolveUnknownListing(t *testing.T) {
	db := testDB(t)
	svc := listing.NewService(db, new(mocks.Client), zap.NewNop())

	_, err := svc.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, listing.ErrUnmapped)
}
