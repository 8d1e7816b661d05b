package reservation_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"pms-sync/core/archive"
	"pms-sync/core/guesty/mocks"
	"pms-sync/core/queue"
	"pms-sync/feature/calendar"
	"pms-sync/feature/guest"
	"pms-sync/feature/listing"
	"pms-sync/feature/reservation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func webhookApp(t *testing.T) (*fiber.App, *fixture) {
	t.Helper()
	f := setup(t)

	logger := zap.NewNop()
	guests := guest.NewService(f.db, f.client, logger, "Mexico")
	listings := listing.NewService(f.db, f.client, logger)
	calendars := calendar.NewService(f.db, f.client, logger)
	feature := reservation.NewFeature(f.db, f.client, guests, listings, calendars,
		f.store, archive.NewArchiver(nil, "", logger), logger, "America/Mexico_City")

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, f
}

func webhookBody(event string, doc json.RawMessage) *bytes.Reader {
	body, _ := json.Marshal(map[string]any{
		"event":       event,
		"reservation": doc,
	})
	return bytes.NewReader(body)
}

func TestWebhookQueuesFreshCopy(t *testing.T) {
	app, f := webhookApp(t)

	// The queued document is the refetched one, not the webhook body.
	fresh := rawReservation(func(doc map[string]any) { doc["status"] = "confirmed" })
	f.client.On("Get", mock.Anything, "reservations/r-1", mock.Anything, mock.Anything).
		Return(mocks.OKResult(fresh), nil).Once()

	req := httptest.NewRequest("POST", "/guesty/reservations",
		webhookBody(reservation.EventReservationUpdated, rawReservation()))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cmd queue.Command
	require.NoError(t, f.db.Where("operation = ?", queue.OpReservationSync).First(&cmd).Error)
	assert.Equal(t, "r-1", cmd.TargetID)

	var queued map[string]any
	require.NoError(t, json.Unmarshal(cmd.Payload, &queued))
	assert.Equal(t, "confirmed", queued["status"])
}

func TestWebhookFallsBackToBodyOnRefetchFailure(t *testing.T) {
	app, f := webhookApp(t)

	f.client.On("Get", mock.Anything, "reservations/r-1", mock.Anything, mock.Anything).
		Return(mocks.FailedResult(502), nil).Once()

	req := httptest.NewRequest("POST", "/guesty/reservations",
		webhookBody(reservation.EventReservationNew, rawReservation()))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cmd queue.Command
	require.NoError(t, f.db.Where("operation = ?", queue.OpReservationSync).First(&cmd).Error)

	var queued map[string]any
	require.NoError(t, json.Unmarshal(cmd.Payload, &queued))
	assert.Equal(t, "reserved", queued["status"])
}

func TestWebhookSkipsUnmappedListing(t *testing.T) {
	app, f := webhookApp(t)

	doc := rawReservation(func(doc map[string]any) { doc["listingId"] = "l-unknown" })
	req := httptest.NewRequest("POST", "/guesty/reservations",
		webhookBody(reservation.EventReservationNew, doc))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The reservation is not queued; a catalog refresh for the unknown
	// listing is.
	var cmds []queue.Command
	require.NoError(t, f.db.Find(&cmds).Error)
	require.Len(t, cmds, 1)
	assert.Equal(t, queue.OpListingPull, cmds[0].Operation)
	assert.Equal(t, "l-unknown", cmds[0].TargetID)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	app, _ := webhookApp(t)

	req := httptest.NewRequest("POST", "/guesty/reservations",
		bytes.NewReader([]byte(`{"event": "reservation.new"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["success"])
}

func TestWebhookIgnoresUnknownEvent(t *testing.T) {
	app, f := webhookApp(t)

	req := httptest.NewRequest("POST", "/guesty/reservations",
		webhookBody("reservation.deleted", rawReservation()))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "reservation.deleted", body["ignored"])

	// Nothing is queued for an event the sync does not handle.
	var commands int64
	require.NoError(t, f.db.Model(&queue.Command{}).Count(&commands).Error)
	assert.Zero(t, commands)
}

func TestCreateBookingEndpointQueuesPush(t *testing.T) {
	app, f := webhookApp(t)

	payload, _ := json.Marshal(map[string]any{
		"listing_id":   "l-1",
		"guest_name":   "Ana Ruiz",
		"check_in":     "2026-09-01",
		"check_out":    "2026-09-04",
		"nightly_fare": 300,
		"cleaning_fee": 150,
		"acting_user":  "Front Desk",
	})
	req := httptest.NewRequest("POST", "/reservations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created reservation.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, reservation.StatusInquiry, created.Status)

	var cmd queue.Command
	require.NoError(t, f.db.Where("operation = ?", queue.OpPushCreate).First(&cmd).Error)
	assert.Contains(t, string(cmd.Payload), "Front Desk")
}

func TestCreateBookingEndpointRejectsUnknownListing(t *testing.T) {
	app, _ := webhookApp(t)

	payload, _ := json.Marshal(map[string]any{
		"listing_id": "l-unknown",
		"guest_name": "Ana Ruiz",
		"check_in":   "2026-09-01",
		"check_out":  "2026-09-04",
	})
	req := httptest.NewRequest("POST", "/reservations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCancelBookingEndpointRejectsTerminal(t *testing.T) {
	app, f := webhookApp(t)
	rec := seedLocalReservation(t, f, externalID("r-9"), reservation.StatusCanceled)

	req := httptest.NewRequest("POST",
		"/reservations/"+fmt.Sprint(rec.ID)+"/cancel", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestGetReservationNotFound(t *testing.T) {
	app, _ := webhookApp(t)

	req := httptest.NewRequest("GET", "/reservations/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
