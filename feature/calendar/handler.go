package calendar

import (
	"encoding/json"
	"strings"
	"time"

	"pms-sync/core/archive"
	"pms-sync/core/logger"
	"pms-sync/core/metrics"
	"pms-sync/core/queue"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for calendars.
type Handler struct {
	service  *Service
	store    *queue.Store
	archiver *archive.Archiver
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, store *queue.Store, archiver *archive.Archiver) *Handler {
	return &Handler{service: service, store: store, archiver: archiver}
}

// RegisterRoutes registers the calendar routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/guesty/calendar", h.HandleWebhook)
	app.Get("/availability", h.HandleSearch)
}

type calendarEvent struct {
	Event    string            `json:"event"`
	Calendar []json.RawMessage `json:"calendar"`
}

// WebhookDay is the per-day document carried by calendar webhooks and
// calendar.apply commands.
type WebhookDay struct {
	ListingID string `json:"listingId"`
	Date      string `json:"date"`
}

// HandleWebhook ingests a calendar webhook, enqueuing one apply command per
// day so a burst of updates is absorbed by the command queue.
// @Summary Calendar Webhook
// @Description Receive a Guesty calendar event and queue the day updates.
// @Tags calendar
// @Accept json
// @Produce json
// @Param payload body object true "Guesty webhook payload"
// @Success 200 {object} map[string]interface{} "Acknowledged"
// @Failure 400 {object} map[string]string "Malformed payload"
// @Router /guesty/calendar [post]
func (h *Handler) HandleWebhook(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var event calendarEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil || len(event.Calendar) == 0 {
		l.Warn("Discarding malformed calendar webhook", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "payload has no calendar days",
		})
	}

	metrics.WebhookEvents.WithLabelValues("calendar").Inc()

	queued := 0
	for _, raw := range event.Calendar {
		var day WebhookDay
		if err := json.Unmarshal(raw, &day); err != nil || day.ListingID == "" || day.Date == "" {
			l.Warn("Skipping malformed calendar day", zap.Error(err))
			continue
		}

		h.archiver.Save(c.Context(), "calendar", day.ListingID, raw)

		cmd, err := queue.New(queue.OpCalendarApply, day.ListingID, raw, 0)
		if err != nil {
			l.Error("Failed to build calendar command", zap.Error(err))
			continue
		}
		if err := h.store.Enqueue(c.Context(), cmd); err != nil {
			l.Error("Failed to enqueue calendar command", zap.Error(err))
			continue
		}
		queued++
	}

	l.Info("Calendar webhook accepted", zap.Int("queued", queued))
	return c.JSON(fiber.Map{"success": true, "queued": queued})
}

// HandleSearch answers an availability search over the local mirror.
// @Summary Availability Search
// @Description List listings fully available for a stay, with the mean nightly price.
// @Tags calendar
// @Produce json
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Param listings query string false "Comma-separated Guesty listing ids to narrow the search"
// @Success 200 {array} Option "Qualifying listings"
// @Failure 400 {object} map[string]string "Bad date range"
// @Router /availability [get]
func (h *Handler) HandleSearch(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	checkIn, err := time.Parse(DateLayout, c.Query("check_in"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "bad check_in date"})
	}
	checkOut, err := time.Parse(DateLayout, c.Query("check_out"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "bad check_out date"})
	}
	if !checkOut.After(checkIn) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "check_out must be after check_in"})
	}

	var externalIDs []string
	if raw := c.Query("listings"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				externalIDs = append(externalIDs, id)
			}
		}
	}

	options, err := h.service.Search(c.Context(), externalIDs, checkIn, checkOut)
	if err != nil {
		l.Error("Availability search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	if options == nil {
		options = []Option{}
	}
	return c.JSON(options)
}
