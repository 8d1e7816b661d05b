package listing

import (
	"encoding/json"

	"pms-sync/core/archive"
	"pms-sync/core/logger"
	"pms-sync/core/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for listings.
type Handler struct {
	service  *Service
	archiver *archive.Archiver
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, archiver *archive.Archiver) *Handler {
	return &Handler{service: service, archiver: archiver}
}

// RegisterRoutes registers the listing routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/guesty/listings", h.HandleWebhook)
	app.Get("/listings/:id", h.HandleGetMapping)
}

type listingEvent struct {
	Event   string          `json:"event"`
	Listing json.RawMessage `json:"listing"`
}

// HandleWebhook ingests a listing webhook and refreshes the mapping catalog.
// @Summary Listing Webhook
// @Description Receive a Guesty listing event and upsert the local mapping.
// @Tags listing
// @Accept json
// @Produce json
// @Param payload body object true "Guesty webhook payload"
// @Success 200 {object} map[string]bool "Acknowledged"
// @Failure 400 {object} map[string]string "Malformed payload"
// @Router /guesty/listings [post]
func (h *Handler) HandleWebhook(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var event listingEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil || len(event.Listing) == 0 {
		l.Warn("Discarding malformed listing webhook", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "payload has no listing object",
		})
	}

	metrics.WebhookEvents.WithLabelValues(event.Event).Inc()

	var remote remoteListing
	_ = json.Unmarshal(event.Listing, &remote)
	h.archiver.Save(c.Context(), "listing", remote.ID, c.Body())

	if err := h.service.Upsert(c.Context(), event.Listing); err != nil {
		l.Error("Listing upsert failed", zap.String("listing", remote.ID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}

	l.Info("Listing mapping refreshed",
		zap.String("event", event.Event), zap.String("listing", remote.ID))
	return c.JSON(fiber.Map{"success": true})
}

// HandleGetMapping returns the local mapping for a remote listing id.
// @Summary Get Listing Mapping
// @Description Look up the local mapping for a Guesty listing id.
// @Tags listing
// @Produce json
// @Param id path string true "Remote listing id"
// @Success 200 {object} Mapping "Mapping"
// @Failure 404 {object} map[string]string "Unknown listing"
// @Router /listings/{id} [get]
func (h *Handler) HandleGetMapping(c *fiber.Ctx) error {
	m, err := h.service.Resolve(c.Context(), c.Params("id"))
	if err == ErrUnmapped {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown listing"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(m)
}
