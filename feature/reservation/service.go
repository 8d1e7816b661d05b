package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"pms-sync/core/guesty"
	"pms-sync/core/queue"
	"pms-sync/feature/listing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service ties webhook intake, reconciliation, local bookings and outbound
// pushes together.
type Service struct {
	db         *gorm.DB
	client     guesty.Client
	listings   *listing.Service
	reconciler *Reconciler
	dispatcher *Dispatcher
	store      *queue.Store
	logger     *zap.Logger
}

// NewService creates a new reservation service.
func NewService(db *gorm.DB, client guesty.Client, listings *listing.Service, reconciler *Reconciler, dispatcher *Dispatcher, store *queue.Store, logger *zap.Logger) *Service {
	return &Service{
		db:         db,
		client:     client,
		listings:   listings,
		reconciler: reconciler,
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// Reconciler returns the reconciler for command execution.
func (s *Service) Reconciler() *Reconciler {
	return s.reconciler
}

// Dispatcher returns the dispatcher for command execution.
func (s *Service) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Get returns the local record for a remote reservation id.
func (s *Service) Get(ctx context.Context, externalID string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Fetch pulls a fresh copy of a reservation from the vendor. Webhook
// payloads can be stale by the time they arrive; the fresh copy is what
// gets queued for reconciliation.
func (s *Service) Fetch(ctx context.Context, externalID string) (json.RawMessage, error) {
	res, err := s.client.Get(ctx, "reservations/"+externalID, nil, guesty.GetOptions{})
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("reservation fetch %s: vendor returned %d", externalID, res.Status)
	}
	return res.Body, nil
}

// PullUpdated fetches every reservation the vendor updated since the
// watermark and returns the raw documents for reconciliation.
func (s *Service) PullUpdated(ctx context.Context, since string) ([]json.RawMessage, error) {
	params := pullParams(since)
	docs, ok := s.client.GetAll(ctx, "reservations", params)
	if !ok {
		return nil, fmt.Errorf("reservation pull: vendor rejected the request")
	}
	return docs, nil
}

// pullParams builds the vendor filter for an incremental pull.
func pullParams(since string) url.Values {
	params := url.Values{}
	if since != "" {
		filter := []map[string]string{{
			"field":    "lastUpdatedAt",
			"operator": "$gte",
			"value":    since,
		}}
		encoded, _ := json.Marshal(filter)
		params.Set("filters", string(encoded))
	}
	return params
}
