package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pms-sync/core/guesty"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrUnmapped reports a webhook or command that references a listing the
// local catalog does not know about.
var ErrUnmapped = fmt.Errorf("listing is not mapped")

// Service manages the listing mapping catalog.
type Service struct {
	db     *gorm.DB
	client guesty.Client
	logger *zap.Logger
}

// NewService creates a new listing service.
func NewService(db *gorm.DB, client guesty.Client, logger *zap.Logger) *Service {
	return &Service{db: db, client: client, logger: logger}
}

// Resolve returns the mapping for a remote listing id.
func (s *Service) Resolve(ctx context.Context, externalID string) (*Mapping, error) {
	var m Mapping
	err := s.db.WithContext(ctx).Where("external_id = ?", externalID).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrUnmapped
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// PullAll fetches every listing from the vendor and upserts the catalog.
// It returns the number of listings processed.
func (s *Service) PullAll(ctx context.Context) (int, error) {
	pages, ok := s.client.GetAll(ctx, "listings", nil)
	if !ok {
		return 0, fmt.Errorf("listing pull: vendor rejected the request")
	}

	count := 0
	for _, raw := range pages {
		if err := s.Upsert(ctx, raw); err != nil {
			s.logger.Warn("Skipping malformed listing", zap.Error(err))
			continue
		}
		count++
	}

	s.logger.Info("Listing catalog refreshed", zap.Int("count", count))
	return count, nil
}

// PullOne fetches a single listing by its remote id and upserts the catalog.
func (s *Service) PullOne(ctx context.Context, externalID string) error {
	res, err := s.client.Get(ctx, "listings/"+externalID, nil, guesty.GetOptions{})
	if err != nil {
		return err
	}
	if !res.OK {
		return fmt.Errorf("listing pull %s: vendor returned %d", externalID, res.Status)
	}
	return s.Upsert(ctx, res.Body)
}

// Upsert stores or refreshes a mapping from a raw vendor listing document.
func (s *Service) Upsert(ctx context.Context, raw json.RawMessage) error {
	var remote remoteListing
	if err := json.Unmarshal(raw, &remote); err != nil {
		return err
	}
	if remote.ID == "" {
		return fmt.Errorf("listing document has no _id")
	}

	m := Mapping{
		ExternalID: remote.ID,
		AccountID:  remote.AccountID,
		Name:       remote.Title,
		Nickname:   remote.Nickname,
		Timezone:   remote.Timezone,
		Currency:   remote.Prices.Currency,
		Active:     remote.Active,
		UpdatedAt:  time.Now(),
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"account_id", "name", "nickname", "timezone", "currency", "active", "updated_at",
		}),
	}).Create(&m).Error
}
