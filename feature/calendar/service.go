package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"pms-sync/core/guesty"
	"pms-sync/core/utils"
	"pms-sync/feature/listing"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDatesUnavailable reports that at least one night of the requested stay
// is not available on the vendor's live calendar.
var ErrDatesUnavailable = fmt.Errorf("requested dates are not available")

// Service maintains the local calendar mirror and answers availability
// searches against it.
type Service struct {
	db     *gorm.DB
	client guesty.Client
	logger *zap.Logger
}

// NewService creates a new calendar service.
func NewService(db *gorm.DB, client guesty.Client, logger *zap.Logger) *Service {
	return &Service{db: db, client: client, logger: logger}
}

// PullRange refreshes the local mirror for one listing over a date range,
// both bounds inclusive.
func (s *Service) PullRange(ctx context.Context, m *listing.Mapping, from, to time.Time) (int, error) {
	params := url.Values{}
	params.Set("startDate", from.Format(DateLayout))
	params.Set("endDate", to.Format(DateLayout))

	res, err := s.client.Get(ctx, "availability-pricing/api/calendar/listings/"+m.ExternalID, params, guesty.GetOptions{})
	if err != nil {
		return 0, err
	}
	if !res.OK {
		return 0, fmt.Errorf("calendar pull %s: vendor returned %d", m.ExternalID, res.Status)
	}

	var envelope calendarEnvelope
	if err := json.Unmarshal(res.Body, &envelope); err != nil {
		return 0, err
	}

	count := 0
	for _, day := range envelope.Data.Days {
		if err := s.apply(ctx, m.ID, day); err != nil {
			s.logger.Warn("Skipping malformed calendar day",
				zap.String("listing", m.ExternalID), zap.String("date", day.Date), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// Apply upserts a single day from a raw vendor day document.
func (s *Service) Apply(ctx context.Context, listingID uint, raw json.RawMessage) error {
	var day remoteDay
	if err := json.Unmarshal(raw, &day); err != nil {
		return err
	}
	return s.apply(ctx, listingID, day)
}

func (s *Service) apply(ctx context.Context, listingID uint, day remoteDay) error {
	if _, err := time.Parse(DateLayout, day.Date); err != nil {
		return fmt.Errorf("bad calendar date %q: %w", day.Date, err)
	}

	row := Day{
		ListingID: listingID,
		Date:      day.Date,
		State:     day.Status,
		Price:     utils.ToFloat(day.Price),
		Currency:  day.Currency,
		Note:      day.Note,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"state", "price", "currency", "note", "updated_at",
		}),
	}).Create(&row).Error
}

// Block marks a range of nights with the given state, check-out exclusive.
// Reservations use it to reserve nights without waiting for the next pull.
func (s *Service) Block(ctx context.Context, listingID uint, checkIn, checkOut time.Time, state string) error {
	for d := dateOnly(checkIn); d.Before(dateOnly(checkOut)); d = d.AddDate(0, 0, 1) {
		row := Day{
			ListingID: listingID,
			Date:      d.Format(DateLayout),
			State:     state,
			UpdatedAt: time.Now(),
		}
		err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "listing_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// Search returns every listing whose local mirror fully covers the stay with
// available nights, check-out exclusive. A non-empty externalIDs set narrows
// the search to those listings. The price is the mean over the nights of
// the stay.
func (s *Service) Search(ctx context.Context, externalIDs []string, checkIn, checkOut time.Time) ([]Option, error) {
	nights := stayNights(checkIn, checkOut)
	if len(nights) == 0 {
		return nil, fmt.Errorf("check-out must be after check-in")
	}

	query := s.db.WithContext(ctx).Where("date IN ?", nights)
	if len(externalIDs) > 0 {
		var ids []uint
		err := s.db.WithContext(ctx).Model(&listing.Mapping{}).
			Where("external_id IN ?", externalIDs).
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			return nil, nil
		}
		query = query.Where("listing_id IN ?", ids)
	}

	var days []Day
	err := query.Order("listing_id, date").Find(&days).Error
	if err != nil {
		return nil, err
	}

	byListing := map[uint][]Day{}
	for _, d := range days {
		byListing[d.ListingID] = append(byListing[d.ListingID], d)
	}

	var options []Option
	for listingID, rows := range byListing {
		// A gap in the mirror disqualifies the listing outright.
		if len(rows) != len(nights) {
			continue
		}
		qualified := true
		total := 0.0
		currency := ""
		for _, row := range rows {
			if row.State != StateAvailable {
				qualified = false
				break
			}
			total += row.Price
			if currency == "" {
				currency = row.Currency
			}
		}
		if !qualified {
			continue
		}

		option := Option{
			ListingID: listingID,
			Nights:    len(nights),
			MeanPrice: total / float64(len(nights)),
			Currency:  currency,
		}
		var m listing.Mapping
		if err := s.db.WithContext(ctx).First(&m, listingID).Error; err == nil {
			option.ExternalID = m.ExternalID
			option.Name = m.Name
		}
		options = append(options, option)
	}
	return options, nil
}

// LiveCheck verifies against the vendor's live calendar that every night of
// the stay is still available, check-out exclusive. It refreshes the local
// mirror as a side effect.
func (s *Service) LiveCheck(ctx context.Context, m *listing.Mapping, checkIn, checkOut time.Time) error {
	lastNight := checkOut.AddDate(0, 0, -1)
	if _, err := s.PullRange(ctx, m, checkIn, lastNight); err != nil {
		return err
	}

	nights := stayNights(checkIn, checkOut)
	var available int64
	err := s.db.WithContext(ctx).Model(&Day{}).
		Where("listing_id = ? AND date IN ? AND state = ?", m.ID, nights, StateAvailable).
		Count(&available).Error
	if err != nil {
		return err
	}
	if available != int64(len(nights)) {
		return ErrDatesUnavailable
	}
	return nil
}

// stayNights lists the dates of a stay, check-in inclusive and check-out
// exclusive. Clock times are dropped so a late check-in or an early
// check-out never shifts the night count.
func stayNights(checkIn, checkOut time.Time) []string {
	var nights []string
	for d := dateOnly(checkIn); d.Before(dateOnly(checkOut)); d = d.AddDate(0, 0, 1) {
		nights = append(nights, d.Format(DateLayout))
	}
	return nights
}

// dateOnly truncates a timestamp to its calendar date.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
