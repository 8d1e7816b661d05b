package calendar

import (
	"context"
	"time"
)

// StateCount is one row of an occupancy report.
type StateCount struct {
	State  string `json:"state"`
	Nights int64  `json:"nights"`
}

// Occupancy summarizes the mirror for one listing over a date range, both
// bounds inclusive, as night counts per state.
func (s *Service) Occupancy(ctx context.Context, listingID uint, from, to time.Time) ([]StateCount, error) {
	var counts []StateCount
	err := s.db.WithContext(ctx).Raw(
		"SELECT state, COUNT(*) AS nights FROM calendar_days WHERE listing_id = ? AND date BETWEEN ? AND ? GROUP BY state ORDER BY state",
		listingID, from.Format(DateLayout), to.Format(DateLayout),
	).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
