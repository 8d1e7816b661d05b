package calendar

import (
	"time"
)

// Day states as reported by the vendor calendar.
const (
	StateAvailable   = "available"
	StateUnavailable = "unavailable"
	StateReserved    = "reserved"
	StateBooked      = "booked"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Day is one calendar cell for one listing. The listing/date pair is
// unique; pulls and webhooks upsert against it.
type Day struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ListingID uint    `gorm:"uniqueIndex:idx_listing_date" json:"listing_id"`
	Date      string  `gorm:"size:10;uniqueIndex:idx_listing_date" json:"date"`
	State     string  `gorm:"size:16;index" json:"state"`
	Price     float64 `json:"price"`
	Currency  string  `gorm:"size:8" json:"currency"`
	Note      string  `gorm:"size:255" json:"note"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (Day) TableName() string {
	return "calendar_days"
}

// Option is one qualifying listing returned by an availability search.
type Option struct {
	ListingID  uint    `json:"listing_id"`
	ExternalID string  `json:"external_id"`
	Name       string  `json:"name"`
	Nights     int     `json:"nights"`
	MeanPrice  float64 `json:"mean_price"`
	Currency   string  `json:"currency"`
}

// remoteDay is one day in the availability-pricing calendar response.
// Prices arrive as numbers or strings depending on the producing endpoint.
type remoteDay struct {
	Date     string `json:"date"`
	Status   string `json:"status"`
	Price    any    `json:"price"`
	Currency string `json:"currency"`
	Note     string `json:"note"`
}

// calendarEnvelope wraps the availability-pricing response body.
type calendarEnvelope struct {
	Data struct {
		Days []remoteDay `json:"days"`
	} `json:"data"`
}
