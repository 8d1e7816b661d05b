package reservation

import (
	"encoding/json"
	"fmt"
	"time"
)

// RemoteTimeLayout is the prefix of the vendor's timestamp format. Vendor
// timestamps carry fractional seconds and offsets in varying shapes; only
// the first nineteen characters are stable.
const RemoteTimeLayout = "2006-01-02T15:04:05"

// Origin tells the sync layer which side initiated a change.
type Origin int

const (
	// OriginLocal marks changes made by local users; they are pushed out.
	OriginLocal Origin = iota
	// OriginRemote marks changes mirrored from the vendor; pushing them
	// back would echo the vendor's own update at it.
	OriginRemote
)

// Scope carries the actor context a sync operation runs under.
type Scope struct {
	AccountID  string
	ActingUser string
	Origin     Origin
}

// Record is the local reservation row. ExternalID is nullable so locally
// created reservations exist before their first push, and unique so a
// remote reservation never maps to two rows.
type Record struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ExternalID        *string    `gorm:"size:64;uniqueIndex" json:"external_id"`
	ListingID         uint       `gorm:"index" json:"listing_id"`
	ContactID         uint       `gorm:"index" json:"contact_id"`
	AccountID         string     `gorm:"size:64" json:"account_id"`
	Status            string     `gorm:"size:16;index" json:"status"`
	ConfirmationCode  string     `gorm:"size:64" json:"confirmation_code"`
	CheckIn           time.Time  `json:"check_in"`
	CheckOut          time.Time  `json:"check_out"`
	NightsCount       int        `json:"nights_count"`
	FareAccommodation float64    `json:"fare_accommodation"`
	FareCleaning      float64    `json:"fare_cleaning"`
	Currency          string     `gorm:"size:8" json:"currency"`
	Source            string     `gorm:"size:64" json:"source"`
	RemoteUpdatedAt   *time.Time `json:"remote_updated_at"`
	PendingPush       bool       `gorm:"index" json:"pending_push"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName overrides the default table name.
func (Record) TableName() string {
	return "reservations"
}

// Transaction statuses.
const (
	TxDraft     = "draft"
	TxConfirmed = "confirmed"
	TxCanceled  = "canceled"
)

// Sale line kinds.
const (
	LineAccommodation = "accommodation"
	LineCleaning      = "cleaning"
)

// SaleTransaction is the billing document derived from a reservation.
// Each reservation carries at most one.
type SaleTransaction struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	ReservationID uint    `gorm:"uniqueIndex" json:"reservation_id"`
	Reference     string  `gorm:"size:64" json:"reference"`
	Status        string  `gorm:"size:16" json:"status"`
	Currency      string  `gorm:"size:8" json:"currency"`
	Total         float64 `json:"total"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name.
func (SaleTransaction) TableName() string {
	return "sale_transactions"
}

// SaleLine is one billed item of a sale transaction.
type SaleLine struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TransactionID uint    `gorm:"index" json:"transaction_id"`
	Kind          string  `gorm:"size:16" json:"kind"`
	Description   string  `gorm:"size:255" json:"description"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	CreatedAt     time.Time
}

// TableName overrides the default table name.
func (SaleLine) TableName() string {
	return "sale_lines"
}

// Invoice item types the vendor tags money lines with. Anything else is
// ignored.
const (
	ItemAccommodationFare = "ACCOMMODATION_FARE"
	ItemCleaningFee       = "CLEANING_FEE"
)

// invoiceItem is one itemized money line of a vendor reservation. Amounts
// arrive as numbers or strings depending on the producing endpoint.
type invoiceItem struct {
	Type   string `json:"type"`
	Amount any    `json:"amount"`
}

// remoteReservation is the subset of the vendor reservation document the
// reconciler reads.
type remoteReservation struct {
	ID               string `json:"_id"`
	ListingID        string `json:"listingId"`
	GuestID          string `json:"guestId"`
	AccountID        string `json:"accountId"`
	Status           string `json:"status"`
	ConfirmationCode any    `json:"confirmationCode"`
	CheckIn          string `json:"checkIn"`
	CheckOut         string `json:"checkOut"`
	NightsCount      any    `json:"nightsCount"`
	LastUpdatedAt    string `json:"lastUpdatedAt"`
	Source           string `json:"source"`
	Money            struct {
		InvoiceItems []invoiceItem `json:"invoiceItems"`
		Currency     string        `json:"currency"`
	} `json:"money"`
}

// reservationEvent is the webhook envelope.
type reservationEvent struct {
	Event       string          `json:"event"`
	Reservation json.RawMessage `json:"reservation"`
}

// parseRemoteTime parses a vendor timestamp, tolerating fractional seconds
// and offset suffixes by reading only the stable prefix.
func parseRemoteTime(s string) (time.Time, error) {
	if len(s) < len(RemoteTimeLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q is too short", s)
	}
	return time.Parse(RemoteTimeLayout, s[:len(RemoteTimeLayout)])
}
