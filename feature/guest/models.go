package guest

import (
	"time"
)

// Contact is the local record for a person who booked a stay.
type Contact struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:255" json:"name"`
	Email     string `gorm:"size:255;index" json:"email"`
	Phone     string `gorm:"size:64" json:"phone"`
	City      string `gorm:"size:128" json:"city"`
	Country   string `gorm:"size:128" json:"country"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name.
func (Contact) TableName() string {
	return "guest_contacts"
}

// Mapping links a remote Guesty guest to a local contact.
type Mapping struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"size:64;uniqueIndex" json:"external_id"`
	ContactID  uint   `gorm:"index" json:"contact_id"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name.
func (Mapping) TableName() string {
	return "guest_mappings"
}

// remoteGuest is the subset of the vendor guest document the resolver reads.
type remoteGuest struct {
	ID        string `json:"_id"`
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Hometown  string `json:"hometown"`
}
