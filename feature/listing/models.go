package listing

import (
	"time"
)

// Mapping links a remote Guesty listing to the local property catalog.
type Mapping struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ExternalID string `gorm:"size:64;uniqueIndex" json:"external_id"`
	AccountID  string `gorm:"size:64;index" json:"account_id"`
	Name       string `gorm:"size:255" json:"name"`
	Nickname   string `gorm:"size:255" json:"nickname"`
	Timezone   string `gorm:"size:64" json:"timezone"`
	Currency   string `gorm:"size:8" json:"currency"`
	Active     bool   `json:"active"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName overrides the default table name.
func (Mapping) TableName() string {
	return "listing_mappings"
}

// remoteListing is the subset of the vendor listing document the mapping needs.
type remoteListing struct {
	ID        string `json:"_id"`
	AccountID string `json:"accountId"`
	Title     string `json:"title"`
	Nickname  string `json:"nickname"`
	Timezone  string `json:"timezone"`
	Active    bool   `json:"active"`
	Prices    struct {
		Currency string `json:"currency"`
	} `json:"prices"`
}
