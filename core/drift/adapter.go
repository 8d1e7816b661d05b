package drift

import (
	"context"

	"pms-sync/core/guesty"

	"gorm.io/gorm"
)

// Adapter defines the interface for model-specific drift logic. Each
// adapter implements how to load and compare one entity type, such as
// reservations or listings.
type Adapter interface {
	// Name returns the unique name of this adapter (e.g. "reservation").
	Name() string

	// LoadLocalIndex loads all relevant local rows indexed by vendor id.
	// Rows that never had a vendor counterpart are skipped.
	// Implementations should use batch queries over minimal columns.
	LoadLocalIndex(ctx context.Context, db *gorm.DB) (map[string]LocalItem, error)

	// LoadRemoteIndex pulls all relevant vendor documents indexed by id.
	LoadRemoteIndex(ctx context.Context, client guesty.Client) (map[string]RemoteItem, error)

	// ResolveName returns the display name for an entity given available
	// local and/or remote items. Either item may be nil.
	ResolveName(local LocalItem, remote RemoteItem) string

	// CompareFields compares mapped fields between local and remote items
	// and returns a list of drift descriptions, each naming the field and
	// both values. Both items are guaranteed to be non-nil when called.
	CompareFields(local LocalItem, remote RemoteItem) []string
}
