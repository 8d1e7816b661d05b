package drift

import "time"

// Result is the drift finding for a single entity.
type Result struct {
	// ID is the unique identifier for the entity, the vendor id.
	ID string `json:"id"`

	// Name is the display name of the entity.
	Name string `json:"name"`

	// LocalPresent indicates whether the entity exists in the local store.
	LocalPresent bool `json:"local_present"`

	// RemotePresent indicates whether the entity exists on the vendor.
	RemotePresent bool `json:"remote_present"`

	// Mismatch contains descriptions of field drift between local and
	// remote, e.g. "status: remote=confirmed local=reserved".
	Mismatch []string `json:"mismatch"`
}

// Drifted reports whether the result represents any divergence.
func (r *Result) Drifted() bool {
	return !r.LocalPresent || !r.RemotePresent || len(r.Mismatch) > 0
}

// Summary provides aggregate counts for a drift report.
type Summary struct {
	// TotalItems is the total number of unique entities.
	TotalItems int `json:"total_items"`

	// MissingLocal counts entities present on the vendor only.
	MissingLocal int `json:"missing_local"`

	// MissingRemote counts entities present locally only.
	MissingRemote int `json:"missing_remote"`

	// Mismatches counts entities with field drift.
	Mismatches int `json:"mismatches"`
}

// Report bundles drift results with their summary.
type Report struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

// Spec defines the configuration for a drift run.
type Spec struct {
	// Adapter provides model-specific drift logic.
	Adapter Adapter

	// CacheTTL is the time-to-live for cached indices.
	// If zero, caching is disabled.
	CacheTTL time.Duration
}

// CacheKey returns a unique key for caching based on spec parameters.
func (s *Spec) CacheKey() string {
	return s.Adapter.Name()
}

// LocalItem represents a local entity with arbitrary fields.
// Adapters define the concrete type.
type LocalItem any

// RemoteItem represents a vendor entity with arbitrary fields.
// Adapters define the concrete type.
type RemoteItem any
