// Package metrics exposes Prometheus collectors for the sync pipeline.
//
// Counters cover the three stages of the flow: webhook intake, reservation
// reconciliation outcomes, and outbound vendor API calls. The gauge tracks
// the outbox backlog, which is the primary indicator of sync lag.
//
// Collectors are registered on the default registry and served from the
// /metrics route of the HTTP server.
package metrics
