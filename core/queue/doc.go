// Package queue implements the typed command queue of the sync core.
//
// The reconciliation core never calls a scheduler directly. Instead it emits
// Commands ({operation, target id, payload, delay}) into an outbox table;
// the worker process executes them. This keeps every webhook handler and
// service returning quickly and makes the core's side effects observable as
// rows rather than as goroutines.
//
// # Delivery model
//
// At-least-once with no ordering guarantee between two commands for the same
// target; the reservation reconciler's freshness check arbitrates concurrent
// deliveries. Failed commands are retried with exponential backoff up to
// MaxAttempts, then parked as failed.
//
// # Broker relay
//
// For multi-host deployments the optional RabbitMQ broker relays outbox rows
// to a durable queue with manual acknowledgements. The outbox table remains
// the source of truth either way.
package queue
