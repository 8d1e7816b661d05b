// Package archive stores raw webhook payloads in object storage.
//
// Every inbound webhook is written as-is before any processing, giving an
// audit trail and a replay source for events that failed downstream. The
// archive is optional and best-effort: when disabled or failing, webhooks
// are still accepted and processed.
//
// # Layout
//
// Objects are named webhooks/{event}/{externalID}-{unix-nanos}.json, so a
// prefix listing per event name or per external id stays cheap.
//
// # Client Interface
//
// The Client interface abstracts the underlying MinIO/S3 provider, making it
// easy to mock storage interactions for unit testing (see archive/mocks).
package archive
