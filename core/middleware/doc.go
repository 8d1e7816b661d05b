// Package middleware holds the Fiber middleware shared by every route.
//
// Two concerns live here:
//
//   - auth validates the X-API-Key header; webhook and API routes are
//     registered behind it.
//   - rayid tags every request with a ray id so a webhook, the commands
//     it queues, and the worker's log lines can be correlated.
//
// Both are registered once in the server command, ahead of the feature
// routes.
package middleware
