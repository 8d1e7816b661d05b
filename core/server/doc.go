// Package server holds the HTTP server configuration.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structure for server settings: the listen port, the
// API key protecting the webhook and quoting endpoints, and the fallback
// timezone/country applied when vendor data is incomplete.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server
// settings and by the guest/reservation features to resolve fallbacks.
package server
