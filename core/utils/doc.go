// Package utils provides common utility functions for the pms-sync application.
// It holds the loose-JSON coercion helpers used when decoding vendor payloads,
// whose field types are not stable across endpoints.
package utils
