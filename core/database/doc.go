// Package database handles database connections.
//
// It provides a wrapper around GORM to properly configure MySQL connections
// based on the application's configuration, plus a pure-Go SQLite opener used
// by the test suites and local development.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
