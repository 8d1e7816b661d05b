package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens a SQLite database through the pure-Go modernc driver.
// It backs local development and the feature test suites, where spinning
// up MySQL is not worth it.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(
		sqlite.New(sqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
}
