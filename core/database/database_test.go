package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid Connection", func(t *testing.T) {
		cfg := Config{
			Host:     "localhost",
			Port:     9999, // Unused port
			User:     "root",
			Password: "wrongpassword",
			Name:     "pms",
		}

		// Connect should fail (timeout or refused).
		db, err := Connect(cfg)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestOpenSQLite(t *testing.T) {
	db, err := OpenSQLite("file::memory:?cache=shared")
	require.NoError(t, err)
	require.NotNil(t, db)

	var one int
	err = db.Raw("SELECT 1").Scan(&one).Error
	require.NoError(t, err)
	assert.Equal(t, 1, one)
}
