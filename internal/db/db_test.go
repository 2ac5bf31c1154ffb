package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteSeedsNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := ConnectSQLite(path, true)
	require.NoError(t, err)

	var names []string
	require.NoError(t, db.Select(&names, "SELECT name FROM items ORDER BY id ASC"))
	assert.Equal(t, "Item One", names[0])
	assert.Len(t, names, 8)

	_, err = db.Exec("DELETE FROM items")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening an existing file must not seed again
	db, err = ConnectSQLite(path, true)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM items"))
	assert.Zero(t, count)
}

func TestConnectSQLiteMemory(t *testing.T) {
	t.Run("seeded", func(t *testing.T) {
		db, err := ConnectSQLite(MemoryPath, true)
		require.NoError(t, err)
		defer db.Close()

		var count int
		require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM items"))
		assert.Equal(t, 8, count)
	})

	t.Run("empty", func(t *testing.T) {
		db, err := ConnectSQLite(MemoryPath, false)
		require.NoError(t, err)
		defer db.Close()

		var count int
		require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM items"))
		assert.Zero(t, count)
	})
}

func TestConnectPostgresRequiresDSN(t *testing.T) {
	_, err := ConnectPostgres("", true)
	require.Error(t, err)
}
