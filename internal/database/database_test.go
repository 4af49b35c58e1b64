package database

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaberetta/cvglobe/internal/config"
	"github.com/joshuaberetta/cvglobe/internal/model"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.PostgresConfig{
		Host:     "db",
		Port:     "5433",
		Username: "cv",
		Password: "secret",
		Database: "cvglobe",
	})
	assert.Equal(t, "host=db port=5433 user=cv password=secret dbname=cvglobe sslmode=disable", dsn)
}

func TestManager_SQLiteSetupAndDump(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(zerolog.New(io.Discard))

	require.NoError(t, m.ConnectSQLite(filepath.Join(dir, "live.db")))
	t.Cleanup(func() { m.Close() })
	assert.True(t, m.IsValid)

	require.NoError(t, m.Setup())
	assert.True(t, m.DB.Migrator().HasTable(&model.Location{}))
	assert.True(t, m.DB.Migrator().HasTable(&model.Journey{}))

	dump := filepath.Join(dir, "dump.db")
	require.NoError(t, m.DumpToDisk(dump))
	info, err := os.Stat(dump)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	// a second dump replaces the first
	require.NoError(t, m.DumpToDisk(dump))
}

func TestManager_SetupWithoutConnection(t *testing.T) {
	m := NewManager(zerolog.New(io.Discard))
	assert.Error(t, m.Setup())
	assert.NoError(t, m.Close())
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := OpenSQLite("")
	require.NoError(t, err)

	err = DumpMemoryDBToDisk(db, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not set")
}
