package storage_test

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuaberetta/cvglobe/internal/config"
	"github.com/joshuaberetta/cvglobe/internal/content"
	"github.com/joshuaberetta/cvglobe/internal/storage"
	"github.com/joshuaberetta/cvglobe/internal/storage/memory"
	"github.com/joshuaberetta/cvglobe/internal/storage/postgres"
	sqlitestorage "github.com/joshuaberetta/cvglobe/internal/storage/sqlite"
)

// Compile-time interface checks
var (
	_ storage.Backend = (*memory.Backend)(nil)
	_ storage.Backend = (*sqlitestorage.Backend)(nil)
	_ storage.Backend = (*postgres.Backend)(nil)
	_ content.Store   = storage.Backend(nil)
)

func TestNewBackend(t *testing.T) {
	log := zerolog.New(io.Discard)

	tests := []struct {
		typ     string
		want    any
		wantErr bool
	}{
		{"memory", &memory.Backend{}, false},
		{"sqlite", &sqlitestorage.Backend{}, false},
		{"postgres", &postgres.Backend{}, false},
		{"redis", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			b, err := storage.NewBackend(config.StorageConfig{Type: tt.typ}, log)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown storage type")
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, b)
		})
	}
}
