// Package postgres implements the storage.Backend interface on PostgreSQL
// with PostGIS, reusing the GORM backend for reads and writes.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/joshuaberetta/cvglobe/internal/config"
	"github.com/joshuaberetta/cvglobe/internal/database"
	gormstorage "github.com/joshuaberetta/cvglobe/internal/storage/gorm"
)

// Backend implements storage.Backend using GORM/PostgreSQL.
type Backend struct {
	*gormstorage.Backend
	cfg     config.PostgresConfig
	log     zerolog.Logger
	manager *database.Manager
}

// New creates a Postgres backend. The connection is opened by Init.
func New(cfg config.PostgresConfig, log zerolog.Logger) *Backend {
	return &Backend{
		cfg: cfg,
		log: log,
	}
}

// Init connects, validates the connection and migrates the schema.
func (b *Backend) Init() error {
	b.manager = database.NewManager(b.log)
	if err := b.manager.ConnectPostgres(b.cfg); err != nil {
		return err
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:     b.manager.DB,
		Logger: b.log,
	})
	if err := b.Backend.Init(); err != nil {
		b.manager.Close()
		return fmt.Errorf("postgres backend: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.manager == nil {
		return nil
	}
	return b.manager.Close()
}
