// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend; the SQLite-specific concerns are restoring the
// last dump on start and dumping periodically and on close.
package sqlitestorage

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/joshuaberetta/cvglobe/internal/database"
	gormstorage "github.com/joshuaberetta/cvglobe/internal/storage/gorm"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      zerolog.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	dirty    bool
	mu       sync.Mutex
}

// New creates a new SQLite storage backend. The database is opened by Init.
func New(cfg Config, log zerolog.Logger) *Backend {
	return &Backend{
		cfg:      cfg,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Init opens the in-memory database, restores the last dump and starts the
// dump goroutine.
func (b *Backend) Init() error {
	db, err := database.OpenSQLite("")
	if err != nil {
		return fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	b.db = db
	b.Backend = gormstorage.New(gormstorage.Dependencies{DB: db, Logger: b.log})

	if err := b.Backend.Init(); err != nil {
		return err
	}

	if err := b.restore(); err != nil {
		b.log.Warn().Err(err).Str("path", b.cfg.DumpPath).Msg("Could not restore SQLite dump")
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.wg.Add(1)
		go b.dumpLoop()
	}

	return nil
}

// restore copies globe data from a previous dump into the in-memory DB.
func (b *Backend) restore() error {
	if b.cfg.DumpPath == "" {
		return nil
	}
	if _, err := os.Stat(b.cfg.DumpPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	disk, err := database.OpenSQLite(b.cfg.DumpPath)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := disk.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	ctx := context.Background()
	data, err := gormstorage.New(gormstorage.Dependencies{DB: disk, Logger: b.log}).LoadGlobe(ctx)
	if err != nil {
		return err
	}
	if err := b.Backend.SaveGlobe(ctx, data); err != nil {
		return err
	}
	b.log.Info().Int("locations", len(data.Locations)).Msg("Restored globe data from SQLite dump")
	return nil
}

// SaveGlobe saves to the in-memory DB and marks it for the next dump.
func (b *Backend) SaveGlobe(ctx context.Context, data core.GlobeData) error {
	if err := b.Backend.SaveGlobe(ctx, data); err != nil {
		return err
	}
	b.mu.Lock()
	b.dirty = true
	b.mu.Unlock()
	return nil
}

// Close stops the dump goroutine, writes a final dump and closes the DB.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	close(b.stopChan)
	b.wg.Wait()
	if b.cfg.DumpPath != "" {
		b.dump()
	}
	return b.Backend.Close()
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer b.wg.Done()
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			b.dump()
		}
	}
}

func (b *Backend) dump() {
	b.mu.Lock()
	dirty := b.dirty
	b.dirty = false
	b.mu.Unlock()
	if !dirty {
		return
	}

	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		b.log.Error().Err(err).Msg("Error dumping to disk")
		b.mu.Lock()
		b.dirty = true
		b.mu.Unlock()
		return
	}
	b.log.Debug().Dur("duration", time.Since(start)).Msg("Dumped to disk")
}
