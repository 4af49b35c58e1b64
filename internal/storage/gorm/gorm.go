// Package gormstorage implements the storage.Backend interface on any GORM
// dialect. Each SaveGlobe replaces the stored locations and journeys in one
// transaction and records a content revision.
package gormstorage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/database"
	"github.com/joshuaberetta/cvglobe/internal/model"
	"github.com/joshuaberetta/cvglobe/internal/model/convert"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Backend implements storage.Backend using GORM.
type Backend struct {
	deps      Dependencies
	manager   *database.Manager
	revisions *cache.RecordCache
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:      deps,
		revisions: cache.NewRecordCache(),
	}
}

// Init runs schema migration.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend: no database")
	}
	b.manager = database.NewManager(b.deps.Logger)
	b.manager.DB = b.deps.DB
	if err := b.manager.Setup(); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.revisions.Reset()
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.deps.DB == nil {
		return nil
	}
	sqlDB, err := b.deps.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Checksum returns a stable hex digest of the globe data.
func Checksum(data core.GlobeData) string {
	raw, _ := json.Marshal(data)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// SaveGlobe replaces the stored content. Saving content identical to the
// latest revision is a no-op.
func (b *Backend) SaveGlobe(ctx context.Context, data core.GlobeData) error {
	sum := Checksum(data)
	if _, ok := b.revisions.Get(sum); ok {
		b.deps.Logger.Debug().Str("checksum", sum).Msg("Globe data unchanged, skipping save")
		return nil
	}

	index := cache.NewLocationIndex(data.Locations)
	locations := make([]model.Location, 0, len(data.Locations))
	for i, l := range data.Locations {
		locations = append(locations, convert.CoreToLocation(l, i))
	}
	journeys := make([]model.Journey, 0, len(data.Journeys))
	for i, j := range data.Journeys {
		journeys = append(journeys, convert.CoreToJourney(j, i, index))
	}

	rev := model.ContentRevision{
		Locations: len(locations),
		Journeys:  len(journeys),
		Checksum:  sum,
	}

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rev).Error; err != nil {
			return fmt.Errorf("creating revision: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Journey{}).Error; err != nil {
			return fmt.Errorf("clearing journeys: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Location{}).Error; err != nil {
			return fmt.Errorf("clearing locations: %w", err)
		}
		for i := range locations {
			locations[i].RevisionID = rev.ID
		}
		for i := range journeys {
			journeys[i].RevisionID = rev.ID
		}
		if len(locations) > 0 {
			if err := tx.Create(&locations).Error; err != nil {
				return fmt.Errorf("inserting locations: %w", err)
			}
		}
		if len(journeys) > 0 {
			if err := tx.Create(&journeys).Error; err != nil {
				return fmt.Errorf("inserting journeys: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.revisions.Reset()
	b.revisions.Set(sum, rev.ID)
	b.deps.Logger.Info().
		Uint("revision", rev.ID).
		Int("locations", rev.Locations).
		Int("journeys", rev.Journeys).
		Msg("Globe data saved")
	return nil
}

// LoadGlobe returns the stored content in its saved order.
func (b *Backend) LoadGlobe(ctx context.Context) (core.GlobeData, error) {
	db := b.deps.DB.WithContext(ctx)

	var rev model.ContentRevision
	if err := db.Order("id desc").First(&rev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return core.GlobeData{}, fmt.Errorf("gorm backend: %w", fs.ErrNotExist)
		}
		return core.GlobeData{}, fmt.Errorf("loading revision: %w", err)
	}

	var locations []model.Location
	if err := db.Order("sort_order").Find(&locations).Error; err != nil {
		return core.GlobeData{}, fmt.Errorf("loading locations: %w", err)
	}
	var journeys []model.Journey
	if err := db.Order("sort_order").Find(&journeys).Error; err != nil {
		return core.GlobeData{}, fmt.Errorf("loading journeys: %w", err)
	}

	data := core.GlobeData{
		Locations: make([]core.Location, 0, len(locations)),
		Journeys:  make([]core.Journey, 0, len(journeys)),
	}
	for _, l := range locations {
		data.Locations = append(data.Locations, convert.LocationToCore(l))
	}
	for _, j := range journeys {
		data.Journeys = append(data.Journeys, convert.JourneyToCore(j))
	}

	b.revisions.Set(rev.Checksum, rev.ID)
	return data, nil
}
