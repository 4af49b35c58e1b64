package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Sources locates every document the content is built from. Empty entries
// are skipped.
type Sources struct {
	GlobeDataPath   string
	GlobeDataURL    string
	WorldPath       string
	RegionsPath     string
	WorkHistoryPath string
}

// Store persists the last good globe data.
type Store interface {
	LoadGlobe(ctx context.Context) (core.GlobeData, error)
	SaveGlobe(ctx context.Context, data core.GlobeData) error
}

// Loader fills a Context from Sources.
type Loader struct {
	sources Sources
	store   Store
	logger  *slog.Logger
}

// NewLoader creates a loader. store may be nil.
func NewLoader(sources Sources, store Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{sources: sources, store: store, logger: logger}
}

// Load reads every configured document into c. Outlines, regions and work
// history failures are logged and leave the previous values. A globe data
// failure falls back to the store; if that fails too the error is recorded
// on c and returned.
func (l *Loader) Load(ctx context.Context, c *Context) error {
	if l.sources.WorldPath != "" {
		countries, skipped, err := LoadWorldFile(l.sources.WorldPath)
		if err != nil {
			l.logger.Warn("world outlines unavailable", "path", l.sources.WorldPath, "error", err)
		} else {
			if len(skipped) > 0 {
				l.logger.Debug("skipped world features", "names", skipped)
			}
			c.SetCountries(countries)
		}
	}

	if l.sources.RegionsPath != "" {
		regions, err := LoadRegionsFile(l.sources.RegionsPath)
		if err != nil {
			l.logger.Warn("region table unavailable", "path", l.sources.RegionsPath, "error", err)
		} else {
			c.SetRegions(regions)
		}
	}

	if l.sources.WorkHistoryPath != "" {
		work, err := LoadWorkHistoryFile(l.sources.WorkHistoryPath)
		if err != nil {
			l.logger.Warn("work history unavailable", "path", l.sources.WorkHistoryPath, "error", err)
		} else {
			c.SetWorkHistory(work)
		}
	}

	data, err := LoadGlobeData(ctx, l.sources.GlobeDataPath, l.sources.GlobeDataURL)
	if err == nil {
		c.SetGlobeData(data)
		l.logger.Info("globe data loaded",
			"locations", len(data.Locations),
			"journeys", len(data.Journeys))
		if l.store != nil {
			if err := l.store.SaveGlobe(ctx, data); err != nil {
				l.logger.Warn("failed to persist globe data", "error", err)
			}
		}
		return nil
	}

	l.logger.Warn("globe data unavailable", "error", err)
	if l.store != nil {
		stored, storeErr := l.store.LoadGlobe(ctx)
		if storeErr == nil && !stored.Empty() {
			c.SetGlobeData(stored)
			l.logger.Info("globe data restored from storage",
				"locations", len(stored.Locations),
				"journeys", len(stored.Journeys))
			return nil
		}
		if storeErr != nil {
			err = errors.Join(err, fmt.Errorf("storage fallback: %w", storeErr))
		}
	}
	c.Fail(err)
	return err
}
