package content

import (
	"sync"
	"time"

	"github.com/joshuaberetta/cvglobe/internal/cache"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/scene"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// Status reports where the content is in its load cycle.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Context holds the content every view session draws. Until the first
// successful load it serves empty data, which composes to an empty scene.
type Context struct {
	mu        sync.RWMutex
	data      core.GlobeData
	index     *cache.LocationIndex
	countries []scene.Country
	regions   scene.RegionTable
	work      []core.WorkInterval
	status    Status
	lastErr   error
	loadedAt  time.Time
}

// NewContext creates a Context in the loading state.
func NewContext() *Context {
	return &Context{
		index:  cache.NewLocationIndex(nil),
		status: StatusLoading,
	}
}

// Content implements interaction.ContentSource.
func (c *Context) Content() interaction.Content {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return interaction.Content{
		Data:      c.data,
		Index:     c.index,
		Countries: c.countries,
		Regions:   c.regions,
	}
}

// GlobeData returns the current locations and journeys.
func (c *Context) GlobeData() core.GlobeData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// WorkHistory returns the intervals the timeline is laid out from.
func (c *Context) WorkHistory() []core.WorkInterval {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.work
}

// Status returns the load status and the last load error, if any.
func (c *Context) Status() (Status, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status, c.lastErr
}

// LoadedAt returns when globe data was last replaced.
func (c *Context) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

// SetGlobeData replaces locations and journeys and marks the content ready.
// Indexes handed out by earlier Content calls keep the data they were built
// from, so a frame composed mid-reload stays consistent.
func (c *Context) SetGlobeData(data core.GlobeData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.index = cache.NewLocationIndex(data.Locations)
	c.status = StatusReady
	c.lastErr = nil
	c.loadedAt = time.Now()
}

// SetCountries replaces the world outlines.
func (c *Context) SetCountries(countries []scene.Country) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.countries = countries
}

// SetRegions replaces the country to region table.
func (c *Context) SetRegions(regions scene.RegionTable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions = regions
}

// SetWorkHistory replaces the timeline intervals.
func (c *Context) SetWorkHistory(work []core.WorkInterval) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.work = work
}

// Fail records a load failure. Previously loaded data stays in place.
func (c *Context) Fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if c.status != StatusReady {
		c.status = StatusFailed
	}
}
