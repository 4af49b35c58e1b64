// Package memory keeps globe data in memory and mirrors it to a JSON file.
package memory

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joshuaberetta/cvglobe/internal/config"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

const baseName = "globe-data.json"

// Backend stores globe data in memory and exports it to JSON
type Backend struct {
	cfg  config.MemoryConfig
	data *core.GlobeData
	mu   sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Path returns the file the backend mirrors to.
func (b *Backend) Path() string {
	name := baseName
	if b.cfg.CompressOutput {
		name += ".gz"
	}
	return filepath.Join(b.cfg.OutputDir, name)
}

// Init reads a previously exported file, if any.
func (b *Backend) Init() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	data, err := b.readFile()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = &data
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// LoadGlobe returns the last saved globe data.
func (b *Backend) LoadGlobe(ctx context.Context) (core.GlobeData, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return core.GlobeData{}, fmt.Errorf("memory backend: %w", fs.ErrNotExist)
	}
	return *b.data, nil
}

// SaveGlobe keeps data in memory and, when an output directory is set,
// writes it to disk.
func (b *Backend) SaveGlobe(ctx context.Context, data core.GlobeData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = &data

	if b.cfg.OutputDir == "" {
		return nil
	}
	return b.writeFile(data)
}

func (b *Backend) readFile() (core.GlobeData, error) {
	f, err := os.Open(b.Path())
	if err != nil {
		return core.GlobeData{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if b.cfg.CompressOutput {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return core.GlobeData{}, fmt.Errorf("failed to open gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var data core.GlobeData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return core.GlobeData{}, fmt.Errorf("failed to decode %s: %w", b.Path(), err)
	}
	return data, nil
}

// writeFile writes to a temporary file and renames it over the target.
func (b *Backend) writeFile(data core.GlobeData) error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.CreateTemp(b.cfg.OutputDir, baseName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	var w io.Writer = f
	var gz *gzip.Writer
	if b.cfg.CompressOutput {
		gz = gzip.NewWriter(f)
		w = gz
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode globe data: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return fmt.Errorf("failed to flush gzip writer: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return os.Rename(tmp, b.Path())
}
