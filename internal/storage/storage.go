package storage

import (
	"context"
	"io/fs"

	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// ErrNotFound is returned by LoadGlobe when nothing has been saved yet.
// Backends wrap fs.ErrNotExist, so errors.Is works across all of them.
var ErrNotFound = fs.ErrNotExist

// Backend is the interface all storage implementations must satisfy.
// It keeps the last good globe data so a view can be served when the
// content source is unreachable.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	LoadGlobe(ctx context.Context) (core.GlobeData, error)
	SaveGlobe(ctx context.Context, data core.GlobeData) error
}
