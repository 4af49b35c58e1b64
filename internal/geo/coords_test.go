package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidLonLat(t *testing.T) {
	assert.True(t, ValidLonLat(180, -90))
	assert.False(t, ValidLonLat(180.1, 0))
	assert.False(t, ValidLonLat(0, -90.5))
	assert.False(t, ValidLonLat(math.NaN(), 0))
}

func TestPoint3857From4326(t *testing.T) {
	p, err := Point3857From4326(0, 0)
	require.NoError(t, err)
	c, ok := p.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0, c.X, 1e-6)
	assert.InDelta(t, 0, c.Y, 1e-6)

	p, err = Point3857From4326(180, 0)
	require.NoError(t, err)
	c, _ = p.Coordinates()
	assert.InDelta(t, 20037508.34, c.X, 0.01)
}

func TestPoint3857From4326_Invalid(t *testing.T) {
	_, err := Point3857From4326(0, 91)
	assert.ErrorIs(t, err, ErrInvalidCoordinates)
}
