package stream

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/joshuaberetta/cvglobe/internal/geo"
)

// MaxViewport bounds the width and height a client may request.
const MaxViewport = 8192

// ApplyViewport overrides cfg's mode and size from the mode, width and
// height query parameters. Missing parameters keep the configured values.
func ApplyViewport(cfg *Config, q url.Values) error {
	if m := q.Get("mode"); m != "" {
		mode, err := geo.ParseMode(m)
		if err != nil {
			return err
		}
		cfg.Mode = mode
		if mode == geo.Equirectangular && q.Get("height") == "" {
			cfg.Height = 0
		}
	}
	if w := q.Get("width"); w != "" {
		v, err := parseDimension("width", w)
		if err != nil {
			return err
		}
		cfg.Width = v
	}
	if h := q.Get("height"); h != "" {
		v, err := parseDimension("height", h)
		if err != nil {
			return err
		}
		cfg.Height = v
	}
	return nil
}

func parseDimension(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if v <= 0 || v > MaxViewport {
		return 0, fmt.Errorf("invalid %s %q: must be in (0, %d]", name, raw, MaxViewport)
	}
	return v, nil
}
