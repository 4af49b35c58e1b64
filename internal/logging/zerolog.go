package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// NewZerolog builds the component logger used by the storage and metrics
// managers. Output goes to w, or stdout when w is nil.
func NewZerolog(w io.Writer, level, component string) zerolog.Logger {
	if w == nil {
		w = osStdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("component", component).
		Logger()
}

var (
	osStdout = os.Stdout
	osPipe   = os.Pipe
)
