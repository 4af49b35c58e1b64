package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout swaps osStdout for a pipe until the returned func is called.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)
	orig := osStdout
	osStdout = w

	return func() string {
		_ = w.Close()
		osStdout = orig
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		_ = r.Close()
		return buf.String()
	}
}

func TestSetup_Destination(t *testing.T) {
	t.Run("log file", func(t *testing.T) {
		restore := captureStdout(t)
		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("globe data loaded", "locations", 42)

		assert.Empty(t, restore())
		assert.Contains(t, file.String(), "locations=42")
		assert.Contains(t, file.String(), "Logging initialized")
	})

	t.Run("stdout", func(t *testing.T) {
		restore := captureStdout(t)
		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("listening", "addr", ":8080")

		assert.Contains(t, restore(), "addr=:8080")
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "INFO", wantInfo: true, wantWarn: true},
		{level: "warn", wantWarn: true},
		{level: "error"},
		{level: "bogus", wantInfo: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)

			m.Logger().Debug("frame tick")
			m.Logger().Info("session started")
			m.Logger().Warn("send channel full")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains([]byte(out), []byte("frame tick")))
			assert.Equal(t, tt.wantInfo, bytes.Contains([]byte(out), []byte("session started")))
			assert.Equal(t, tt.wantWarn, bytes.Contains([]byte(out), []byte("send channel full")))
		})
	}
}

func TestSetup_Reconfigure(t *testing.T) {
	var early, late bytes.Buffer
	m := NewSlogManager()

	m.Setup(&early, "info", nil)
	m.Logger().Info("before config")
	m.Setup(&late, "info", nil)
	m.Logger().Info("after config")

	assert.Contains(t, early.String(), "before config")
	assert.NotContains(t, early.String(), "after config")
	assert.Contains(t, late.String(), "after config")
}

func TestSetup_SinksReceiveJSON(t *testing.T) {
	var file, sink bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, &sink, nil)

	m.Logger().Info("to graylog", "mode", "orthographic")

	assert.Contains(t, file.String(), "to graylog")
	assert.Contains(t, sink.String(), `"msg":"to graylog"`)
	assert.Contains(t, sink.String(), `"mode":"orthographic"`)
}

func TestSetup_OTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", provider)
	m.Logger().Info("bridged")

	assert.Contains(t, buf.String(), "bridged")
	assert.NoError(t, m.Flush(context.Background()))
}

type failingExporter struct{ err error }

func (e failingExporter) Export(context.Context, []sdklog.Record) error { return nil }
func (e failingExporter) Shutdown(context.Context) error { return nil }
func (e failingExporter) ForceFlush(context.Context) error { return e.err }

func TestFlush_ReturnsExporterError(t *testing.T) {
	flushErr := errors.New("collector unreachable")
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(failingExporter{err: flushErr})),
	)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m := NewSlogManager()
	m.Setup(&bytes.Buffer{}, "info", provider)

	assert.ErrorIs(t, m.Flush(context.Background()), flushErr)
	assert.NoError(t, NewSlogManager().Flush(context.Background()))
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
}

func TestWithContext_AddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)
	m.WithContext(func() []slog.Attr {
		return []slog.Attr{slog.Int("sessions", 3)}
	})

	m.Logger().InfoContext(ContextWith(context.Background(), slog.String("session", "s7")), "tick")

	assert.Contains(t, buf.String(), "sessions=3")
	assert.Contains(t, buf.String(), "session=s7")
}

func TestComponent_TagsRecords(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	m.Component("stream").Info("session opened")

	assert.Contains(t, buf.String(), "component=stream")
}

func TestParseLevel(t *testing.T) {
	for input, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"Info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"info+2":  slog.LevelInfo + 2,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	} {
		assert.Equal(t, want, parseLevel(input), input)
	}
}

func TestSetLevel_AppliesToExistingLogger(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "warn", nil)
	logger := m.Logger()

	logger.Debug("frame skipped")
	assert.NotContains(t, buf.String(), "frame skipped")

	m.SetLevel("debug")
	assert.Equal(t, slog.LevelDebug, m.Level())
	logger.Debug("frame skipped")
	assert.Contains(t, buf.String(), "frame skipped")
}
