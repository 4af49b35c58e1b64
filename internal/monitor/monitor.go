package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/joshuaberetta/cvglobe/internal/config"
	"github.com/joshuaberetta/cvglobe/internal/content"
	"github.com/joshuaberetta/cvglobe/internal/influx"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/queue"
)

// PointWriter is the part of influx.Manager the monitor uses.
type PointWriter interface {
	Bucket() string
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// StatusSource reports the content load state.
type StatusSource interface {
	Status() (content.Status, error)
	LoadedAt() time.Time
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Config   config.MonitorConfig
	Content  StatusSource
	Influx   PointWriter
	Sessions func() int
	Logger   *slog.Logger
}

// Status is the snapshot written to the status file after each flush.
type Status struct {
	Time           time.Time      `json:"time"`
	Frames         int            `json:"frames"`
	TotalFrames    uint64         `json:"totalFrames"`
	Dropped        uint64         `json:"dropped"`
	MeanDurationUs int64          `json:"meanDurationUs"`
	MaxDurationUs  int64          `json:"maxDurationUs"`
	Modes          map[string]int `json:"modes"`
	Sessions       int            `json:"sessions"`
	Content        string         `json:"content"`
	ContentError   string         `json:"contentError,omitempty"`
	LoadedAt       *time.Time     `json:"loadedAt,omitempty"`
}

// Service collects frame samples and flushes them periodically.
type Service struct {
	deps    Dependencies
	samples *queue.Queue[interaction.FrameSample]

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	doneChan  chan struct{}
	total     uint64
	last      Status
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Config.Interval <= 0 {
		deps.Config.Interval = 10 * time.Second
	}
	return &Service{
		deps:     deps,
		samples:  queue.NewBounded[interaction.FrameSample](deps.Config.MaxSamples),
		stopChan: make(chan struct{}),
	}
}

// RecordFrame implements interaction.FrameRecorder.
func (s *Service) RecordFrame(sample interaction.FrameSample) {
	s.samples.Push(sample)
}

// Pending returns the number of samples waiting for the next flush.
func (s *Service) Pending() int {
	return s.samples.Len()
}

// IsRunning returns whether the flush loop is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// LastStatus returns the status computed by the most recent flush.
func (s *Service) LastStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Flush drains the pending samples, writes them to InfluxDB when configured
// and rewrites the status file.
func (s *Service) Flush(ctx context.Context) Status {
	logger := s.deps.Logger
	samples := s.samples.Drain()
	now := time.Now()

	st := Status{
		Time:    now,
		Frames:  len(samples),
		Dropped: s.samples.Dropped(),
		Modes:   make(map[string]int),
		Content: "unknown",
	}

	var sum, max time.Duration
	for _, sample := range samples {
		sum += sample.Duration
		if sample.Duration > max {
			max = sample.Duration
		}
		st.Modes[string(sample.Mode)]++
	}
	var mean time.Duration
	if len(samples) > 0 {
		mean = sum / time.Duration(len(samples))
	}
	st.MeanDurationUs = mean.Microseconds()
	st.MaxDurationUs = max.Microseconds()

	if s.deps.Sessions != nil {
		st.Sessions = s.deps.Sessions()
	}
	if s.deps.Content != nil {
		status, err := s.deps.Content.Status()
		st.Content = string(status)
		if err != nil {
			st.ContentError = err.Error()
		}
		if at := s.deps.Content.LoadedAt(); !at.IsZero() {
			st.LoadedAt = &at
		}
	}

	s.mu.Lock()
	s.total += uint64(len(samples))
	st.TotalFrames = s.total
	s.last = st
	s.mu.Unlock()

	if s.deps.Influx != nil {
		bucket := s.deps.Influx.Bucket()
		for _, sample := range samples {
			if err := s.deps.Influx.WritePoint(ctx, bucket, influx.FramePoint(sample)); err != nil {
				logger.Error("Error writing frame point", "error", err)
				break
			}
		}
		summary := influx.SummaryPoint(now, st.Frames, st.Dropped, mean, max, st.Sessions)
		if err := s.deps.Influx.WritePoint(ctx, bucket, summary); err != nil {
			logger.Error("Error writing frame summary", "error", err)
		}
	}

	if path := s.deps.Config.StatusFile; path != "" {
		if err := writeStatusFile(path, st); err != nil {
			logger.Error("Error writing status file", "error", err, "path", path)
		}
	}

	logger.Debug("Flushed frame samples", "frames", st.Frames, "dropped", st.Dropped)
	return st
}

func writeStatusFile(path string, st Status) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Start starts the flush goroutine
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	stop, done := s.stopChan, s.doneChan
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(done)
		}()

		s.deps.Logger.Debug("Starting frame monitor", "interval", s.deps.Config.Interval)

		ticker := time.NewTicker(s.deps.Config.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				s.Flush(context.Background())
				return
			case <-ctx.Done():
				s.Flush(context.Background())
				return
			case <-ticker.C:
				s.Flush(ctx)
			}
		}
	}()

	return nil
}

// Stop stops the flush loop after a final flush.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	stop, done := s.stopChan, s.doneChan
	s.mu.Unlock()

	select {
	case <-stop:
	default:
		close(stop)
	}
	<-done
}
