package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joshuaberetta/cvglobe/internal/content"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/scene"
	"github.com/joshuaberetta/cvglobe/internal/stream"
	"github.com/joshuaberetta/cvglobe/internal/timeline"
	"github.com/joshuaberetta/cvglobe/pkg/core"
)

// upstreamChecker reports whether the remote globe data document is reachable.
type upstreamChecker interface {
	Healthcheck(ctx context.Context) error
}

// app holds what the HTTP handlers need. upstream is nil when globe data
// comes from a local file.
type app struct {
	content  *content.Context
	upstream upstreamChecker
	stream   *stream.Server
	view     stream.Config
	recorder interaction.FrameRecorder
	logger   *slog.Logger
	now      func() time.Time
}

func (a *app) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	r.GET("/healthcheck", a.healthcheck)
	r.GET("/ws", gin.WrapH(a.stream))

	api := r.Group("/api")
	api.GET("/scene", a.scene)
	api.GET("/timeline", a.timeline)
	api.GET("/globe", a.globe)

	return r
}

func (a *app) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (a *app) healthcheck(c *gin.Context) {
	status, err := a.content.Status()
	body := gin.H{
		"content":  status,
		"sessions": a.stream.Sessions(),
	}
	if at := a.content.LoadedAt(); !at.IsZero() {
		body["loadedAt"] = at
	}
	if err != nil {
		body["error"] = err.Error()
	}
	if a.upstream != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if uerr := a.upstream.Healthcheck(ctx); uerr != nil {
			a.logger.Warn("Globe data upstream unreachable", "error", uerr)
			body["upstream"] = uerr.Error()
		} else {
			body["upstream"] = "ok"
		}
	}

	code := http.StatusOK
	if status != content.StatusReady {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

// scene composes a single static frame for the requested viewport. The types
// query parameter is a comma separated location type filter.
func (a *app) scene(c *gin.Context) {
	cfg := a.view
	if err := stream.ApplyViewport(&cfg, c.Request.URL.Query()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrlCfg := cfg.Controller
	ctrlCfg.AutoSpin = false
	var opts []interaction.Option
	opts = append(opts, interaction.WithLogger(a.logger))
	if a.recorder != nil {
		opts = append(opts, interaction.WithRecorder(a.recorder))
	}
	ctrl := interaction.New(ctrlCfg, cfg.Mode, cfg.Width, cfg.Height, a.content, opts...)

	if raw := c.Query("types"); raw != "" {
		var f scene.Filter
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Types = append(f.Types, core.LocationType(t))
			}
		}
		ctrl.SetFilter(f)
	}

	c.JSON(http.StatusOK, ctrl.Scene())
}

func (a *app) timeline(c *gin.Context) {
	chart, err := timeline.Layout(a.content.WorkHistory(), a.now())
	if err != nil {
		a.logger.Error("Failed to lay out timeline", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chart)
}

func (a *app) globe(c *gin.Context) {
	c.JSON(http.StatusOK, a.content.GlobeData())
}
