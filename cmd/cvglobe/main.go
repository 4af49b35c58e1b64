package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/joshuaberetta/cvglobe/internal/config"
	"github.com/joshuaberetta/cvglobe/internal/content"
	"github.com/joshuaberetta/cvglobe/internal/geo"
	"github.com/joshuaberetta/cvglobe/internal/influx"
	"github.com/joshuaberetta/cvglobe/internal/interaction"
	"github.com/joshuaberetta/cvglobe/internal/logging"
	"github.com/joshuaberetta/cvglobe/internal/monitor"
	intOtel "github.com/joshuaberetta/cvglobe/internal/otel"
	"github.com/joshuaberetta/cvglobe/internal/storage"
	"github.com/joshuaberetta/cvglobe/internal/stream"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	ServiceName string = "cvglobe"
)

func main() {
	configDir := pflag.StringP("config", "c", ".", "directory containing "+config.ConfigName)
	pflag.Parse()

	if err := run(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "cvglobe: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir string) error {
	sessionStart := time.Now()

	slogManager := logging.NewSlogManager()
	slogManager.Setup(nil, "info", nil)
	logger := slogManager.Logger()

	configLoaded := false
	if err := config.Load(configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		configLoaded = true
		logger.Info("Loaded config", "dir", configDir)
	}

	logLevel := viper.GetString("logLevel")
	logsDir := viper.GetString("logsDir")
	logFile, err := logging.OpenLogFile(logsDir, ServiceName, sessionStart)
	if err != nil {
		return err
	}
	defer logFile.Close()
	if removed, err := logging.PruneLogFiles(logsDir, ServiceName, viper.GetInt("logsKeep")); err != nil {
		logger.Warn("Failed to prune old log files", "error", err)
	} else if len(removed) > 0 {
		logger.Info("Pruned old log files", "count", len(removed))
	}
	logOut := io.MultiWriter(os.Stdout, logFile)

	// OTel provider writes its own records to the log file
	var otelProvider *intOtel.Provider
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		otelProvider, err = intOtel.New(context.Background(), intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			ServiceVersion: CurrentVersion,
			BatchTimeout:   otelCfg.BatchTimeout,
			LogWriter:      logFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			logger.Error("Failed to initialize OTel provider", "error", err)
			otelProvider = nil
		}
	}
	var otelLogProvider *sdklog.LoggerProvider
	if otelProvider != nil {
		otelLogProvider = otelProvider.LoggerProvider()
	}

	var sinks []io.Writer
	graylogCfg := config.GetGraylogConfig()
	if graylogCfg.Enabled {
		gelfWriter, err := gelf.NewWriter(graylogCfg.Address)
		if err != nil {
			logger.Error("Failed to connect to Graylog", "error", err, "address", graylogCfg.Address)
		} else {
			defer gelfWriter.Close()
			sinks = append(sinks, gelfWriter)
		}
	}

	slogManager.Setup(logOut, logLevel, otelLogProvider, sinks...)
	logger = slogManager.Logger()
	logger.Info("Logging to file", "path", logFile.Name(), "version", CurrentVersion, "buildDate", BuildDate)

	if configLoaded {
		config.Watch(func(file string) {
			slogManager.SetLevel(viper.GetString("logLevel"))
			slogManager.Logger().Info("Config changed", "file", file, "level", slogManager.Level().String())
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// storage is the last-known-good copy of the globe data
	var store content.Store
	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, logging.NewZerolog(logOut, logLevel, "storage"))
	if err != nil {
		logger.Error("Invalid storage configuration", "error", err)
	} else if err := backend.Init(); err != nil {
		logger.Error("Failed to initialize storage, continuing without it", "type", storageCfg.Type, "error", err)
		backend = nil
	} else {
		logger.Info("Storage initialized", "type", storageCfg.Type)
		store = backend
		defer func() {
			if err := backend.Close(); err != nil {
				logger.Error("Failed to close storage", "error", err)
			}
		}()
	}

	contentCfg := config.GetContentConfig()
	contentCtx := content.NewContext()
	loader := content.NewLoader(content.Sources{
		GlobeDataPath:   contentCfg.GlobeDataPath,
		GlobeDataURL:    contentCfg.GlobeDataURL,
		WorldPath:       contentCfg.WorldPath,
		RegionsPath:     contentCfg.RegionsPath,
		WorkHistoryPath: contentCfg.WorkHistoryPath,
	}, store, slogManager.Component("content"))

	if err := loader.Load(ctx, contentCtx); err != nil {
		logger.Error("Initial content load failed, serving empty scene", "error", err)
	}
	if contentCfg.ReloadInterval > 0 {
		go reloadLoop(ctx, loader, contentCtx, contentCfg.ReloadInterval, logger)
	}

	// frame metrics
	monitorDeps := monitor.Dependencies{
		Config:  config.GetMonitorConfig(),
		Content: contentCtx,
		Logger:  slogManager.Component("monitor"),
	}
	influxManager := influx.NewManager(logging.NewZerolog(logOut, logLevel, "influx"), config.GetInfluxConfig())
	if err := influxManager.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			logger.Error("Failed to set up InfluxDB", "error", err)
		}
	} else {
		monitorDeps.Influx = influxManager
		defer func() {
			if err := influxManager.Close(); err != nil {
				logger.Error("Failed to close InfluxDB", "error", err)
			}
		}()
	}

	serverCfg := config.GetServerConfig()
	globeCfg := config.GetGlobeConfig()
	view, err := viewConfig(serverCfg, globeCfg)
	if err != nil {
		return err
	}

	var streamServer *stream.Server
	monitorDeps.Sessions = func() int {
		if streamServer == nil {
			return 0
		}
		return streamServer.Sessions()
	}
	monitorService := monitor.NewService(monitorDeps)
	streamServer = stream.NewServer(view, contentCtx, slogManager.Component("stream"), stream.WithRecorder(monitorService))

	if err := monitorService.Start(ctx); err != nil {
		logger.Error("Failed to start monitor", "error", err)
	}

	slogManager.WithContext(func() []slog.Attr {
		status, _ := contentCtx.Status()
		return []slog.Attr{
			slog.String("content", string(status)),
			slog.Int("sessions", streamServer.Sessions()),
		}
	})
	logger = slogManager.Logger()

	gin.SetMode(serverCfg.Mode)
	a := &app{
		content:  contentCtx,
		stream:   streamServer,
		view:     view,
		recorder: monitorService,
		logger:   slogManager.Component("http"),
		now:      time.Now,
	}
	if contentCfg.GlobeDataURL != "" {
		a.upstream = content.NewClient(contentCfg.GlobeDataURL)
	}
	httpServer := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", serverCfg.Addr, "mode", view.Mode)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-serveErr:
		if err != nil {
			logger.Error("HTTP server failed", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := streamServer.Close(shutdownCtx); err != nil {
		logger.Warn("Sessions did not close in time", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	monitorService.Stop()

	if otelProvider != nil {
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error("OTel shutdown failed", "error", err)
		}
	}
	if err := slogManager.Flush(shutdownCtx); err != nil {
		logger.Error("Log flush failed", "error", err)
	}
	return nil
}

// viewConfig builds the per-session view settings.
func viewConfig(server config.ServerConfig, globe config.GlobeConfig) (stream.Config, error) {
	mode, err := geo.ParseMode(globe.DefaultMode)
	if err != nil {
		return stream.Config{}, fmt.Errorf("globe.defaultMode: %w", err)
	}
	height := globe.Height
	if mode == geo.Equirectangular {
		height = 0
	}
	return stream.Config{
		Controller:     controllerConfig(globe),
		Mode:           mode,
		Width:          globe.Width,
		Height:         height,
		FPS:            server.FPS,
		AllowedOrigins: server.AllowedOrigins,
	}, nil
}

func controllerConfig(g config.GlobeConfig) interaction.Config {
	cfg := interaction.DefaultConfig()
	cfg.Globe = geo.GlobeOptions{
		ScaleDivisor:  g.ScaleDivisor,
		Tilt:          g.Tilt,
		InitialLambda: g.InitialLambda,
	}
	cfg.SpinSpeed = g.SpinSpeed
	cfg.DragSensitivity = g.DragSensitivity
	cfg.MinPhi = g.MinPhi
	cfg.MaxPhi = g.MaxPhi
	cfg.FocusDuration = g.FocusDuration
	cfg.FocusLatOffset = g.FocusLatOffset
	cfg.AutoSpin = g.AutoSpin
	return cfg
}

func reloadLoop(ctx context.Context, loader *content.Loader, c *content.Context, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := loader.Load(ctx, c); err != nil {
				logger.Warn("Content reload failed, keeping previous data", "error", err)
			}
		}
	}
}
