package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConfigName is the configuration file looked up in the config directory.
const ConfigName = "cvglobe.cfg.json"

// ServerConfig holds the HTTP/WebSocket listener settings
type ServerConfig struct {
	Addr           string   `json:"addr" mapstructure:"addr"`
	FPS            int      `json:"fps" mapstructure:"fps"`
	AllowedOrigins []string `json:"allowedOrigins" mapstructure:"allowedOrigins"`
	Mode           string   `json:"mode" mapstructure:"mode"`
}

// GlobeConfig holds projection and interaction tuning
type GlobeConfig struct {
	DefaultMode     string        `json:"defaultMode" mapstructure:"defaultMode"`
	Width           float64       `json:"width" mapstructure:"width"`
	Height          float64       `json:"height" mapstructure:"height"`
	ScaleDivisor    float64       `json:"scaleDivisor" mapstructure:"scaleDivisor"`
	Tilt            float64       `json:"tilt" mapstructure:"tilt"`
	InitialLambda   float64       `json:"initialLambda" mapstructure:"initialLambda"`
	SpinSpeed       float64       `json:"spinSpeed" mapstructure:"spinSpeed"`
	DragSensitivity float64       `json:"dragSensitivity" mapstructure:"dragSensitivity"`
	MinPhi          float64       `json:"minPhi" mapstructure:"minPhi"`
	MaxPhi          float64       `json:"maxPhi" mapstructure:"maxPhi"`
	FocusDuration   time.Duration `json:"focusDuration" mapstructure:"focusDuration"`
	FocusLatOffset  float64       `json:"focusLatOffset" mapstructure:"focusLatOffset"`
	AutoSpin        bool          `json:"autoSpin" mapstructure:"autoSpin"`
}

// ContentConfig locates the documents the views draw
type ContentConfig struct {
	GlobeDataPath   string        `json:"globeDataPath" mapstructure:"globeDataPath"`
	GlobeDataURL    string        `json:"globeDataUrl" mapstructure:"globeDataUrl"`
	WorldPath       string        `json:"worldPath" mapstructure:"worldPath"`
	RegionsPath     string        `json:"regionsPath" mapstructure:"regionsPath"`
	WorkHistoryPath string        `json:"workHistoryPath" mapstructure:"workHistoryPath"`
	ReloadInterval  time.Duration `json:"reloadInterval" mapstructure:"reloadInterval"`
}

// MemoryConfig holds JSON file storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// PostgresConfig holds Postgres connection settings
type PostgresConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	Memory   MemoryConfig   `json:"memory" mapstructure:"memory"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// InfluxConfig holds InfluxDB frame metrics settings
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// MonitorConfig holds frame statistics flush settings
type MonitorConfig struct {
	Interval   time.Duration `json:"interval" mapstructure:"interval"`
	StatusFile string        `json:"statusFile" mapstructure:"statusFile"`
	MaxSamples int           `json:"maxSamples" mapstructure:"maxSamples"`
}

// GraylogConfig holds GELF log shipping settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Address string `json:"address" mapstructure:"address"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")
	viper.SetDefault("logsKeep", 10)

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.fps", 30)
	viper.SetDefault("server.allowedOrigins", []string{})
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("globe.defaultMode", "orthographic")
	viper.SetDefault("globe.width", 800)
	viper.SetDefault("globe.height", 800)
	viper.SetDefault("globe.scaleDivisor", 2.3)
	viper.SetDefault("globe.tilt", -20)
	viper.SetDefault("globe.initialLambda", -30)
	viper.SetDefault("globe.spinSpeed", 0.006)
	viper.SetDefault("globe.dragSensitivity", 0.4)
	viper.SetDefault("globe.minPhi", -60)
	viper.SetDefault("globe.maxPhi", 60)
	viper.SetDefault("globe.focusDuration", "1s")
	viper.SetDefault("globe.focusLatOffset", 10)
	viper.SetDefault("globe.autoSpin", true)

	viper.SetDefault("content.globeDataPath", "./content/globe-data.json")
	viper.SetDefault("content.globeDataUrl", "")
	viper.SetDefault("content.worldPath", "./content/world.geojson")
	viper.SetDefault("content.regionsPath", "./content/regions.yaml")
	viper.SetDefault("content.workHistoryPath", "./content/work.yaml")
	viper.SetDefault("content.reloadInterval", "0s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./data")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./data/cvglobe.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.postgres.host", "localhost")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.username", "postgres")
	viper.SetDefault("storage.postgres.password", "postgres")
	viper.SetDefault("storage.postgres.database", "cvglobe")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "cvglobe")
	viper.SetDefault("influx.bucket", "frames")
	viper.SetDefault("influx.backupPath", "./logs/influx-backup.lp.gz")

	viper.SetDefault("monitor.interval", "10s")
	viper.SetDefault("monitor.statusFile", "./logs/status.json")
	viper.SetDefault("monitor.maxSamples", 10000)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "cvglobe")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file. Environment
// variables prefixed with CVGLOBE_ override file values, with dots in keys
// replaced by underscores (CVGLOBE_SERVER_ADDR).
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix("CVGLOBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// Watch re-reads the config file whenever it changes on disk and calls
// onChange with the file name afterwards. Only write and create events are
// reported.
func Watch(onChange func(file string)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(e.Name)
	})
	viper.WatchConfig()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetServerConfig returns the listener configuration.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           viper.GetString("server.addr"),
		FPS:            viper.GetInt("server.fps"),
		AllowedOrigins: viper.GetStringSlice("server.allowedOrigins"),
		Mode:           viper.GetString("server.mode"),
	}
}

// GetGlobeConfig returns the projection and interaction tuning.
func GetGlobeConfig() GlobeConfig {
	return GlobeConfig{
		DefaultMode:     viper.GetString("globe.defaultMode"),
		Width:           viper.GetFloat64("globe.width"),
		Height:          viper.GetFloat64("globe.height"),
		ScaleDivisor:    viper.GetFloat64("globe.scaleDivisor"),
		Tilt:            viper.GetFloat64("globe.tilt"),
		InitialLambda:   viper.GetFloat64("globe.initialLambda"),
		SpinSpeed:       viper.GetFloat64("globe.spinSpeed"),
		DragSensitivity: viper.GetFloat64("globe.dragSensitivity"),
		MinPhi:          viper.GetFloat64("globe.minPhi"),
		MaxPhi:          viper.GetFloat64("globe.maxPhi"),
		FocusDuration:   viper.GetDuration("globe.focusDuration"),
		FocusLatOffset:  viper.GetFloat64("globe.focusLatOffset"),
		AutoSpin:        viper.GetBool("globe.autoSpin"),
	}
}

// GetContentConfig returns the content document locations.
func GetContentConfig() ContentConfig {
	return ContentConfig{
		GlobeDataPath:   viper.GetString("content.globeDataPath"),
		GlobeDataURL:    viper.GetString("content.globeDataUrl"),
		WorldPath:       viper.GetString("content.worldPath"),
		RegionsPath:     viper.GetString("content.regionsPath"),
		WorkHistoryPath: viper.GetString("content.workHistoryPath"),
		ReloadInterval:  viper.GetDuration("content.reloadInterval"),
	}
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("storage.postgres.host"),
			Port:     viper.GetString("storage.postgres.port"),
			Username: viper.GetString("storage.postgres.username"),
			Password: viper.GetString("storage.postgres.password"),
			Database: viper.GetString("storage.postgres.database"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetMonitorConfig returns the frame statistics configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:   viper.GetDuration("monitor.interval"),
		StatusFile: viper.GetString("monitor.statusFile"),
		MaxSamples: viper.GetInt("monitor.maxSamples"),
	}
}

// GetGraylogConfig returns the GELF configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}
