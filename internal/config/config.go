// Package config loads mindcloud configuration from mindcloud.yaml, the
// environment (MINDCLOUD_*) and command line flags, through viper.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override: server.port is read from
// MINDCLOUD_SERVER_PORT.
const EnvPrefix = "MINDCLOUD"

// Config is the full mindcloud configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Data   DataConfig   `mapstructure:"data"`
	Canvas CanvasConfig `mapstructure:"canvas"`
	Client ClientConfig `mapstructure:"client"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// WasmPath is the compiled viewer served at /app.wasm.
	WasmPath string `mapstructure:"wasm_path"`
	// WasmExecPath is the Go runtime shim served at /wasm_exec.js. Empty
	// looks it up under GOROOT.
	WasmExecPath string `mapstructure:"wasm_exec_path"`
	// Watch reloads the payload and notifies browsers when data files change.
	Watch bool `mapstructure:"watch"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// DataConfig names the files the cloud is built from.
type DataConfig struct {
	PayloadFile  string `mapstructure:"payload_file"`
	TaxonomyFile string `mapstructure:"taxonomy_file"`
	// StorePath is the SQLite database holding project view counts.
	StorePath string `mapstructure:"store_path"`
}

// CanvasConfig is the default viewport for snapshots and layout tables.
type CanvasConfig struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
	Waves  bool    `mapstructure:"waves"`
}

// ClientConfig configures the content API client.
type ClientConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// ViewRate and ViewBurst throttle project view pings.
	ViewRate  float64 `mapstructure:"view_rate"`
	ViewBurst int     `mapstructure:"view_burst"`
}

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	MaxEntries int           `mapstructure:"max_entries"`
	MaxAge     time.Duration `mapstructure:"max_age"`
	// Strategy is lru, lfu or fifo.
	Strategy string `mapstructure:"strategy"`
}

// LoggerConfig configures zap.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"` // console or json
	ServiceName string `mapstructure:"service_name"`
	AddSource   bool   `mapstructure:"add_source"`
	// LogFile enables a rotated JSON log file next to the console output.
	LogFile    string      `mapstructure:"log_file"`
	MaxSize    int         `mapstructure:"max_size"` // megabytes
	MaxBackups int         `mapstructure:"max_backups"`
	MaxAge     int         `mapstructure:"max_age"` // days
	Compress   bool        `mapstructure:"compress"`
	Colors     ColorConfig `mapstructure:"colors"`
}

// ColorConfig names the console colour of each level.
type ColorConfig struct {
	Debug string `mapstructure:"debug"`
	Info  string `mapstructure:"info"`
	Warn  string `mapstructure:"warn"`
	Error string `mapstructure:"error"`
	Fatal string `mapstructure:"fatal"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "localhost",
			Port:     8080,
			WasmPath: "dist/app.wasm",
			Watch:    true,
		},
		Data: DataConfig{
			PayloadFile: "data/mind-cloud.json",
			StorePath:   "data/views.db",
		},
		Canvas: CanvasConfig{Width: 1200, Height: 800},
		Client: ClientConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   10 * time.Second,
			ViewRate:  2,
			ViewBurst: 4,
		},
		Cache: CacheConfig{
			MaxEntries: 64,
			MaxAge:     10 * time.Minute,
			Strategy:   "lru",
		},
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			ServiceName: "mindcloud",
			MaxSize:     10,
			MaxBackups:  3,
			MaxAge:      7,
			Colors: ColorConfig{
				Debug: "cyan",
				Info:  "green",
				Warn:  "yellow",
				Error: "red",
				Fatal: "magenta",
			},
		},
	}
}

// SetDefaults registers every default with v so environment variables and
// flags can override keys that appear in no config file.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.wasm_path", d.Server.WasmPath)
	v.SetDefault("server.wasm_exec_path", d.Server.WasmExecPath)
	v.SetDefault("server.watch", d.Server.Watch)

	v.SetDefault("data.payload_file", d.Data.PayloadFile)
	v.SetDefault("data.taxonomy_file", d.Data.TaxonomyFile)
	v.SetDefault("data.store_path", d.Data.StorePath)

	v.SetDefault("canvas.width", d.Canvas.Width)
	v.SetDefault("canvas.height", d.Canvas.Height)
	v.SetDefault("canvas.waves", d.Canvas.Waves)

	v.SetDefault("client.base_url", d.Client.BaseURL)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("client.view_rate", d.Client.ViewRate)
	v.SetDefault("client.view_burst", d.Client.ViewBurst)

	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.max_age", d.Cache.MaxAge)
	v.SetDefault("cache.strategy", d.Cache.Strategy)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.service_name", d.Logger.ServiceName)
	v.SetDefault("logger.add_source", d.Logger.AddSource)
	v.SetDefault("logger.log_file", d.Logger.LogFile)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)
	v.SetDefault("logger.compress", d.Logger.Compress)
	v.SetDefault("logger.colors.debug", d.Logger.Colors.Debug)
	v.SetDefault("logger.colors.info", d.Logger.Colors.Info)
	v.SetDefault("logger.colors.warn", d.Logger.Colors.Warn)
	v.SetDefault("logger.colors.error", d.Logger.Colors.Error)
	v.SetDefault("logger.colors.fatal", d.Logger.Colors.Fatal)
}

// Setup prepares v: defaults, environment overrides, and the config file.
// An explicit file must exist; otherwise mindcloud.yaml is looked up in the
// working directory and skipped if absent.
func Setup(v *viper.Viper, file string) error {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("mindcloud")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// Load unmarshals v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if !positive(c.Canvas.Width) || !positive(c.Canvas.Height) {
		return fmt.Errorf("config: canvas size %gx%g must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	switch strings.ToLower(c.Cache.Strategy) {
	case "", "lru", "lfu", "fifo":
	default:
		return fmt.Errorf("config: unknown cache.strategy %q", c.Cache.Strategy)
	}
	switch c.Logger.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: unknown logger.format %q", c.Logger.Format)
	}
	if c.Client.ViewRate < 0 {
		return fmt.Errorf("config: client.view_rate must not be negative")
	}
	return nil
}

// positive reports whether v is finite and greater than zero.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }
