package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Settings SettingsConfig `mapstructure:"settings"`
	Sources  SourcesConfig  `mapstructure:"sources"`
	Server   ServerConfig   `mapstructure:"server"`
	Viewer   ViewerConfig   `mapstructure:"viewer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// StorageConfig selects the key-value backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "bolt", "sqlite" or "memory"
	Path    string `mapstructure:"path"`
}

// CacheConfig holds image and feed cache configuration
type CacheConfig struct {
	Dir     string        `mapstructure:"dir"`
	FeedCap int           `mapstructure:"feed_cap"` // Max records kept in the feed window
	TagsTTL time.Duration `mapstructure:"tags_ttl"`
}

// SettingsConfig holds the defaults of the user settings record
type SettingsConfig struct {
	GridColumns  int   `mapstructure:"grid_columns"`
	MaxCacheSize int64 `mapstructure:"max_cache_size"` // bytes
}

// SourcesConfig holds remote API endpoints
type SourcesConfig struct {
	JikanURL          string        `mapstructure:"jikan_url"`
	KitsuURL          string        `mapstructure:"kitsu_url"`
	PicreURL          string        `mapstructure:"picre_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// ServerConfig holds the local HTTP API configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// ViewerConfig holds external image viewer configuration
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // Empty for auto-detect
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "bolt",
			Path:    filepath.Join(defaultDataPath(), "akiba.db"),
		},
		Cache: CacheConfig{
			Dir:     defaultCachePath(),
			FeedCap: 100,
			TagsTTL: 24 * time.Hour,
		},
		Settings: SettingsConfig{
			GridColumns:  2,
			MaxCacheSize: 500 << 20,
		},
		Sources: SourcesConfig{
			JikanURL:          "https://api.jikan.moe/v4",
			KitsuURL:          "https://kitsu.io/api/edge",
			PicreURL:          "https://pic.re",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 3,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7878",
		},
		Viewer: ViewerConfig{
			Command: "",
			Args:    []string{},
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "akiba.log"),
			Level: "INFO",
		},
	}
}

// DefaultSettings converts the settings section into the domain record
func (c *Config) DefaultSettings() domain.Settings {
	return domain.Settings{
		GridColumns:  c.Settings.GridColumns,
		MaxCacheSize: c.Settings.MaxCacheSize,
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "akiba")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "akiba")
	}
}

// defaultCachePath returns the default image cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "akiba", "images")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".cache", "akiba", "images")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "akiba")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "akiba")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.New(), defaultConfigPath(), ".")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable overrides, e.g. AKIBA_STORAGE_BACKEND
	v.SetEnvPrefix("AKIBA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	cfg.Cache.Dir = ExpandPath(cfg.Cache.Dir)
	cfg.Logging.File = ExpandPath(cfg.Logging.File)
	return cfg, nil
}

// bindDefaults registers every key so AutomaticEnv can see it during Unmarshal
func bindDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range values(cfg) {
		v.SetDefault(key, value)
	}
}

// values flattens cfg into viper keys (snake_case)
func values(cfg *Config) map[string]any {
	return map[string]any{
		"storage.backend":             cfg.Storage.Backend,
		"storage.path":                cfg.Storage.Path,
		"cache.dir":                   cfg.Cache.Dir,
		"cache.feed_cap":              cfg.Cache.FeedCap,
		"cache.tags_ttl":              cfg.Cache.TagsTTL,
		"settings.grid_columns":       cfg.Settings.GridColumns,
		"settings.max_cache_size":     cfg.Settings.MaxCacheSize,
		"sources.jikan_url":           cfg.Sources.JikanURL,
		"sources.kitsu_url":           cfg.Sources.KitsuURL,
		"sources.picre_url":           cfg.Sources.PicreURL,
		"sources.timeout":             cfg.Sources.Timeout,
		"sources.requests_per_second": cfg.Sources.RequestsPerSecond,
		"server.addr":                 cfg.Server.Addr,
		"viewer.command":              cfg.Viewer.Command,
		"viewer.args":                 cfg.Viewer.Args,
		"logging.file":                cfg.Logging.File,
		"logging.level":               cfg.Logging.Level,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return saveTo(cfg, defaultConfigPath())
}

func saveTo(cfg *Config, configPath string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	for key, value := range values(cfg) {
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
