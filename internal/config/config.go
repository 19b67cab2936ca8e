package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"iem-reco-service/internal/validation"
)

// ConfigPathEnvVar points to an optional YAML config file.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when CONFIG_PATH is not set.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"min=1,max=65535"`
	AllowOrigins []string `koanf:"allow_origins"`
	LogLevel     string   `koanf:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFile      string   `koanf:"log_file"`
	MaxBodyKB    int      `koanf:"max_body_kb" validate:"min=1"`

	// Каталог A (IEM) и каталог B (песни)
	IEMCatalogPath  string        `koanf:"iem_catalog_path" validate:"required"`
	IEMHeaderRow    int           `koanf:"iem_header_row" validate:"min=1"`
	SongCatalogPath string        `koanf:"song_catalog_path" validate:"required"`
	SongHeaderRow   int           `koanf:"song_header_row" validate:"min=1"`
	SongCacheTTL    time.Duration `koanf:"song_cache_ttl" validate:"min=0"`
	ReloadInterval  time.Duration `koanf:"reload_interval" validate:"min=0"`
	ClusterGroups   int           `koanf:"cluster_groups" validate:"min=1,max=50"`
	ClusterSeed     int64         `koanf:"cluster_seed"`
	RateLimitReqs   int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" validate:"min=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=0"`
}

func defaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8082,
		AllowOrigins:    []string{"*"},
		LogLevel:        "info",
		LogFile:         "logs/iem-reco-service.log",
		MaxBodyKB:       64,
		IEMCatalogPath:  "data/iem_catalog.xlsx",
		IEMHeaderRow:    1,
		SongCatalogPath: "data/spotify_songs.csv",
		SongHeaderRow:   1,
		SongCacheTTL:    10 * time.Minute,
		ReloadInterval:  30 * time.Second,
		ClusterGroups:   5,
		ClusterSeed:     42,
		RateLimitReqs:   120,
		RateLimitWindow: time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load собирает конфиг слоями: дефолты -> YAML (если есть) -> переменные окружения.
func Load() (Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}
	if v, ok := k.Get("allow_origins").(string); ok {
		if err := k.Set("allow_origins", splitList(v)); err != nil {
			return Config{}, fmt.Errorf("set allow_origins: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return validation.Struct(c)
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MaxBodyBytes is the request body limit.
func (c Config) MaxBodyBytes() int64 { return int64(c.MaxBodyKB) * 1024 }

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKeys — переменные окружения, которые мы читаем. Остальное окружение игнорируется.
var envKeys = map[string]string{
	"host":                "host",
	"port":                "port",
	"allow_origins":       "allow_origins",
	"log_level":           "log_level",
	"log_file":            "log_file",
	"max_body_kb":         "max_body_kb",
	"iem_catalog_path":    "iem_catalog_path",
	"iem_header_row":      "iem_header_row",
	"song_catalog_path":   "song_catalog_path",
	"song_header_row":     "song_header_row",
	"song_cache_ttl":      "song_cache_ttl",
	"reload_interval":     "reload_interval",
	"cluster_groups":      "cluster_groups",
	"cluster_seed":        "cluster_seed",
	"rate_limit_requests": "rate_limit_requests",
	"rate_limit_window":   "rate_limit_window",
	"shutdown_timeout":    "shutdown_timeout",
}

// envTransformFunc: PORT -> port, SONG_CACHE_TTL -> song_cache_ttl. Unknown names map to "" and are skipped.
func envTransformFunc(key string) string {
	return envKeys[strings.ToLower(key)]
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
