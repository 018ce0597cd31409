package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreDriverFile   = "file"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"

	DefaultStoreKey = "@RocketShoes:cart"
)

type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	LogFile     string
	HTTPAddr    string

	// InventoryURL points at a json-server compatible inventory API. Empty
	// means the in-memory catalog is used and its routes are served locally.
	InventoryURL     string
	InventoryTimeout time.Duration
	CatalogSeedFile  string

	StoreDriver string
	StorePath   string
	StoreKey    string
	RedisAddr   string

	NotificationFeedSize int
	ShutdownTimeout      time.Duration

	TracesExporter string
	OTLPEndpoint   string
}

var defaults = map[string]any{
	"SERVICE_NAME":                "minishop-cart",
	"ENV":                         "dev",
	"LOG_LEVEL":                   "info",
	"LOG_FILE":                    "",
	"HTTP_ADDR":                   ":8080",
	"INVENTORY_URL":               "",
	"INVENTORY_TIMEOUT":           "3s",
	"CATALOG_SEED_FILE":           "",
	"STORE_DRIVER":                StoreDriverFile,
	"STORE_PATH":                  "data/cart.json",
	"STORE_KEY":                   DefaultStoreKey,
	"REDIS_ADDR":                  "localhost:6379",
	"NOTIFICATION_FEED_SIZE":      50,
	"SHUTDOWN_TIMEOUT":            "10s",
	"OTEL_TRACES_EXPORTER":        "none",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
}

// Load reads defaults, then the optional file named by CONFIG_FILE, then the
// environment. Keys are the environment variable names.
func Load() (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		ServiceName:          v.GetString("SERVICE_NAME"),
		Env:                  v.GetString("ENV"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFile:              v.GetString("LOG_FILE"),
		HTTPAddr:             v.GetString("HTTP_ADDR"),
		InventoryURL:         v.GetString("INVENTORY_URL"),
		InventoryTimeout:     v.GetDuration("INVENTORY_TIMEOUT"),
		CatalogSeedFile:      v.GetString("CATALOG_SEED_FILE"),
		StoreDriver:          strings.ToLower(v.GetString("STORE_DRIVER")),
		StorePath:            v.GetString("STORE_PATH"),
		StoreKey:             v.GetString("STORE_KEY"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		NotificationFeedSize: v.GetInt("NOTIFICATION_FEED_SIZE"),
		ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		TracesExporter:       strings.ToLower(v.GetString("OTEL_TRACES_EXPORTER")),
		OTLPEndpoint:         v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverFile:
		if c.StorePath == "" {
			return fmt.Errorf("config: STORE_PATH is required for the file store")
		}
	case StoreDriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config: REDIS_ADDR is required for the redis store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreKey == "" {
		return fmt.Errorf("config: STORE_KEY must not be empty")
	}
	if c.InventoryTimeout <= 0 {
		return fmt.Errorf("config: INVENTORY_TIMEOUT must be positive")
	}
	if c.NotificationFeedSize <= 0 {
		return fmt.Errorf("config: NOTIFICATION_FEED_SIZE must be positive")
	}
	return nil
}
