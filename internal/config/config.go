// README: Config loader with env defaults for HTTP, snapshot storage, the Postgres mirror and scheduling.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreRedis  StoreKind = "redis"
	StoreMemory StoreKind = "memory"
)

type Config struct {
	HTTP struct {
		Addr string
	}
	Store struct {
		Kind       StoreKind
		SQLitePath string
		Namespace  string
	}
	Redis struct {
		Addr string
	}
	Mirror struct {
		// DSN is empty when the Postgres mirror is disabled.
		DSN    string
		Buffer int
	}
	TariffFile string
	// SubscriptionRefresh is a robfig/cron spec.
	SubscriptionRefresh string
	Seed                bool
	Timezone            string
	LogLevel            slog.Level
}

// Load reads PARKDESK_* environment variables over the defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PARKDESK")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("STORE", string(StoreSQLite))
	v.SetDefault("SQLITE_PATH", "parkdesk.db")
	v.SetDefault("NAMESPACE", "parking_system")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("MIRROR_DSN", "")
	v.SetDefault("MIRROR_BUFFER", 256)
	v.SetDefault("TARIFF_FILE", "config/tariff.toml")
	v.SetDefault("SUB_REFRESH", "@every 1h")
	v.SetDefault("SEED", true)
	v.SetDefault("TIMEZONE", "America/Bogota")
	v.SetDefault("LOG_LEVEL", "info")
	v.AutomaticEnv()

	var cfg Config
	cfg.HTTP.Addr = v.GetString("HTTP_ADDR")
	cfg.Store.Kind = StoreKind(strings.ToLower(v.GetString("STORE")))
	cfg.Store.SQLitePath = v.GetString("SQLITE_PATH")
	cfg.Store.Namespace = v.GetString("NAMESPACE")
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Mirror.DSN = v.GetString("MIRROR_DSN")
	cfg.Mirror.Buffer = v.GetInt("MIRROR_BUFFER")
	cfg.TariffFile = v.GetString("TARIFF_FILE")
	cfg.SubscriptionRefresh = v.GetString("SUB_REFRESH")
	cfg.Seed = v.GetBool("SEED")
	cfg.Timezone = v.GetString("TIMEZONE")

	switch cfg.Store.Kind {
	case StoreSQLite, StoreRedis, StoreMemory:
	default:
		return Config{}, fmt.Errorf("%w: PARKDESK_STORE must be sqlite, redis or memory, got %q", ErrInvalidConfig, cfg.Store.Kind)
	}
	if cfg.Mirror.Buffer <= 0 {
		return Config{}, fmt.Errorf("%w: PARKDESK_MIRROR_BUFFER must be positive", ErrInvalidConfig)
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, fmt.Errorf("%w: PARKDESK_LOG_LEVEL: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}
