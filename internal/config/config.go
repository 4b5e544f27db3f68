package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	PostgresURL   string        `mapstructure:"POSTGRES_URL"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	JWTSecret     string        `mapstructure:"JWT_SECRET"`
	TripStores    string        `mapstructure:"TRIP_STORES"`
	SQLitePath    string        `mapstructure:"SQLITE_PATH"`
	TickInterval  time.Duration `mapstructure:"TICK_INTERVAL"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
}

// Stores returns the configured trip store backends in order, lower-cased.
func (c Config) Stores() []string {
	var out []string
	for _, s := range strings.Split(c.TripStores, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func Load() Config {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile loads variables from envFile into the process environment when the file
// exists, without overriding variables that are already set, then reads configuration.
func LoadWithEnvFile(envFile string) Config {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("TRIP_STORES", "sqlite")
	v.SetDefault("SQLITE_PATH", "drivemate.db")
	v.SetDefault("TICK_INTERVAL", "1s")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	_ = v.Unmarshal(&cfg)
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return cfg
}
