package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process level configuration. Connection settings for Postgres
// and Redis stay in viper and are read by the database package.
type Config struct {
	Port            string
	DefaultCurrency string
	AutoMigrate     bool
	ShutdownTimeout time.Duration
	Interest        InterestConfig
}

type InterestConfig struct {
	Schedule string
	LockTTL  time.Duration
	Enabled  bool
}

var envBindings = map[string]string{
	"server.port":             "PORT",
	"database.host":           "DATABASE_HOST",
	"database.port":           "DATABASE_PORT",
	"database.user":           "DATABASE_USER",
	"database.password":       "DATABASE_PASSWORD",
	"database.name":           "DATABASE_NAME",
	"database.ssl_mode":       "DATABASE_SSL_MODE",
	"database.auto_migrate":   "DATABASE_AUTO_MIGRATE",
	"redis.host":              "REDIS_HOST",
	"redis.port":              "REDIS_PORT",
	"redis.password":          "REDIS_PASSWORD",
	"redis.db":                "REDIS_DB",
	"jwt.secret_key":          "JWT_SECRET_KEY",
	"ledger.default_currency": "LEDGER_DEFAULT_CURRENCY",
	"interest.schedule":       "INTEREST_SCHEDULE",
	"interest.lock_ttl":       "INTEREST_LOCK_TTL",
	"interest.enabled":        "INTEREST_JOB_ENABLED",
	"log.development":         "LOG_DEVELOPMENT",
}

func setDefaults() {
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)
	viper.SetDefault("database.auto_migrate", true)
	viper.SetDefault("ledger.default_currency", "NGN")
	viper.SetDefault("interest.schedule", "0 0 * * *")
	viper.SetDefault("interest.lock_ttl", time.Hour)
	viper.SetDefault("interest.enabled", true)
}

// Load reads the optional .env file, binds environment variables and returns
// the validated process configuration. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env keys arrive flat (ledger_default_currency); they rank below real env vars
	for key, env := range envBindings {
		if v := viper.Get(strings.ToLower(env)); v != nil {
			viper.SetDefault(key, v)
		}
	}

	cfg := &Config{
		Port:            viper.GetString("server.port"),
		DefaultCurrency: viper.GetString("ledger.default_currency"),
		AutoMigrate:     viper.GetBool("database.auto_migrate"),
		ShutdownTimeout: viper.GetDuration("server.shutdown_timeout"),
		Interest: InterestConfig{
			Schedule: viper.GetString("interest.schedule"),
			LockTTL:  viper.GetDuration("interest.lock_ttl"),
			Enabled:  viper.GetBool("interest.enabled"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("ledger.default_currency must be a 3 letter code, got %q", c.DefaultCurrency)
	}
	if c.Interest.LockTTL <= 0 {
		return errors.New("interest.lock_ttl must be positive")
	}
	return nil
}
