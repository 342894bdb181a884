// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config stores all configuration of the application.
//
// The values are read by viper from a config file or environment variables.
type Config struct {
	DBDriver           string        `mapstructure:"DB_DRIVER"`
	DBSource           string        `mapstructure:"DB_SOURCE"`
	ServerAddress      string        `mapstructure:"SERVER_ADDRESS"`
	Environment        string        `mapstructure:"GO_ENV"`
	StoreBackend       string        `mapstructure:"STORE_BACKEND"`
	CommitRetries      int           `mapstructure:"COMMIT_RETRIES"`
	CommitRetryBackoff time.Duration `mapstructure:"COMMIT_RETRY_BACKOFF"`
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("STORE_BACKEND", BackendMemory)
	v.SetDefault("COMMIT_RETRIES", 3)
	v.SetDefault("COMMIT_RETRY_BACKOFF", 50*time.Millisecond)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return c, err
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}
