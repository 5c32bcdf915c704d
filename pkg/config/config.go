package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CASTSYNC_SERVER_PORT.
const EnvPrefix = "CASTSYNC"

// DefaultConfigFile is read when present; defaults and env vars apply otherwise.
var DefaultConfigFile = filepath.Clean("./config/settings.yaml")

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system once per process.
func Init() error {
	once.Do(func() {
		initErr = load(DefaultConfigFile)
	})
	return initErr
}

// load resets defaults, env bindings and the optional config file into the
// global viper instance.
func load(path string) error {
	setDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct.
// Init() must be called before using this.
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	if viper.GetFloat64("pocketcasts.rate_limit") < 0 {
		return fmt.Errorf("invalid pocketcasts rate limit: %v", viper.GetFloat64("pocketcasts.rate_limit"))
	}

	if viper.GetInt64("download.max_size") < 0 {
		return fmt.Errorf("invalid download max size: %d", viper.GetInt64("download.max_size"))
	}

	if viper.GetDuration("sync.interval") < 0 {
		return fmt.Errorf("invalid sync interval: %v", viper.GetDuration("sync.interval"))
	}

	if viper.GetInt("pocketcasts.burst") <= 0 {
		viper.Set("pocketcasts.burst", 1)
	}

	if viper.GetInt("server.rate_limit") <= 0 {
		viper.Set("server.rate_limit", 10)
	}
	if viper.GetInt("server.rate_burst") <= 0 {
		viper.Set("server.rate_burst", 20)
	}

	if viper.GetString("pocketcasts.password") != "" && isProduction() {
		logrus.Warn("pocketcasts.password is set in configuration; prefer the login command and keyring")
	}

	return nil
}

func isProduction() bool {
	env := viper.GetString("environment")
	return env == "production" || env == "prod"
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.PocketCasts.RateLimit < 0 {
		return fmt.Errorf("invalid pocketcasts rate limit: %v", c.PocketCasts.RateLimit)
	}
	if c.Download.MaxSize < 0 {
		return fmt.Errorf("invalid download max size: %d", c.Download.MaxSize)
	}
	if c.PocketCasts.Burst <= 0 {
		c.PocketCasts.Burst = 1
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")

	// Bridge server defaults
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8787)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)
	viper.SetDefault("server.rate_limit", 10)
	viper.SetDefault("server.rate_burst", 20)

	// Pocket Casts defaults
	viper.SetDefault("pocketcasts.api_base", "https://api.pocketcasts.com")
	viper.SetDefault("pocketcasts.podcast_api_base", "https://podcast-api.pocketcasts.com")
	viper.SetDefault("pocketcasts.timeout", 15*time.Second)
	viper.SetDefault("pocketcasts.rate_limit", 5.0)
	viper.SetDefault("pocketcasts.burst", 5)
	viper.SetDefault("pocketcasts.user_agent", "castsync/1.0")
	viper.SetDefault("pocketcasts.podcast_ttl", 1*time.Hour)
	viper.SetDefault("pocketcasts.email", "")
	viper.SetDefault("pocketcasts.password", "")
	viper.SetDefault("pocketcasts.token", "")

	// Keyring defaults
	viper.SetDefault("auth.keyring_service", "castsync")
	viper.SetDefault("auth.keyring_user", "pocketcasts-token")

	// Library defaults
	viper.SetDefault("database.path", "./data/castsync.db")
	viper.SetDefault("database.verbose", false)

	// Cache defaults
	viper.SetDefault("cache.max_entries", 500)
	viper.SetDefault("cache.cleanup_interval", 5*time.Minute)

	// Download defaults
	viper.SetDefault("download.dir", "./downloads")
	viper.SetDefault("download.max_size", 500*1024*1024)
	viper.SetDefault("download.timeout", 10*time.Minute)
	viper.SetDefault("download.validate_audio", true)

	// Background sync defaults
	viper.SetDefault("sync.interval", 0)
	viper.SetDefault("sync.lists", []string{"up-next", "in-progress"})

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
