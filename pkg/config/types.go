package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	PocketCasts PocketCastsConfig `mapstructure:"pocketcasts"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Download    DownloadConfig    `mapstructure:"download"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig contains settings for the local bridge API
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	RateLimit       int           `mapstructure:"rate_limit"`
	RateBurst       int           `mapstructure:"rate_burst"`
}

// PocketCastsConfig contains upstream API settings
type PocketCastsConfig struct {
	APIBase        string        `mapstructure:"api_base"`
	PodcastAPIBase string        `mapstructure:"podcast_api_base"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	Burst          int           `mapstructure:"burst"`
	UserAgent      string        `mapstructure:"user_agent"`
	PodcastTTL     time.Duration `mapstructure:"podcast_ttl"`

	// Email and Password are only read by the login command.
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`

	// Token bypasses the keyring when set.
	Token string `mapstructure:"token"`
}

// AuthConfig contains keyring settings
type AuthConfig struct {
	KeyringService string `mapstructure:"keyring_service"`
	KeyringUser    string `mapstructure:"keyring_user"`
}

// DatabaseConfig contains local library settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// CacheConfig contains in-memory cache settings
type CacheConfig struct {
	MaxEntries      int           `mapstructure:"max_entries"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// DownloadConfig contains episode download settings
type DownloadConfig struct {
	Dir           string        `mapstructure:"dir"`
	MaxSize       int64         `mapstructure:"max_size"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ValidateAudio bool          `mapstructure:"validate_audio"`
}

// SyncConfig contains background list sync settings for the bridge.
// A zero Interval disables the sync worker.
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Lists    []string      `mapstructure:"lists"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
