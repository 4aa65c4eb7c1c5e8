package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// Push delivery settings.
	ExpoPushURL        string        `mapstructure:"expo_push_url" yaml:"expo_push_url"`
	ExpoChannelID      string        `mapstructure:"expo_channel_id" yaml:"expo_channel_id"`
	FCMCredentialsPath string        `mapstructure:"fcm_credentials_path" yaml:"fcm_credentials_path"`
	DispatchTimeout    time.Duration `mapstructure:"dispatch_timeout" yaml:"dispatch_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":3000",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "relay.db",
		LogLevel:          "info",
		ExpoPushURL:       "https://exp.host/--/api/v2/push/send",
		ExpoChannelID:     "fcm_fallback_notification_channel",
		DispatchTimeout:   5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ExpoPushURL != "" {
		c.ExpoPushURL = other.ExpoPushURL
	}
	if other.ExpoChannelID != "" {
		c.ExpoChannelID = other.ExpoChannelID
	}
	if other.FCMCredentialsPath != "" {
		c.FCMCredentialsPath = other.FCMCredentialsPath
	}
	if other.DispatchTimeout != 0 {
		c.DispatchTimeout = other.DispatchTimeout
	}
}
