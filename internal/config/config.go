package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Spotify  SpotifyConfig  `mapstructure:"spotify"`

	// Feeds is loaded from enumerated environment variables, not from the
	// config file. See LoadFeeds.
	Feeds []FeedConfig `mapstructure:"-"`
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"` // sqlite file path
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout or file path
}

// SpotifyConfig holds Spotify Web API credentials. Both fields empty means
// catalog lookups are disabled.
type SpotifyConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Market       string `mapstructure:"market"` // country code for episode listings
}

// FeedConfig is one monitored podcast feed. ID is the 1-based position in the
// enumerated environment configuration.
type FeedConfig struct {
	ID            int
	FeedURL       string
	WebhookURL    string
	RoleID        string // Discord role to mention, optional
	BotName       string // webhook username override, optional
	BotAvatar     string // webhook avatar override, optional
	SpotifyShowID string // enables catalog lookups for this feed, optional
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	// Load .env file if present (ignore errors if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("NOTIFIER")
	v.AutomaticEnv()

	// Explicit bindings for nested keys (Viper doesn't auto-bind underscored
	// nested keys). The bare SPOTIFY_* names are accepted for compatibility
	// with existing deployments.
	v.BindEnv("database.dsn", "NOTIFIER_DATABASE_DSN")
	v.BindEnv("logging.level", "NOTIFIER_LOGGING_LEVEL")
	v.BindEnv("logging.format", "NOTIFIER_LOGGING_FORMAT")
	v.BindEnv("logging.output", "NOTIFIER_LOGGING_OUTPUT")
	v.BindEnv("spotify.client_id", "NOTIFIER_SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_ID")
	v.BindEnv("spotify.client_secret", "NOTIFIER_SPOTIFY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET")
	v.BindEnv("spotify.market", "NOTIFIER_SPOTIFY_MARKET", "SPOTIFY_MARKET")

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.Feeds = LoadFeeds()

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "./data/episodes.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("spotify.market", "DE")
}

// LoadFeeds reads the enumerated feed definitions from the environment:
// FEED_URL_1/WEBHOOK_URL_1, FEED_URL_2/WEBHOOK_URL_2, and so on. Loading
// stops at the first index missing either required variable; gaps are not
// supported. The optional per-feed variables are ROLE_ID_n, BOT_NAME_n,
// BOT_AVATAR_n and SPOTIFY_SHOW_ID_n.
func LoadFeeds() []FeedConfig {
	var feeds []FeedConfig

	for i := 1; ; i++ {
		n := strconv.Itoa(i)
		feedURL := os.Getenv("FEED_URL_" + n)
		webhookURL := os.Getenv("WEBHOOK_URL_" + n)

		if feedURL == "" || webhookURL == "" {
			break
		}

		feeds = append(feeds, FeedConfig{
			ID:            i,
			FeedURL:       feedURL,
			WebhookURL:    webhookURL,
			RoleID:        os.Getenv("ROLE_ID_" + n),
			BotName:       os.Getenv("BOT_NAME_" + n),
			BotAvatar:     os.Getenv("BOT_AVATAR_" + n),
			SpotifyShowID: os.Getenv("SPOTIFY_SHOW_ID_" + n),
		})
	}

	return feeds
}

// Validate validates the configuration
func (c *Config) Validate() error {
	for _, feed := range c.Feeds {
		if feed.FeedURL == "" {
			return fmt.Errorf("feed %d: feed URL is required", feed.ID)
		}
		if feed.WebhookURL == "" {
			return fmt.Errorf("feed %d: webhook URL is required", feed.ID)
		}
	}
	if (c.Spotify.ClientID == "") != (c.Spotify.ClientSecret == "") {
		return fmt.Errorf("spotify credentials must be set together or not at all")
	}
	return nil
}

// SpotifyEnabled reports whether catalog lookups are configured
func (c *Config) SpotifyEnabled() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}
