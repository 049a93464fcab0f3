// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Telegram  TelegramConfig
	RapidAPI  RapidAPIConfig
	FactCheck FactCheckConfig
	YouTube   YouTubeConfig
	Monitor   MonitorConfig
	Logging   LoggingConfig
}

// ServerConfig contains the admin HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig contains database connection configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// RedisConfig contains the task queue broker configuration. An empty URL
// disables the background sweep queue.
type RedisConfig struct {
	URL string
}

// RabbitMQConfig contains the optional verification event publisher
// configuration. An empty host disables publishing.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type RabbitMQConfig struct {
	Host       string
	User       string
	Password   string
	Exchange   string
	Queue      string
	RoutingKey string
	Port       int
}

// TelegramConfig contains the bot credentials.
type TelegramConfig struct {
	BotToken string
}

// RapidAPIConfig contains the key and hosts for the TikTok and Instagram
// content extraction upstreams.
type RapidAPIConfig struct {
	Key           string
	TikTokHost    string
	InstagramHost string
}

// FactCheckConfig contains the Vera fact-checking service credentials.
// A missing key does not fail startup; verification requests fail instead.
type FactCheckConfig struct {
	APIKey   string
	Endpoint string
	Timeout  time.Duration
}

// YouTubeConfig contains the YouTube Data API key.
type YouTubeConfig struct {
	APIKey string
}

// MonitorConfig contains watch-list sweep settings.
type MonitorConfig struct {
	Interval        time.Duration
	MaxPerUser      int
	VideosPerSweep  int
	SweepBatchLimit int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the bot cannot run without. The fact-check
// key is deliberately not required here: its absence means demo mode.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bottoken is required")
	}
	if c.RapidAPI.Key == "" {
		return fmt.Errorf("rapidapi.key is required")
	}
	return nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "factcheck")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 5)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Redis / queue
	viper.SetDefault("redis.url", "")

	// RabbitMQ
	viper.SetDefault("rabbitmq.host", "")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.user", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchange", "factcheck.events")
	viper.SetDefault("rabbitmq.queue", "factcheck.verifications")
	viper.SetDefault("rabbitmq.routingkey", "verification.completed")

	// RapidAPI extraction upstreams
	viper.SetDefault("rapidapi.tiktokhost", "tiktok-video-no-watermark2.p.rapidapi.com")
	viper.SetDefault("rapidapi.instagramhost", "instagram-best-experience.p.rapidapi.com")

	// Fact-check upstream
	viper.SetDefault("factcheck.endpoint", "https://feat-api-partner---api-ksrn3vjgma-od.a.run.app/api/v1")
	viper.SetDefault("factcheck.timeout", 120*time.Second)

	// Watch-list sweep
	viper.SetDefault("monitor.interval", 5*time.Minute)
	viper.SetDefault("monitor.maxperuser", 10)
	viper.SetDefault("monitor.videospersweep", 10)
	viper.SetDefault("monitor.sweepbatchlimit", 20)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
