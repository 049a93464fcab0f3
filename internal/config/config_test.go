package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				// Reset viper
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.Database.Host != "localhost" {
					t.Errorf("Database.Host = %s, want localhost", cfg.Database.Host)
				}
				if cfg.Database.Port != 5432 {
					t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
				}
				if cfg.Monitor.MaxPerUser != 10 {
					t.Errorf("Monitor.MaxPerUser = %d, want 10", cfg.Monitor.MaxPerUser)
				}
				if cfg.Monitor.Interval != 5*time.Minute {
					t.Errorf("Monitor.Interval = %v, want 5m", cfg.Monitor.Interval)
				}
				if cfg.FactCheck.Timeout != 120*time.Second {
					t.Errorf("FactCheck.Timeout = %v, want 120s", cfg.FactCheck.Timeout)
				}
			},
		},
		{
			name: "load with environment variables",
			setup: func() {
				viper.Reset()
				viper.SetEnvPrefix("APP")
				viper.AutomaticEnv()
				os.Setenv("APP_SERVER_PORT", "9090")
				os.Setenv("APP_DATABASE_HOST", "testdb")
				os.Setenv("APP_DATABASE_PORT", "5433")
				os.Setenv("APP_DATABASE_NAME", "testdb")
				os.Setenv("APP_RAPIDAPI_KEY", "test-key")
				os.Setenv("APP_TELEGRAM_BOTTOKEN", "test-token")
				// Manually bind env vars since AutomaticEnv doesn't work with nested keys
				viper.BindEnv("server.port", "APP_SERVER_PORT")
				viper.BindEnv("database.host", "APP_DATABASE_HOST")
				viper.BindEnv("database.port", "APP_DATABASE_PORT")
				viper.BindEnv("database.name", "APP_DATABASE_NAME")
				viper.BindEnv("rapidapi.key", "APP_RAPIDAPI_KEY")
				viper.BindEnv("telegram.bottoken", "APP_TELEGRAM_BOTTOKEN")
			},
			cleanup: func() {
				os.Unsetenv("APP_SERVER_PORT")
				os.Unsetenv("APP_DATABASE_HOST")
				os.Unsetenv("APP_DATABASE_PORT")
				os.Unsetenv("APP_DATABASE_NAME")
				os.Unsetenv("APP_RAPIDAPI_KEY")
				os.Unsetenv("APP_TELEGRAM_BOTTOKEN")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Database.Host != "testdb" {
					t.Errorf("Database.Host = %s, want testdb", cfg.Database.Host)
				}
				if cfg.Database.Port != 5433 {
					t.Errorf("Database.Port = %d, want 5433", cfg.Database.Port)
				}
				if cfg.RapidAPI.Key != "test-key" {
					t.Errorf("RapidAPI.Key = %s, want test-key", cfg.RapidAPI.Key)
				}
				if cfg.Telegram.BotToken != "test-token" {
					t.Errorf("Telegram.BotToken = %s, want test-token", cfg.Telegram.BotToken)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			defer func() {
				if tt.cleanup != nil {
					tt.cleanup()
				}
			}()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	tests := []struct {
		name string
		key  string
		want interface{}
	}{
		{"server port", "server.port", 8080},
		{"database host", "database.host", "localhost"},
		{"database port", "database.port", 5432},
		{"database name", "database.name", "factcheck"},
		{"database user", "database.user", "postgres"},
		{"database maxconnections", "database.maxconnections", 10},
		{"database minconnections", "database.minconnections", 5},
		{"rabbitmq port", "rabbitmq.port", 5672},
		{"rabbitmq user", "rabbitmq.user", "guest"},
		{"rabbitmq exchange", "rabbitmq.exchange", "factcheck.events"},
		{"rabbitmq queue", "rabbitmq.queue", "factcheck.verifications"},
		{"rabbitmq routingkey", "rabbitmq.routingkey", "verification.completed"},
		{"rapidapi tiktok host", "rapidapi.tiktokhost", "tiktok-video-no-watermark2.p.rapidapi.com"},
		{"rapidapi instagram host", "rapidapi.instagramhost", "instagram-best-experience.p.rapidapi.com"},
		{"monitor maxperuser", "monitor.maxperuser", 10},
		{"monitor videospersweep", "monitor.videospersweep", 10},
		{"monitor sweepbatchlimit", "monitor.sweepbatchlimit", 20},
		{"logging level", "logging.level", "info"},
		{"logging file", "logging.file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.want {
				t.Errorf("viper.Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	// Test time.Duration defaults
	if viper.GetDuration("server.shutdowntimeout") != 30*time.Second {
		t.Errorf("server.shutdowntimeout = %v, want 30s", viper.GetDuration("server.shutdowntimeout"))
	}
	if viper.GetDuration("monitor.interval") != 5*time.Minute {
		t.Errorf("monitor.interval = %v, want 5m", viper.GetDuration("monitor.interval"))
	}
	if viper.GetDuration("factcheck.timeout") != 120*time.Second {
		t.Errorf("factcheck.timeout = %v, want 120s", viper.GetDuration("factcheck.timeout"))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: &Config{
				Telegram: TelegramConfig{BotToken: "token"},
				RapidAPI: RapidAPIConfig{Key: "key"},
			},
			wantErr: false,
		},
		{
			name: "missing bot token",
			cfg: &Config{
				RapidAPI: RapidAPIConfig{Key: "key"},
			},
			wantErr: true,
		},
		{
			name: "missing rapidapi key",
			cfg: &Config{
				Telegram: TelegramConfig{BotToken: "token"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
