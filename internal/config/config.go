package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// global configuration structure
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Chat   ChatConfig   `mapstructure:"chat"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// portal endpoints and session settings
type ServerConfig struct {
	PushURL    string        `mapstructure:"push_url"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
	TokenEnv   string        `mapstructure:"token_env"`
}

// chat engine timing settings
type ChatConfig struct {
	DirectoryPollInterval time.Duration `mapstructure:"directory_poll_interval"`
	TypingTTL             time.Duration `mapstructure:"typing_ttl"`
	TypingSendThrottle    time.Duration `mapstructure:"typing_send_throttle"`
	UndoCountdownSeconds  int           `mapstructure:"undo_countdown_seconds"`
	UndoTickInterval      time.Duration `mapstructure:"undo_tick_interval"`
	DeleteEveryoneWindow  time.Duration `mapstructure:"delete_everyone_window"`
	ReconnectBaseBackoff  time.Duration `mapstructure:"reconnect_base_backoff"`
	ReconnectMaxBackoff   time.Duration `mapstructure:"reconnect_max_backoff"`
}

// logging configuration
type LoggerConfig struct {
	Directory string            `mapstructure:"directory"`
	Level     string            `mapstructure:"level"`
	Rotation  LogRotationConfig `mapstructure:"rotation"`
}

// log rotation settings
type LogRotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

var cfg *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	log.Printf("Using config file: %s", v.ConfigFileUsed())

	// Unmarshal configuration
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return cfg, nil
}

func Get() *Config {
	if cfg == nil {
		log.Fatal("Configuration not initialized, call Load() first")
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.push_url", "wss://portal.example.com/ws/chat")
	v.SetDefault("server.api_base_url", "https://portal.example.com/api")
	v.SetDefault("server.api_timeout", 10*time.Second)
	v.SetDefault("server.token_env", "PORTAL_SESSION_TOKEN")

	v.SetDefault("chat.directory_poll_interval", 15*time.Second)
	v.SetDefault("chat.typing_ttl", 3*time.Second)
	v.SetDefault("chat.typing_send_throttle", 2*time.Second)
	v.SetDefault("chat.undo_countdown_seconds", 5)
	v.SetDefault("chat.undo_tick_interval", time.Second)
	v.SetDefault("chat.delete_everyone_window", 24*time.Hour)
	v.SetDefault("chat.reconnect_base_backoff", time.Second)
	v.SetDefault("chat.reconnect_max_backoff", 30*time.Second)

	v.SetDefault("logger.directory", "logs")
	v.SetDefault("logger.level", "INFO")
	v.SetDefault("logger.rotation.max_size", 10)
	v.SetDefault("logger.rotation.max_backups", 30)
	v.SetDefault("logger.rotation.max_age", 90)
	v.SetDefault("logger.rotation.compress", true)
}
