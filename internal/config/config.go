/**
 * @description
 * This package handles the configuration management for the payout service. It
 * uses the Viper library to read configuration from environment variables (and
 * an optional .env file), providing a centralized way to manage settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the payout service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort           string `mapstructure:"SERVER_PORT"`
	DataFile             string `mapstructure:"DATA_FILE"`
	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	RedisURL             string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL          string `mapstructure:"RABBITMQ_URL"`
	PayoutEventExchange  string `mapstructure:"PAYOUT_EVENT_EXCHANGE"`

	// Lifecycle thresholds, in milliseconds. Defaults match the reference
	// dashboard server: 2s queued->processing, 3s processing->completed,
	// scanned every 1.5s.
	PayoutQueueDelayMs   int `mapstructure:"PAYOUT_QUEUE_DELAY_MS"`
	PayoutProcessDelayMs int `mapstructure:"PAYOUT_PROCESS_DELAY_MS"`
	PayoutTickIntervalMs int `mapstructure:"PAYOUT_TICK_INTERVAL_MS"`

	PayoutListLimit                int `mapstructure:"PAYOUT_LIST_LIMIT"`
	PayoutCreateRateLimitPerMinute int `mapstructure:"PAYOUT_CREATE_RATE_LIMIT_PER_MINUTE"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8787")
	viper.SetDefault("DATA_FILE", "server/data/db.json")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "creatorstream:rate_limit")
	viper.SetDefault("PAYOUT_EVENT_EXCHANGE", "payout_events")
	viper.SetDefault("PAYOUT_QUEUE_DELAY_MS", 2000)
	viper.SetDefault("PAYOUT_PROCESS_DELAY_MS", 3000)
	viper.SetDefault("PAYOUT_TICK_INTERVAL_MS", 1500)
	viper.SetDefault("PAYOUT_LIST_LIMIT", 50)
	viper.SetDefault("PAYOUT_CREATE_RATE_LIMIT_PER_MINUTE", 0) // disabled

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	_ = viper.BindEnv("DATA_FILE")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("PAYOUT_EVENT_EXCHANGE")
	_ = viper.BindEnv("PAYOUT_QUEUE_DELAY_MS")
	_ = viper.BindEnv("PAYOUT_PROCESS_DELAY_MS")
	_ = viper.BindEnv("PAYOUT_TICK_INTERVAL_MS")
	_ = viper.BindEnv("PAYOUT_LIST_LIMIT")
	_ = viper.BindEnv("PAYOUT_CREATE_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "creatorstream:rate_limit"
	}

	if config.PayoutQueueDelayMs <= 0 {
		config.PayoutQueueDelayMs = 2000
	}
	if config.PayoutProcessDelayMs <= 0 {
		config.PayoutProcessDelayMs = 3000
	}
	if config.PayoutTickIntervalMs <= 0 {
		config.PayoutTickIntervalMs = 1500
	}
	if config.PayoutListLimit <= 0 {
		config.PayoutListLimit = 50
	}

	return
}
