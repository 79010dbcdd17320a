/**
 * @description
 * This package handles the configuration management for the service. It uses the
 * Viper library to read configuration from environment variables, providing a
 * centralized and straightforward way to manage application settings.
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

// Config holds all the configuration variables for the transfer-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort          string `mapstructure:"SERVER_PORT"`
	DatabaseURL         string `mapstructure:"DATABASE_URL"`
	RedisURL            string `mapstructure:"REDIS_URL"`
	RedisPendingPrefix  string `mapstructure:"REDIS_PENDING_PREFIX"`
	RabbitMQURL         string `mapstructure:"RABBITMQ_URL"`
	JWKSURL             string `mapstructure:"JWKS_URL"`
	InternalAPIKey      string `mapstructure:"INTERNAL_API_KEY"`
	VerifyServiceURL    string `mapstructure:"VERIFY_SERVICE_URL"`
	VerifyServiceAPIKey string `mapstructure:"VERIFY_SERVICE_API_KEY"`
	IntentServiceURL    string `mapstructure:"INTENT_SERVICE_URL"`
	IntentServiceAPIKey string `mapstructure:"INTENT_SERVICE_API_KEY"`
	PendingTTLMinutes   int    `mapstructure:"PENDING_TTL_MINUTES"`
	PINMaxAttempts      int    `mapstructure:"PIN_MAX_ATTEMPTS"`
	PINLockoutSeconds   int    `mapstructure:"PIN_LOCKOUT_SECONDS"`
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
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_PENDING_PREFIX", "swiftsend:pending")
	viper.SetDefault("PENDING_TTL_MINUTES", 15)
	viper.SetDefault("PIN_MAX_ATTEMPTS", 3)
	viper.SetDefault("PIN_LOCKOUT_SECONDS", 600)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "TRANSFER_REDIS_URL")
	_ = viper.BindEnv("REDIS_PENDING_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("JWKS_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "TRANSFER_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("VERIFY_SERVICE_URL")
	_ = viper.BindEnv("VERIFY_SERVICE_API_KEY")
	_ = viper.BindEnv("INTENT_SERVICE_URL")
	_ = viper.BindEnv("INTENT_SERVICE_API_KEY")
	_ = viper.BindEnv("PENDING_TTL_MINUTES")
	_ = viper.BindEnv("PIN_MAX_ATTEMPTS")
	_ = viper.BindEnv("PIN_LOCKOUT_SECONDS")

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
	if strings.TrimSpace(config.InternalAPIKey) == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("TRANSFER_SERVICE_INTERNAL_API_KEY"))
	}
	if strings.TrimSpace(config.VerifyServiceAPIKey) == "" {
		config.VerifyServiceAPIKey = config.InternalAPIKey
	}
	if strings.TrimSpace(config.IntentServiceAPIKey) == "" {
		config.IntentServiceAPIKey = config.InternalAPIKey
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisPendingPrefix = strings.TrimSpace(config.RedisPendingPrefix)
	if config.RedisPendingPrefix == "" {
		config.RedisPendingPrefix = "swiftsend:pending"
	}

	if config.PendingTTLMinutes <= 0 {
		config.PendingTTLMinutes = 15
	}
	if config.PINMaxAttempts <= 0 {
		config.PINMaxAttempts = 3
	}
	if config.PINLockoutSeconds <= 0 {
		config.PINLockoutSeconds = 600
	}

	return
}
