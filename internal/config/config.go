package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	ServiceName string
	Store       StoreConfig
	Auth        AuthConfig
	API         APIConfig
	MQTT        MQTTConfig
	Monitor     MonitorConfig
	Chart       ChartConfig
}

// StoreConfig holds realtime store connection settings
type StoreConfig struct {
	BaseURL   string
	AuthToken string
}

// AuthConfig holds hosted auth service settings
type AuthConfig struct {
	BaseURL string
	APIKey  string
}

// APIConfig holds the account API endpoint settings
type APIConfig struct {
	BaseURL string
}

// MQTTConfig holds the notification broker settings
type MQTTConfig struct {
	BrokerURL            string
	ClientID             string
	Username             string
	Password             string
	NotificationsEnabled bool
}

// MonitorConfig holds device monitoring settings
type MonitorConfig struct {
	HistoryLimit       int
	FillAlertThreshold int
}

// ChartConfig holds chart rendering settings
type ChartConfig struct {
	Width     int
	Height    int
	OutputDir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		ServiceName: getEnv("SERVICE_NAME", "drainwatch"),
		Store: StoreConfig{
			BaseURL:   getEnv("STORE_BASE_URL", ""),
			AuthToken: getEnv("STORE_AUTH_TOKEN", ""),
		},
		Auth: AuthConfig{
			BaseURL: getEnv("AUTH_BASE_URL", ""),
			APIKey:  getEnv("AUTH_API_KEY", ""),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", ""),
		},
		MQTT: MQTTConfig{
			BrokerURL:            getEnv("MQTT_BROKER_URL", ""),
			ClientID:             getEnv("MQTT_CLIENT_ID", ""),
			Username:             getEnv("MQTT_USERNAME", ""),
			Password:             getEnv("MQTT_PASSWORD", ""),
			NotificationsEnabled: getEnvAsBool("NOTIFICATIONS_ENABLED", true),
		},
		Monitor: MonitorConfig{
			HistoryLimit:       getEnvAsInt("MONITOR_HISTORY_LIMIT", 10),
			FillAlertThreshold: getEnvAsInt("MONITOR_FILL_ALERT_THRESHOLD", 70),
		},
		Chart: ChartConfig{
			Width:     getEnvAsInt("CHART_WIDTH", 900),
			Height:    getEnvAsInt("CHART_HEIGHT", 500),
			OutputDir: getEnv("CHART_OUTPUT_DIR", "."),
		},
	}

	// Validate required fields
	if cfg.Store.BaseURL == "" {
		return nil, fmt.Errorf("STORE_BASE_URL is required but not set in environment variables")
	}
	if cfg.Auth.BaseURL == "" {
		return nil, fmt.Errorf("AUTH_BASE_URL is required but not set in environment variables")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
