package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Employee EmployeeConfig
	Display  DisplayConfig
	Geo      GeoConfig
	Events   EventsConfig
}

// AppConfig holds agent process configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// ServerConfig points at the VTab Square attendance API
type ServerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type EmployeeConfig struct {
	ID       string
	Timezone string
}

type DisplayConfig struct {
	TickInterval    time.Duration
	RefreshInterval time.Duration
}

// GeoConfig holds the optional position provider and office coordinates
type GeoConfig struct {
	ProviderURL string
	OfficeLat   float64
	OfficeLng   float64
	HasOffice   bool
}

// EventsConfig holds the realtime channel settings; empty Addr disables it
type EventsConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

func Load() (*Config, error) {
	// A .env file is optional; the environment may carry everything.
	_ = godotenv.Load()

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("AGENT_PORT", "8095"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("AGENT_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	serverTimeout, err := time.ParseDuration(getEnv("SERVER_TIMEOUT", "20s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_TIMEOUT: %w", err)
	}

	config.Server = ServerConfig{
		BaseURL: getEnv("SERVER_BASE_URL", ""),
		Timeout: serverTimeout,
	}

	config.Employee = EmployeeConfig{
		ID:       getEnv("EMPLOYEE_ID", ""),
		Timezone: getEnv("TZ_OVERRIDE", hostTimezone()),
	}

	tickInterval, err := time.ParseDuration(getEnv("TICK_INTERVAL", "1s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
	}
	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	config.Display = DisplayConfig{
		TickInterval:    tickInterval,
		RefreshInterval: refreshInterval,
	}

	config.Geo = GeoConfig{
		ProviderURL: getEnv("GEO_PROVIDER_URL", ""),
	}
	latStr := getEnv("OFFICE_LAT", "")
	lngStr := getEnv("OFFICE_LNG", "")
	if latStr != "" && lngStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OFFICE_LAT: %w", err)
		}
		lng, err := strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OFFICE_LNG: %w", err)
		}
		config.Geo.OfficeLat = lat
		config.Geo.OfficeLng = lng
		config.Geo.HasOffice = true
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Events = EventsConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		Channel:  getEnv("EVENTS_CHANNEL", "attendance:changed"),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("SERVER_BASE_URL is required")
	}
	if c.Employee.ID == "" {
		return fmt.Errorf("EMPLOYEE_ID is required")
	}
	if c.Display.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive")
	}
	if c.Display.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	return nil
}

// hostTimezone derives an IANA zone name from the host runtime, falling
// back to UTC when the zone cannot be named.
func hostTimezone() string {
	name := time.Now().Location().String()
	if name == "" || name == "Local" {
		return "UTC"
	}
	return name
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
