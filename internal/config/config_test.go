package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SERVER_BASE_URL", "https://hr.example.com")
	t.Setenv("EMPLOYEE_ID", "emp-42")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8095, cfg.App.Port)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, "https://hr.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "emp-42", cfg.Employee.ID)
	assert.NotEmpty(t, cfg.Employee.Timezone)
	assert.Equal(t, time.Second, cfg.Display.TickInterval)
	assert.Equal(t, time.Minute, cfg.Display.RefreshInterval)
	assert.False(t, cfg.Geo.HasOffice)
	assert.Equal(t, "attendance:changed", cfg.Events.Channel)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("AGENT_PORT", "9100")
	t.Setenv("TZ_OVERRIDE", "Asia/Kolkata")
	t.Setenv("TICK_INTERVAL", "250ms")
	t.Setenv("REFRESH_INTERVAL", "30s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.App.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.Employee.Timezone)
	assert.Equal(t, 250*time.Millisecond, cfg.Display.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.Display.RefreshInterval)
	assert.Equal(t, "localhost:6379", cfg.Events.Addr)
	assert.Equal(t, 2, cfg.Events.DB)
}

func TestLoad_OfficeCoordinates(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("OFFICE_LAT", "12.9716")
	t.Setenv("OFFICE_LNG", "77.5946")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Geo.HasOffice)
	assert.InDelta(t, 12.9716, cfg.Geo.OfficeLat, 1e-9)
	assert.InDelta(t, 77.5946, cfg.Geo.OfficeLng, 1e-9)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "AGENT_PORT", "not-a-number"},
		{"bad timeout", "SERVER_TIMEOUT", "twenty seconds"},
		{"bad tick", "TICK_INTERVAL", "1 second"},
		{"bad office lat", "OFFICE_LAT", "north"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			if tt.key == "OFFICE_LAT" {
				t.Setenv("OFFICE_LNG", "77.59")
			}
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Run("no server base url", func(t *testing.T) {
		t.Setenv("SERVER_BASE_URL", "")
		t.Setenv("EMPLOYEE_ID", "emp-42")
		_, err := Load()
		assert.ErrorContains(t, err, "SERVER_BASE_URL")
	})

	t.Run("no employee id", func(t *testing.T) {
		t.Setenv("SERVER_BASE_URL", "https://hr.example.com")
		t.Setenv("EMPLOYEE_ID", "")
		_, err := Load()
		assert.ErrorContains(t, err, "EMPLOYEE_ID")
	})
}

func TestValidate_Intervals(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{BaseURL: "https://hr.example.com"},
		Employee: EmployeeConfig{ID: "emp-42"},
		Display:  DisplayConfig{TickInterval: 0, RefreshInterval: time.Minute},
	}
	assert.ErrorContains(t, cfg.Validate(), "TICK_INTERVAL")

	cfg.Display.TickInterval = time.Second
	cfg.Display.RefreshInterval = 0
	assert.ErrorContains(t, cfg.Validate(), "REFRESH_INTERVAL")
}
