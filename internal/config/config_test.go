package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/scango/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CARRIER_CONSUMER_KEY", "")
	t.Setenv("CARRIER_CONSUMER_SECRET", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Carrier.Timeout)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Simulated())
	assert.Equal(t, "https://apis-tem.usps.com", cfg.CarrierBaseURL())
	assert.Equal(t, 5*time.Minute, cfg.Kiosk.TokenTTL)
	assert.Equal(t, "./labels", cfg.Kiosk.LabelDir)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestConfig_CarrierBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		baseURL string
		want    string
	}{
		{name: "Production", env: "production", want: "https://apis.usps.com"},
		{name: "Testing", env: "testing", want: "https://apis-tem.usps.com"},
		{name: "Override", env: "production", baseURL: "http://localhost:9999/", want: "http://localhost:9999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Carrier.Env = tt.env
			cfg.Carrier.BaseURL = tt.baseURL

			assert.Equal(t, tt.want, cfg.CarrierBaseURL())
		})
	}
}

func TestConfig_Simulated(t *testing.T) {
	cfg := &config.Config{}
	cfg.Carrier.ConsumerKey = "key"
	assert.True(t, cfg.Simulated())

	cfg.Carrier.ConsumerSecret = "secret"
	assert.False(t, cfg.Simulated())
}
