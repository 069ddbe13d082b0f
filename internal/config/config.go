package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	carrierProductionURL = "https://apis.usps.com"
	carrierTestingURL    = "https://apis-tem.usps.com"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Scan & Go"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Store struct {
		Driver   string `envconfig:"STORE_DRIVER" default:"memory"`
		BoltPath string `envconfig:"STORE_BOLT_PATH" default:"scango.db"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"scango"`
	}

	Carrier struct {
		ConsumerKey    string        `envconfig:"CARRIER_CONSUMER_KEY"`
		ConsumerSecret string        `envconfig:"CARRIER_CONSUMER_SECRET"`
		Env            string        `envconfig:"CARRIER_ENV" default:"testing"`
		BaseURL        string        `envconfig:"CARRIER_BASE_URL"`
		OAuthURL       string        `envconfig:"CARRIER_OAUTH_URL" default:"https://apis.usps.com/oauth2/v3/token"`
		Timeout        time.Duration `envconfig:"CARRIER_TIMEOUT" default:"5s"`
	}

	Kiosk struct {
		JWTSecret string        `envconfig:"KIOSK_JWT_SECRET"`
		TokenTTL  time.Duration `envconfig:"KIOSK_TOKEN_TTL" default:"5m"`
		APIURL    string        `envconfig:"KIOSK_API_URL" default:"http://localhost:8080"`
		ID        string        `envconfig:"KIOSK_ID" default:"kiosk-1"`
		LabelDir  string        `envconfig:"KIOSK_LABEL_DIR" default:"./labels"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// CarrierBaseURL resolves the carrier API root. An explicit CARRIER_BASE_URL
// wins over the environment switch.
func (c *Config) CarrierBaseURL() string {
	if c.Carrier.BaseURL != "" {
		return strings.TrimSuffix(c.Carrier.BaseURL, "/")
	}

	if strings.EqualFold(c.Carrier.Env, "production") {
		return carrierProductionURL
	}

	return carrierTestingURL
}

// Simulated reports whether carrier calls are answered locally because no
// client credentials are configured.
func (c *Config) Simulated() bool {
	return c.Carrier.ConsumerKey == "" || c.Carrier.ConsumerSecret == ""
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Store.Driver {
	case "memory", "bolt", "postgres":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return &cfg, nil
}
