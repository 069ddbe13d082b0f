package carrier

import (
	"context"
	"net/http"
	"time"
)

//go:generate mockgen -source=gateway.go -destination=gateway_mock.go -package=carrier
type Gateway interface {
	ValidateAddress(ctx context.Context, addr Address) (*StandardizedAddress, error)
	Rates(ctx context.Context, req RateRequest) ([]RateQuote, error)
	CreateLabel(ctx context.Context, req LabelRequest) (*Label, error)
	Mode() Mode
}

type Config struct {
	BaseURL string
	Auth    AuthConfig
	Timeout time.Duration
}

// New picks the gateway implementation once, from the configured
// credentials. The returned TokenSource is shared by the live gateway.
func New(cfg Config) (Gateway, *TokenSource) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &http.Client{Timeout: timeout}
	tokens := NewTokenSource(cfg.Auth, client)

	if !tokens.Configured() {
		return NewSimulated(), tokens
	}

	return NewLive(cfg.BaseURL, client, tokens), tokens
}
