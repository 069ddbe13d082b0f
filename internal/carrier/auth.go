package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// SimulatedToken is handed out instead of a real bearer token when no client
// credentials are configured.
const SimulatedToken = "SIMULATED"

// expiryMargin keeps a cached token from being used in its last minutes.
const expiryMargin = 5 * time.Minute

// Credential is a bearer token and the instant it stops being valid.
type Credential struct {
	Value     string
	ExpiresAt time.Time
}

func (c Credential) Simulated() bool {
	return c.Value == SimulatedToken
}

func (c Credential) usable(now time.Time) bool {
	return c.Value != "" && now.Before(c.ExpiresAt.Add(-expiryMargin))
}

type CredentialSource interface {
	Credential(ctx context.Context) (Credential, error)
	// Clear forgets the cached credential, e.g. after the carrier revoked it.
	Clear()
}

type AuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
}

// TokenSource obtains carrier tokens with the client-credentials grant and
// caches them until shortly before expiry. Concurrent refreshes share a
// single in-flight request.
type TokenSource struct {
	cfg    AuthConfig
	client *http.Client
	now    func() time.Time

	mu     sync.Mutex
	cached Credential
	group  singleflight.Group
}

func NewTokenSource(cfg AuthConfig, client *http.Client) *TokenSource {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	return &TokenSource{
		cfg:    cfg,
		client: client,
		now:    time.Now,
	}
}

// Configured reports whether client credentials are present.
func (s *TokenSource) Configured() bool {
	return s.cfg.ClientID != "" && s.cfg.ClientSecret != ""
}

// Credential returns the cached token while it is usable, the simulated
// sentinel when no credentials are configured, and otherwise a fresh token.
func (s *TokenSource) Credential(ctx context.Context) (Credential, error) {
	s.mu.Lock()
	cached := s.cached
	s.mu.Unlock()

	if cached.usable(s.now()) {
		return cached, nil
	}

	if !s.Configured() {
		return Credential{Value: SimulatedToken}, nil
	}

	// The shared refresh outlives any one caller; the client timeout bounds it.
	ch := s.group.DoChan("refresh", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return Credential{}, &Error{Kind: ErrAuthentication, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return Credential{}, res.Err
		}

		return res.Val.(Credential), nil
	}
}

// Clear drops the cached token so the next call re-authenticates.
func (s *TokenSource) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = Credential{}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *TokenSource) refresh(ctx context.Context) (Credential, error) {
	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.cfg.ClientID},
		"client_secret": {s.cfg.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, &Error{Kind: ErrAuthentication, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("failed to get carrier token", "error", err)
		return Credential{}, &Error{Kind: ErrAuthentication, Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("failed to get carrier token", "status", resp.StatusCode)
		return Credential{}, &Error{Kind: ErrAuthentication, StatusCode: resp.StatusCode}
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Credential{}, &Error{Kind: ErrAuthentication, Err: fmt.Errorf("decoding token: %w", err)}
	}

	if body.AccessToken == "" {
		return Credential{}, &Error{Kind: ErrAuthentication, Message: "carrier returned an empty access token"}
	}

	cred := Credential{
		Value:     body.AccessToken,
		ExpiresAt: s.now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}

	s.mu.Lock()
	s.cached = cred
	s.mu.Unlock()

	return cred, nil
}
