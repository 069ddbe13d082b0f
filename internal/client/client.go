// Package client talks to the Scan & Go API on behalf of a counter kiosk.
package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/auth"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}

	return e.Message
}

type Client struct {
	baseURL string
	client  *http.Client
	signer  *auth.Signer
	kioskID string
}

// New creates a Client. signer may be disabled, in which case requests carry
// no Authorization header.
func New(baseURL string, signer *auth.Signer, kioskID string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		signer:  signer,
		kioskID: kioskID,
	}
}

func (c *Client) Get(ctx context.Context, id uuid.UUID) (*wire.Transaction, error) {
	var resp wire.TransactionResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/transactions/"+id.String(), &resp); err != nil {
		return nil, err
	}

	return resp.Transaction, nil
}

// Queue lists paid transactions that still await a label.
func (c *Client) Queue(ctx context.Context) ([]*wire.Transaction, error) {
	q := url.Values{}
	q.Set("status", "pending")
	q.Set("payment_status", "paid")

	var resp wire.TransactionListResponse
	if err := c.call(ctx, http.MethodGet, "/api/v1/transactions?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	return resp.Transactions, nil
}

// Verify returns the verification outcome. Unknown and unpaid transactions
// come back as an invalid result, not an error.
func (c *Client) Verify(ctx context.Context, id uuid.UUID) (*wire.VerifyResponse, error) {
	var resp wire.VerifyResponse

	err := c.call(ctx, http.MethodPost, "/api/v1/transactions/"+id.String()+"/verify", &resp)

	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusNotFound) {
		return &resp, nil
	}

	if err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) IssueLabel(ctx context.Context, id uuid.UUID) (*wire.LabelResponse, error) {
	var resp wire.LabelResponse
	if err := c.call(ctx, http.MethodPost, "/api/v1/transactions/"+id.String()+"/label", &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// call decodes the body into out for every status, so soft failures keep
// their payload alongside the returned APIError.
func (c *Client) call(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.signer != nil && c.signer.Enabled() {
		token, err := c.signer.Issue(c.kioskID, auth.RoleKiosk)
		if err != nil {
			return fmt.Errorf("issuing kiosk token: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var e wire.ErrorResponse

		_ = json.Unmarshal(body, &e)
		_ = json.Unmarshal(body, out)

		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// SaveLabel writes the label PDF into dir and returns its path. Simulated
// labels carry no image; the returned path is then empty.
func SaveLabel(label *wire.Label, dir string) (string, error) {
	if label == nil || label.LabelImage == nil {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(*label.LabelImage)
	if err != nil {
		return "", fmt.Errorf("decoding label image: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	ext := ".pdf"
	if label.LabelImageType != "" && !strings.EqualFold(label.LabelImageType, "PDF") {
		ext = "." + strings.ToLower(label.LabelImageType)
	}

	path := filepath.Join(dir, label.TrackingNumber+ext)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}
