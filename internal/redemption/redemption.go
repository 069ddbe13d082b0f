// Package redemption builds the scannable token handed to a customer after a
// shipment is staged. The QR code carries only a type tag, the transaction id
// and a schema version. It is not signed: possession of a token proves
// nothing, the transaction's verification does.
package redemption

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	Type    = "USPS_SCAN_GO"
	Version = "1.0"

	imageSize     = 300
	dataURLPrefix = "data:image/png;base64,"
)

var ErrInvalidPayload = errors.New("invalid redemption payload")

type Payload struct {
	Type          string    `json:"type"`
	TransactionID uuid.UUID `json:"transactionId"`
	Version       string    `json:"version"`
}

// Encode renders the payload for id as a PNG QR code data URL.
func Encode(id uuid.UUID) (string, error) {
	content, err := json.Marshal(Payload{Type: Type, TransactionID: id, Version: Version})
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}

	png, err := qrcode.Encode(string(content), qrcode.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("generating qr code: %w", err)
	}

	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// Decode parses the text a scanner reads from the QR code.
func Decode(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if p.Type != Type {
		return Payload{}, fmt.Errorf("%w: unexpected type %q", ErrInvalidPayload, p.Type)
	}

	if p.Version != Version {
		return Payload{}, fmt.Errorf("%w: unsupported version %q", ErrInvalidPayload, p.Version)
	}

	if p.TransactionID == uuid.Nil {
		return Payload{}, fmt.Errorf("%w: missing transaction id", ErrInvalidPayload)
	}

	return p, nil
}

// ParseScan accepts either a full scanner payload or a bare transaction id
// typed in by a clerk.
func ParseScan(text string) (uuid.UUID, error) {
	text = strings.TrimSpace(text)

	if id, err := uuid.Parse(text); err == nil {
		return id, nil
	}

	p, err := Decode(text)
	if err != nil {
		return uuid.Nil, err
	}

	return p.TransactionID, nil
}
