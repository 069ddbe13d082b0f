package redemption_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/scango/internal/redemption"
)

func TestEncode(t *testing.T) {
	dataURL, err := redemption.Encode(uuid.New())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, "data:image/png;base64,"))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
}

func TestDecode(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{
			name: "Valid",
			text: `{"type":"USPS_SCAN_GO","transactionId":"` + id.String() + `","version":"1.0"}`,
		},
		{
			name:    "WrongType",
			text:    `{"type":"OTHER","transactionId":"` + id.String() + `","version":"1.0"}`,
			wantErr: true,
		},
		{
			name:    "WrongVersion",
			text:    `{"type":"USPS_SCAN_GO","transactionId":"` + id.String() + `","version":"2.0"}`,
			wantErr: true,
		},
		{
			name:    "MissingID",
			text:    `{"type":"USPS_SCAN_GO","version":"1.0"}`,
			wantErr: true,
		},
		{
			name:    "NotJSON",
			text:    "hello",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := redemption.Decode(tt.text)

			if tt.wantErr {
				assert.True(t, errors.Is(err, redemption.ErrInvalidPayload))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, got.TransactionID)
		})
	}
}

func TestParseScan(t *testing.T) {
	id := uuid.New()

	got, err := redemption.ParseScan("  " + id.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = redemption.ParseScan(`{"type":"USPS_SCAN_GO","transactionId":"` + id.String() + `","version":"1.0"}`)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = redemption.ParseScan("not-a-token")
	assert.Error(t, err)
}
