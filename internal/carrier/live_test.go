package carrier_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
)

type staticCredentials struct {
	cred carrier.Credential
	err  error
}

func (s staticCredentials) Credential(context.Context) (carrier.Credential, error) {
	return s.cred, s.err
}

func (staticCredentials) Clear() {}

// revocableCredentials counts how often the gateway drops its token.
type revocableCredentials struct {
	staticCredentials
	cleared atomic.Int32
}

func (r *revocableCredentials) Clear() {
	r.cleared.Add(1)
}

var liveToken = staticCredentials{cred: carrier.Credential{Value: "live-token", ExpiresAt: time.Now().Add(time.Hour)}}

func newCarrierServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer live-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func TestLive_ValidateAddress(t *testing.T) {
	ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/addresses/v3/address", r.URL.Path)
		assert.Equal(t, "1 main st", r.URL.Query().Get("streetAddress"))
		assert.Equal(t, "IL", r.URL.Query().Get("state"))

		w.Write([]byte(`{
			"firm": null,
			"address": {"streetAddress": "1 MAIN ST", "city": "SPRINGFIELD", "state": "IL", "ZIPCode": "62701", "ZIPPlus4": "1234"},
			"addressAdditionalInfo": {"deliveryPoint": "01", "carrierRoute": "C001", "DPVConfirmation": "Y"}
		}`))
	})

	gw := carrier.NewLive(ts.URL, ts.Client(), liveToken)

	got, err := gw.ValidateAddress(context.Background(), carrier.Address{
		StreetAddress: "1 main st",
		City:          "springfield",
		State:         "IL",
	})
	require.NoError(t, err)

	assert.Equal(t, "1 MAIN ST", got.Address.StreetAddress)
	assert.Equal(t, "1234", got.Address.ZIPPlus4)
	assert.Equal(t, "C001", got.AdditionalInfo.CarrierRoute)
}

func TestLive_ValidateAddressCarrierMessage(t *testing.T) {
	ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Address Not Found."}}`))
	})

	gw := carrier.NewLive(ts.URL, ts.Client(), liveToken)

	_, err := gw.ValidateAddress(context.Background(), carrier.Address{StreetAddress: "x", City: "y", State: "ZZ"})
	require.Error(t, err)

	assert.True(t, errors.Is(err, carrier.ErrAddressValidation))
	assert.Equal(t, "Address Not Found.", err.Error())

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, http.StatusBadRequest, cerr.StatusCode)
	assert.True(t, cerr.Rejected())
}

func TestLive_RatesGenericMessage(t *testing.T) {
	ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	gw := carrier.NewLive(ts.URL, ts.Client(), liveToken)

	_, err := gw.Rates(context.Background(), carrier.RateRequest{OriginZIPCode: "1", DestinationZIPCode: "2", Weight: 1})
	require.Error(t, err)

	assert.True(t, errors.Is(err, carrier.ErrRateLookup))
	assert.Equal(t, "failed to get pricing", err.Error())

	var cerr *carrier.Error
	require.True(t, errors.As(err, &cerr))
	assert.False(t, cerr.Rejected())
}

func TestLive_Rates(t *testing.T) {
	ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices/v3/base-rates/search", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "MACHINABLE", body["processingCategory"])
		assert.Equal(t, "DR", body["rateIndicator"])
		assert.Equal(t, "PRIORITY_MAIL", body["mailClass"])
		assert.InDelta(t, 6, body["length"], 0.001)

		w.Write([]byte(`{"totalBasePrice": 11.2, "rates": [{"SKU": "DPXX0XXXXX07200", "description": "Priority Mail Machinable Dimensional Rectangular", "price": 11.2, "zone": "05", "mailClass": "PRIORITY_MAIL"}]}`))
	})

	gw := carrier.NewLive(ts.URL, ts.Client(), liveToken)

	quotes, err := gw.Rates(context.Background(), carrier.RateRequest{
		OriginZIPCode:      "20500",
		DestinationZIPCode: "62701",
		Weight:             24,
	})
	require.NoError(t, err)
	require.Len(t, quotes, 1)

	assert.Equal(t, "DPXX0XXXXX07200", quotes[0].ProductID)
	assert.Equal(t, "11.20", quotes[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "05", quotes[0].Zone)
	assert.Empty(t, quotes[0].ExtraServices)
}

func TestLive_CreateLabel(t *testing.T) {
	ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/labels/v3/label", r.URL.Path)

		var body struct {
			ImageInfo struct {
				ImageType string `json:"imageType"`
				LabelType string `json:"labelType"`
			} `json:"imageInfo"`
			ToAddress struct {
				FirstName string `json:"firstName"`
			} `json:"toAddress"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		assert.Equal(t, "PDF", body.ImageInfo.ImageType)
		assert.Equal(t, "4X6LABEL", body.ImageInfo.LabelType)
		assert.Equal(t, "Ada", body.ToAddress.FirstName)

		w.Write([]byte(`{"labelMetadata": {"labelBrokerID": "lb-1", "trackingNumber": "9400100000000000000001", "postage": 9.85}, "labelImage": "JVBERi0="}`))
	})

	gw := carrier.NewLive(ts.URL, ts.Client(), liveToken)

	label, err := gw.CreateLabel(context.Background(), carrier.LabelRequest{
		ToAddress: carrier.Address{FirstName: "Ada", StreetAddress: "1 MAIN ST", City: "SPRINGFIELD", State: "IL", ZIPCode: "62701"},
		MailClass: "PRIORITY_MAIL",
		Weight:    32,
	})
	require.NoError(t, err)

	assert.Equal(t, "lb-1", label.ID)
	assert.Equal(t, "9400100000000000000001", label.TrackingNumber)
	assert.Equal(t, "9.85", label.Price.StringFixed(2))
	assert.Equal(t, []byte("%PDF-"), label.Image)
}

func TestLive_AuthenticationFailurePropagates(t *testing.T) {
	gw := carrier.NewLive("http://127.0.0.1:0", nil, staticCredentials{
		err: &carrier.Error{Kind: carrier.ErrAuthentication},
	})

	_, err := gw.CreateLabel(context.Background(), carrier.LabelRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, carrier.ErrAuthentication))
}

func TestLive_SimulatedCredentialFallsBack(t *testing.T) {
	gw := carrier.NewLive("http://127.0.0.1:0", nil, staticCredentials{
		cred: carrier.Credential{Value: carrier.SimulatedToken},
	})

	quotes, err := gw.Rates(context.Background(), carrier.RateRequest{Weight: 4})
	require.NoError(t, err)
	assert.Len(t, quotes, 4)
}

func TestLive_Timeout(t *testing.T) {
	ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	client := ts.Client()
	client.Timeout = 50 * time.Millisecond

	gw := carrier.NewLive(ts.URL, client, liveToken)

	_, err := gw.Rates(context.Background(), carrier.RateRequest{Weight: 4})
	require.Error(t, err)
	assert.True(t, errors.Is(err, carrier.ErrRateLookup))
}

func TestLive_RevokedTokenIsCleared(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantCleared int32
	}{
		{name: "Unauthorized", status: http.StatusUnauthorized, wantCleared: 1},
		{name: "Forbidden", status: http.StatusForbidden, wantCleared: 1},
		{name: "BadRequest", status: http.StatusBadRequest, wantCleared: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newCarrierServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			creds := &revocableCredentials{staticCredentials: liveToken}
			gw := carrier.NewLive(ts.URL, ts.Client(), creds)

			_, err := gw.Rates(context.Background(), carrier.RateRequest{OriginZIPCode: "20500", DestinationZIPCode: "62701", Weight: 4})
			require.Error(t, err)
			assert.Equal(t, tt.wantCleared, creds.cleared.Load())
		})
	}
}
