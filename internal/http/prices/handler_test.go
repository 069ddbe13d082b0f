package prices_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/http/prices"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
)

func serve(gw carrier.Gateway, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/prices", prices.NewHandler(gw).Routes)

	req := httptest.NewRequest(http.MethodPost, "/prices", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Search(t *testing.T) {
	rec := serve(carrier.NewSimulated(), `{"originZIPCode": "20500", "destinationZIPCode": "62701", "weight": 32}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp wire.RatesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	require.Len(t, resp.Rates, 4)
	assert.Equal(t, "PRIORITY_MAIL", resp.Rates[0].ProductID)
	assert.InDelta(t, 19.70, resp.Rates[0].TotalPrice, 0.0001)
	assert.NotNil(t, resp.Rates[0].ExtraServices)
}

func TestHandler_SearchDefaultsDimensions(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := carrier.NewMockGateway(ctrl)

	gw.EXPECT().
		Rates(gomock.Any(), carrier.RateRequest{
			OriginZIPCode:      "20500",
			DestinationZIPCode: "62701",
			Weight:             4,
			Dimensions:         carrier.DefaultDimensions,
			MailClass:          "GROUND_ADVANTAGE",
		}).
		Return([]carrier.RateQuote{}, nil)

	rec := serve(gw, `{"originZIPCode": "20500", "destinationZIPCode": "62701", "weight": 4, "mailClass": "GROUND_ADVANTAGE"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_SearchMissingFields(t *testing.T) {
	rec := serve(carrier.NewMockGateway(gomock.NewController(t)), `{"originZIPCode": "20500", "weight": 4}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "destinationZIPCode")
}

func TestHandler_SearchCarrierFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := carrier.NewMockGateway(ctrl)

	gw.EXPECT().
		Rates(gomock.Any(), gomock.Any()).
		Return(nil, &carrier.Error{Kind: carrier.ErrRateLookup, StatusCode: http.StatusServiceUnavailable})

	rec := serve(gw, `{"originZIPCode": "20500", "destinationZIPCode": "62701", "weight": 4}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to get pricing")
}
