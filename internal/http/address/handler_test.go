package address_test

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
	"github.com/MrJamesThe3rd/scango/internal/http/address"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
)

func serve(gw carrier.Gateway, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/address", address.NewHandler(gw).Routes)

	req := httptest.NewRequest(http.MethodPost, "/address/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Validate(t *testing.T) {
	rec := serve(carrier.NewSimulated(), `{"streetAddress": "1 main st", "city": "springfield", "state": "il", "ZIPCode": "62701"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp wire.AddressResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "1 MAIN ST", resp.Address.StreetAddress)
	assert.Equal(t, "SPRINGFIELD", resp.Address.City)
	assert.Equal(t, "62701", resp.Address.ZIPCode)
	assert.Equal(t, "C000", resp.AdditionalInfo.CarrierRoute)
}

func TestHandler_ValidateMissingFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := carrier.NewMockGateway(ctrl)

	rec := serve(gw, `{"streetAddress": "1 main st"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields")
}

func TestHandler_ValidateCarrierErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "Rejected",
			err:  &carrier.Error{Kind: carrier.ErrAddressValidation, Message: "Address Not Found.", StatusCode: http.StatusBadRequest},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "Unavailable",
			err:  &carrier.Error{Kind: carrier.ErrAddressValidation},
			want: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			gw := carrier.NewMockGateway(ctrl)
			gw.EXPECT().ValidateAddress(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			rec := serve(gw, `{"streetAddress": "1 main st", "city": "springfield", "state": "il"}`)
			assert.Equal(t, tt.want, rec.Code)

			var resp wire.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.err.Error(), resp.Error)
		})
	}
}
