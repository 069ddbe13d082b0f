package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	apihttp "github.com/MrJamesThe3rd/scango/internal/http"
	"github.com/MrJamesThe3rd/scango/internal/http/address"
	"github.com/MrJamesThe3rd/scango/internal/http/prices"
	txhttp "github.com/MrJamesThe3rd/scango/internal/http/transaction"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
	"github.com/MrJamesThe3rd/scango/internal/transaction/store"
)

func newRouter() http.Handler {
	gw := carrier.NewSimulated()

	return apihttp.New(
		apihttp.Options{Name: "Scan & Go", AllowedOrigins: []string{"*"}, Mode: gw.Mode()},
		address.NewHandler(gw),
		prices.NewHandler(gw),
		txhttp.NewHandler(transaction.NewService(store.NewMemory()), gw, nil),
	)
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "simulated", body["mode"])
}

func TestRouter_Index(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST /api/v1/transactions/{id}/label")
}

func TestRouter_RejectsNonJSONBodies(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/prices", strings.NewReader("weight=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/prices", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
