package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/http/address"
	"github.com/MrJamesThe3rd/scango/internal/http/prices"
	"github.com/MrJamesThe3rd/scango/internal/http/respond"
	"github.com/MrJamesThe3rd/scango/internal/http/transaction"
)

type Options struct {
	Name           string
	AllowedOrigins []string
	Mode           carrier.Mode
}

var endpoints = map[string]string{
	"GET /health":                            "Service health and carrier mode",
	"POST /api/v1/address/validate":          "Validate and standardize an address",
	"POST /api/v1/prices":                    "Get shipping rates for a package",
	"POST /api/v1/transactions":              "Create a new shipping transaction",
	"GET /api/v1/transactions":               "List transactions",
	"GET /api/v1/transactions/{id}":          "Get transaction details",
	"PATCH /api/v1/transactions/{id}":        "Update package contents, declared value or hazmat flag",
	"POST /api/v1/transactions/{id}/payment": "Mark transaction as paid",
	"POST /api/v1/transactions/{id}/verify":  "Verify transaction (kiosk/clerk)",
	"POST /api/v1/transactions/{id}/label":   "Create shipping label (kiosk/clerk)",
}

func New(
	opts Options,
	addressV1 *address.Handler,
	pricesV1 *prices.Handler,
	transactionsV1 *transaction.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"mode":      opts.Mode,
			"timestamp": time.Now().UTC(),
		})
	})

	router.Get("/api", func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]any{
			"name":      opts.Name,
			"version":   "1.0.0",
			"endpoints": endpoints,
		})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Route("/address", addressV1.Routes)
		r.Route("/prices", pricesV1.Routes)
		r.Route("/transactions", transactionsV1.Routes)
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found")
	})

	return router
}
