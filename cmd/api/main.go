package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/scango/internal/auth"
	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/config"
	"github.com/MrJamesThe3rd/scango/internal/database"
	apihttp "github.com/MrJamesThe3rd/scango/internal/http"
	addressHandler "github.com/MrJamesThe3rd/scango/internal/http/address"
	pricesHandler "github.com/MrJamesThe3rd/scango/internal/http/prices"
	txHandler "github.com/MrJamesThe3rd/scango/internal/http/transaction"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
	txStore "github.com/MrJamesThe3rd/scango/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	gateway, _ := carrier.New(carrier.Config{
		BaseURL: cfg.CarrierBaseURL(),
		Auth: carrier.AuthConfig{
			TokenURL:     cfg.Carrier.OAuthURL,
			ClientID:     cfg.Carrier.ConsumerKey,
			ClientSecret: cfg.Carrier.ConsumerSecret,
		},
		Timeout: cfg.Carrier.Timeout,
	})

	var (
		transactionService = transaction.NewService(repo)
		signer             = auth.NewSigner(cfg.Kiosk.JWTSecret, cfg.Kiosk.TokenTTL)
	)

	if !signer.Enabled() {
		slog.Warn("KIOSK_JWT_SECRET not set, verify and label endpoints are unauthenticated")
	}

	var (
		addressH     = addressHandler.NewHandler(gateway)
		pricesH      = pricesHandler.NewHandler(gateway)
		transactionH = txHandler.NewHandler(transactionService, gateway, signer.Require(auth.RoleKiosk, auth.RoleClerk))
	)

	router := apihttp.New(apihttp.Options{
		Name:           cfg.App.Name,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Mode:           gateway.Mode(),
	}, addressH, pricesH, transactionH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server",
		"port", srv.Addr,
		"mode", gateway.Mode(),
		"store", cfg.Store.Driver,
		"carrier", cfg.CarrierBaseURL(),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (transaction.Repository, func(), error) {
	switch cfg.Store.Driver {
	case "bolt":
		s, err := txStore.OpenBolt(cfg.Store.BoltPath)
		if err != nil {
			return nil, nil, err
		}

		return s, func() { _ = s.Close() }, nil
	case "postgres":
		db, err := database.New(ctx, cfg.ConnectionString())
		if err != nil {
			return nil, nil, err
		}

		s := txStore.NewPostgres(db)
		if err := s.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrating schema: %w", err)
		}

		return s, func() { _ = db.Close() }, nil
	default:
		return txStore.NewMemory(), func() {}, nil
	}
}
