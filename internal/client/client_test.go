package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/scango/internal/auth"
	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/client"
	apihttp "github.com/MrJamesThe3rd/scango/internal/http"
	"github.com/MrJamesThe3rd/scango/internal/http/address"
	"github.com/MrJamesThe3rd/scango/internal/http/prices"
	txhttp "github.com/MrJamesThe3rd/scango/internal/http/transaction"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
	"github.com/MrJamesThe3rd/scango/internal/transaction/store"
)

type fixture struct {
	svc    *transaction.Service
	client *client.Client
}

func setup(t *testing.T, secret string) fixture {
	t.Helper()

	gw := carrier.NewSimulated()
	svc := transaction.NewService(store.NewMemory())
	signer := auth.NewSigner(secret, time.Minute)

	router := apihttp.New(
		apihttp.Options{AllowedOrigins: []string{"*"}, Mode: gw.Mode()},
		address.NewHandler(gw),
		prices.NewHandler(gw),
		txhttp.NewHandler(svc, gw, signer.Require(auth.RoleKiosk, auth.RoleClerk)),
	)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return fixture{svc: svc, client: client.New(ts.URL+"/", signer, "kiosk-1")}
}

func (f fixture) create(t *testing.T) *transaction.Transaction {
	t.Helper()

	tx, err := f.svc.Create(context.Background(), transaction.CreateParams{
		FromAddress:     carrier.Address{StreetAddress: "1600 Pennsylvania Ave NW", City: "Washington", State: "DC", ZIPCode: "20500"},
		ToAddress:       carrier.Address{StreetAddress: "1 Main St", City: "Springfield", State: "IL", ZIPCode: "62701"},
		Package:         transaction.Package{Weight: 32},
		SelectedService: "PRIORITY_MAIL",
		Price:           decimal.RequireFromString("9.85"),
	})
	require.NoError(t, err)

	return tx
}

func TestClient_KioskFlow(t *testing.T) {
	f := setup(t, "kiosk-secret")
	ctx := context.Background()

	tx := f.create(t)

	res, err := f.client.Verify(ctx, tx.ID)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, transaction.ReasonNotPaid, res.Error)

	_, err = f.client.IssueLabel(ctx, tx.ID)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	_, err = f.svc.RecordPayment(ctx, tx.ID, transaction.PaymentParams{})
	require.NoError(t, err)

	queue, err := f.client.Queue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, tx.ID, queue[0].ID)

	res, err = f.client.Verify(ctx, tx.ID)
	require.NoError(t, err)
	assert.True(t, res.ReadyForLabel)

	labeled, err := f.client.IssueLabel(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusLabeled, labeled.Transaction.Status)

	queue, err = f.client.Queue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	got, err := f.client.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, labeled.Label.TrackingNumber, *got.TrackingNumber)
}

func TestClient_VerifyUnknown(t *testing.T) {
	f := setup(t, "")

	res, err := f.client.Verify(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, transaction.ReasonNotFound, res.Error)
}

func TestClient_WrongSecretIsRejected(t *testing.T) {
	f := setup(t, "kiosk-secret")
	tx := f.create(t)

	gw := carrier.NewSimulated()
	ts := httptest.NewServer(apihttp.New(
		apihttp.Options{AllowedOrigins: []string{"*"}, Mode: gw.Mode()},
		address.NewHandler(gw),
		prices.NewHandler(gw),
		txhttp.NewHandler(f.svc, gw, auth.NewSigner("server-secret", time.Minute).Require()),
	))
	defer ts.Close()

	_, err := client.New(ts.URL, auth.NewSigner("kiosk-secret", time.Minute), "kiosk-1").Verify(context.Background(), tx.ID)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSaveLabel(t *testing.T) {
	dir := t.TempDir()

	path, err := client.SaveLabel(&wire.Label{TrackingNumber: "9400100000000000000001", LabelImage: new("JVBERi0="), LabelImageType: "PDF"}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "9400100000000000000001.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), data)

	path, err = client.SaveLabel(&wire.Label{TrackingNumber: "9400100000000000000002"}, dir)
	require.NoError(t, err)
	assert.Empty(t, path)
}
