package transaction

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/http/respond"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

type Handler struct {
	svc    *transaction.Service
	labels transaction.LabelIssuer
	guard  func(http.Handler) http.Handler
}

// NewHandler wires the transaction endpoints. guard protects the kiosk
// endpoints (verify and label); nil leaves them open.
func NewHandler(svc *transaction.Service, labels transaction.LabelIssuer, guard func(http.Handler) http.Handler) *Handler {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	return &Handler{svc: svc, labels: labels, guard: guard}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/payment", h.recordPayment)

	r.Group(func(r chi.Router) {
		r.Use(h.guard)
		r.Post("/{id}/verify", h.verify)
		r.Post("/{id}/label", h.issueLabel)
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.params()
	if err != nil {
		respond.Err(w, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), params)
	if err != nil {
		respond.Err(w, err)
		return
	}

	slog.Info("transaction created", "transaction_id", tx.ID, "service", tx.SelectedService)

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(transaction.Status(s))
	}

	if s := r.URL.Query().Get("payment_status"); s != "" {
		filter.PaymentStatus = new(transaction.PaymentStatus(s))
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.Update(r.Context(), id, req.params())
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req paymentRequest

	// The body is optional.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.RecordPayment(r.Context(), id, transaction.PaymentParams{
		PaymentID: req.PaymentID,
		Method:    req.PaymentMethod,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	slog.Info("payment recorded", "transaction_id", tx.ID, "payment_id", *tx.PaymentID)

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Verify(r.Context(), id)
	if err != nil {
		respond.Err(w, err)
		return
	}

	resp := wire.VerifyResponse{
		Success:       res.Valid,
		Valid:         res.Valid,
		ReadyForLabel: res.ReadyForLabel,
		Error:         res.Reason,
		Transaction:   wire.FromTransaction(res.Transaction),
	}

	switch {
	case res.Valid:
		respond.JSON(w, http.StatusOK, resp)
	case res.Reason == transaction.ReasonNotFound:
		respond.JSON(w, http.StatusNotFound, resp)
	default:
		respond.JSON(w, http.StatusBadRequest, resp)
	}
}

func (h *Handler) issueLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	tx, label, err := h.svc.IssueLabel(r.Context(), id, h.labels)
	if err != nil {
		slog.Warn("label not issued", "transaction_id", id, "error", err)
		respond.Err(w, err)

		return
	}

	slog.Info("label issued", "transaction_id", tx.ID, "tracking_number", label.TrackingNumber)

	respond.JSON(w, http.StatusOK, wire.LabelResponse{
		Success:     true,
		Label:       wire.FromLabel(label),
		Transaction: wire.FromTransaction(tx),
	})
}
