package address

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/http/respond"
	"github.com/MrJamesThe3rd/scango/internal/http/wire"
)

type Handler struct {
	gw carrier.Gateway
}

func NewHandler(gw carrier.Gateway) *Handler {
	return &Handler{gw: gw}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/validate", h.validate)
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req wire.Address
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.StreetAddress == "" || req.City == "" || req.State == "" {
		respond.Error(w, http.StatusBadRequest, "Missing required fields: streetAddress, city, state")
		return
	}

	res, err := h.gw.ValidateAddress(r.Context(), req.Carrier())
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, wire.AddressResponse{
		Success:        true,
		Firm:           res.Firm,
		Address:        wire.FromAddress(res.Address),
		AdditionalInfo: res.AdditionalInfo,
	})
}
