package prices

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
	r.Post("/", h.search)
}

type searchRequest struct {
	OriginZIPCode      string           `json:"originZIPCode"`
	DestinationZIPCode string           `json:"destinationZIPCode"`
	Weight             float64          `json:"weight"`
	Dimensions         *wire.Dimensions `json:"dimensions"`
	MailClass          string           `json:"mailClass"`
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.OriginZIPCode == "" || req.DestinationZIPCode == "" || req.Weight <= 0 {
		respond.Error(w, http.StatusBadRequest, "Missing required fields: originZIPCode, destinationZIPCode, weight")
		return
	}

	quotes, err := h.gw.Rates(r.Context(), carrier.RateRequest{
		OriginZIPCode:      req.OriginZIPCode,
		DestinationZIPCode: req.DestinationZIPCode,
		Weight:             req.Weight,
		Dimensions:         req.Dimensions.Carrier(),
		MailClass:          req.MailClass,
	})
	if err != nil {
		respond.Err(w, err)
		return
	}

	respond.JSON(w, http.StatusOK, wire.RatesResponse{Success: true, Rates: wire.FromRates(quotes)})
}
