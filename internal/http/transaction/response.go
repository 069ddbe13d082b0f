package transaction

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/scango/internal/http/wire"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

type createTransactionRequest struct {
	FromAddress     *wire.Address    `json:"fromAddress"`
	ToAddress       *wire.Address    `json:"toAddress"`
	Weight          float64          `json:"weight"`
	Dimensions      *wire.Dimensions `json:"dimensions"`
	Contents        string           `json:"contents"`
	DeclaredValue   *float64         `json:"declaredValue"`
	HazmatScreening bool             `json:"hazmatScreening"`
	SelectedService string           `json:"selectedService"`
	Price           *float64         `json:"price"`
}

func (req createTransactionRequest) params() (transaction.CreateParams, error) {
	var missing []string

	if req.FromAddress == nil {
		missing = append(missing, "fromAddress")
	}

	if req.ToAddress == nil {
		missing = append(missing, "toAddress")
	}

	if req.Price == nil {
		missing = append(missing, "price")
	}

	if len(missing) > 0 {
		return transaction.CreateParams{}, fmt.Errorf("%w: missing required fields: %s", transaction.ErrValidation, strings.Join(missing, ", "))
	}

	params := transaction.CreateParams{
		FromAddress: req.FromAddress.Carrier(),
		ToAddress:   req.ToAddress.Carrier(),
		Package: transaction.Package{
			Weight:          req.Weight,
			Dimensions:      req.Dimensions.Carrier(),
			Contents:        req.Contents,
			HazmatScreening: req.HazmatScreening,
		},
		SelectedService: req.SelectedService,
		Price:           decimal.NewFromFloat(*req.Price).Round(2),
	}

	if req.DeclaredValue != nil {
		params.Package.DeclaredValue = decimal.NewFromFloat(*req.DeclaredValue).Round(2)
	}

	return params, nil
}

type updateTransactionRequest struct {
	Contents        *string  `json:"contents,omitempty"`
	DeclaredValue   *float64 `json:"declaredValue,omitempty"`
	HazmatScreening *bool    `json:"hazmatScreening,omitempty"`
}

func (req updateTransactionRequest) params() transaction.UpdateParams {
	params := transaction.UpdateParams{
		Contents:        req.Contents,
		HazmatScreening: req.HazmatScreening,
	}

	if req.DeclaredValue != nil {
		params.DeclaredValue = new(decimal.NewFromFloat(*req.DeclaredValue).Round(2))
	}

	return params
}

type paymentRequest struct {
	PaymentID     string `json:"paymentId"`
	PaymentMethod string `json:"paymentMethod"`
}

func toResponse(tx *transaction.Transaction) wire.TransactionResponse {
	return wire.TransactionResponse{Success: true, Transaction: wire.FromTransaction(tx)}
}

func toResponseList(txs []*transaction.Transaction) wire.TransactionListResponse {
	resp := make([]*wire.Transaction, len(txs))
	for i, tx := range txs {
		resp[i] = wire.FromTransaction(tx)
	}

	return wire.TransactionListResponse{Success: true, Transactions: resp}
}
