// Package wire holds the JSON bodies exchanged with the API's web, mobile and
// kiosk clients. Money travels as JSON numbers with two decimals.
package wire

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

type Address struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Firm             string `json:"firm,omitempty"`
	StreetAddress    string `json:"streetAddress"`
	SecondaryAddress string `json:"secondaryAddress,omitempty"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZIPCode          string `json:"ZIPCode,omitempty"`
	ZIPPlus4         string `json:"ZIPPlus4,omitempty"`
	Phone            string `json:"phone,omitempty"`
}

func (a Address) Carrier() carrier.Address {
	return carrier.Address(a)
}

func FromAddress(a carrier.Address) Address {
	return Address(a)
}

type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d *Dimensions) Carrier() carrier.Dimensions {
	if d == nil {
		return carrier.DefaultDimensions
	}

	return carrier.Dimensions{Length: d.Length, Width: d.Width, Height: d.Height}.OrDefault()
}

func FromDimensions(d carrier.Dimensions) *Dimensions {
	return &Dimensions{Length: d.Length, Width: d.Width, Height: d.Height}
}

type Package struct {
	Weight          float64     `json:"weight"`
	Dimensions      *Dimensions `json:"dimensions"`
	Contents        string      `json:"contents,omitempty"`
	DeclaredValue   float64     `json:"declaredValue"`
	HazmatScreening bool        `json:"hazmatScreening"`
}

type Transaction struct {
	ID              uuid.UUID                 `json:"id"`
	Status          transaction.Status        `json:"status"`
	State           transaction.State         `json:"state"`
	FromAddress     Address                   `json:"fromAddress"`
	ToAddress       Address                   `json:"toAddress"`
	PackageDetails  Package                   `json:"packageDetails"`
	SelectedService string                    `json:"selectedService"`
	Price           float64                   `json:"price"`
	PaymentID       *string                   `json:"paymentId"`
	PaymentMethod   string                    `json:"paymentMethod,omitempty"`
	PaymentStatus   transaction.PaymentStatus `json:"paymentStatus"`
	TrackingNumber  *string                   `json:"trackingNumber"`
	LabelID         *string                   `json:"labelId"`
	QRCode          string                    `json:"qrCode"`
	CreatedAt       time.Time                 `json:"createdAt"`
	UpdatedAt       time.Time                 `json:"updatedAt"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func FromTransaction(tx *transaction.Transaction) *Transaction {
	if tx == nil {
		return nil
	}

	return &Transaction{
		ID:          tx.ID,
		Status:      tx.Status,
		State:       tx.State(),
		FromAddress: FromAddress(tx.FromAddress),
		ToAddress:   FromAddress(tx.ToAddress),
		PackageDetails: Package{
			Weight:          tx.Package.Weight,
			Dimensions:      FromDimensions(tx.Package.Dimensions),
			Contents:        tx.Package.Contents,
			DeclaredValue:   money(tx.Package.DeclaredValue),
			HazmatScreening: tx.Package.HazmatScreening,
		},
		SelectedService: tx.SelectedService,
		Price:           money(tx.Price),
		PaymentID:       tx.PaymentID,
		PaymentMethod:   tx.PaymentMethod,
		PaymentStatus:   tx.PaymentStatus,
		TrackingNumber:  tx.TrackingNumber,
		LabelID:         tx.LabelID,
		QRCode:          tx.QRCode,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

type Rate struct {
	ProductID     string   `json:"productId"`
	ProductName   string   `json:"productName"`
	MailClass     string   `json:"mailClass"`
	TotalPrice    float64  `json:"totalPrice"`
	Zone          string   `json:"zone"`
	DeliveryDays  string   `json:"deliveryDays"`
	ExtraServices []string `json:"extraServices"`
}

func FromRates(quotes []carrier.RateQuote) []Rate {
	rates := make([]Rate, len(quotes))
	for i, q := range quotes {
		extras := q.ExtraServices
		if extras == nil {
			extras = []string{}
		}

		rates[i] = Rate{
			ProductID:     q.ProductID,
			ProductName:   q.ProductName,
			MailClass:     q.MailClass,
			TotalPrice:    money(q.TotalPrice),
			Zone:          q.Zone,
			DeliveryDays:  q.DeliveryDays,
			ExtraServices: extras,
		}
	}

	return rates
}

// Label carries the PDF image base64 encoded. LabelImage is null for
// simulated labels.
type Label struct {
	LabelID        string    `json:"labelId"`
	TrackingNumber string    `json:"trackingNumber"`
	MailClass      string    `json:"mailClass"`
	Price          float64   `json:"price"`
	Status         string    `json:"status"`
	LabelImage     *string   `json:"labelImage"`
	LabelImageType string    `json:"labelImageType"`
	CreatedAt      time.Time `json:"createdAt"`
	Note           string    `json:"note,omitempty"`
}

func FromLabel(l *carrier.Label) *Label {
	if l == nil {
		return nil
	}

	out := &Label{
		LabelID:        l.ID,
		TrackingNumber: l.TrackingNumber,
		MailClass:      l.MailClass,
		Price:          money(l.Price),
		Status:         l.Status,
		LabelImageType: l.ImageType,
		CreatedAt:      l.CreatedAt,
		Note:           l.Note,
	}

	if l.Image != nil {
		out.LabelImage = new(base64.StdEncoding.EncodeToString(l.Image))
	}

	return out
}

type AddressResponse struct {
	Success        bool                   `json:"success"`
	Firm           string                 `json:"firm,omitempty"`
	Address        Address                `json:"address"`
	AdditionalInfo carrier.AdditionalInfo `json:"additionalInfo"`
}

type RatesResponse struct {
	Success bool   `json:"success"`
	Rates   []Rate `json:"rates"`
}

type TransactionResponse struct {
	Success     bool         `json:"success"`
	Transaction *Transaction `json:"transaction"`
}

type TransactionListResponse struct {
	Success      bool           `json:"success"`
	Transactions []*Transaction `json:"transactions"`
}

// VerifyResponse mirrors transaction.VerifyResult. Error carries the reason
// when the transaction cannot be labeled.
type VerifyResponse struct {
	Success       bool         `json:"success"`
	Valid         bool         `json:"valid"`
	ReadyForLabel bool         `json:"readyForLabel"`
	Error         string       `json:"error,omitempty"`
	Transaction   *Transaction `json:"transaction,omitempty"`
}

type LabelResponse struct {
	Success     bool         `json:"success"`
	Label       *Label       `json:"label"`
	Transaction *Transaction `json:"transaction"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
