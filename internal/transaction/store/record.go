package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

// address is the persisted form of a carrier.Address.
type address struct {
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Firm             string `json:"firm,omitempty"`
	StreetAddress    string `json:"streetAddress"`
	SecondaryAddress string `json:"secondaryAddress,omitempty"`
	City             string `json:"city"`
	State            string `json:"state"`
	ZIPCode          string `json:"ZIPCode"`
	ZIPPlus4         string `json:"ZIPPlus4,omitempty"`
	Phone            string `json:"phone,omitempty"`
}

type parcel struct {
	Weight          float64         `json:"weight"`
	Length          float64         `json:"length"`
	Width           float64         `json:"width"`
	Height          float64         `json:"height"`
	Contents        string          `json:"contents,omitempty"`
	DeclaredValue   decimal.Decimal `json:"declaredValue"`
	HazmatScreening bool            `json:"hazmatScreening"`
}

// record is the JSON document kept by the Bolt store. The Postgres store
// reuses its address and parcel parts for its JSONB columns.
type record struct {
	ID              uuid.UUID       `json:"id"`
	FromAddress     address         `json:"fromAddress"`
	ToAddress       address         `json:"toAddress"`
	Package         parcel          `json:"package"`
	SelectedService string          `json:"selectedService"`
	Price           decimal.Decimal `json:"price"`
	PaymentID       *string         `json:"paymentId"`
	PaymentMethod   string          `json:"paymentMethod,omitempty"`
	PaymentStatus   string          `json:"paymentStatus"`
	TrackingNumber  *string         `json:"trackingNumber"`
	LabelID         *string         `json:"labelId"`
	Status          string          `json:"status"`
	QRCode          string          `json:"qrCode"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func fromAddress(a carrier.Address) address {
	return address(a)
}

func (a address) toCarrier() carrier.Address {
	return carrier.Address(a)
}

func fromPackage(p transaction.Package) parcel {
	return parcel{
		Weight:          p.Weight,
		Length:          p.Dimensions.Length,
		Width:           p.Dimensions.Width,
		Height:          p.Dimensions.Height,
		Contents:        p.Contents,
		DeclaredValue:   p.DeclaredValue,
		HazmatScreening: p.HazmatScreening,
	}
}

func (p parcel) toPackage() transaction.Package {
	return transaction.Package{
		Weight:          p.Weight,
		Dimensions:      carrier.Dimensions{Length: p.Length, Width: p.Width, Height: p.Height},
		Contents:        p.Contents,
		DeclaredValue:   p.DeclaredValue,
		HazmatScreening: p.HazmatScreening,
	}
}

func toRecord(tx *transaction.Transaction) record {
	return record{
		ID:              tx.ID,
		FromAddress:     fromAddress(tx.FromAddress),
		ToAddress:       fromAddress(tx.ToAddress),
		Package:         fromPackage(tx.Package),
		SelectedService: tx.SelectedService,
		Price:           tx.Price,
		PaymentID:       tx.PaymentID,
		PaymentMethod:   tx.PaymentMethod,
		PaymentStatus:   string(tx.PaymentStatus),
		TrackingNumber:  tx.TrackingNumber,
		LabelID:         tx.LabelID,
		Status:          string(tx.Status),
		QRCode:          tx.QRCode,
		CreatedAt:       tx.CreatedAt,
		UpdatedAt:       tx.UpdatedAt,
	}
}

func (r record) toTransaction() *transaction.Transaction {
	return &transaction.Transaction{
		ID:              r.ID,
		FromAddress:     r.FromAddress.toCarrier(),
		ToAddress:       r.ToAddress.toCarrier(),
		Package:         r.Package.toPackage(),
		SelectedService: r.SelectedService,
		Price:           r.Price,
		PaymentID:       r.PaymentID,
		PaymentMethod:   r.PaymentMethod,
		PaymentStatus:   transaction.PaymentStatus(r.PaymentStatus),
		TrackingNumber:  r.TrackingNumber,
		LabelID:         r.LabelID,
		Status:          transaction.Status(r.Status),
		QRCode:          r.QRCode,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func marshalRecord(tx *transaction.Transaction) ([]byte, error) {
	return json.Marshal(toRecord(tx))
}

func unmarshalRecord(data []byte) (*transaction.Transaction, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}

	return r.toTransaction(), nil
}
