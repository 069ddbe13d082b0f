package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
)

// Status is the fulfillment sub-state of a transaction.
type Status string

const (
	StatusPending Status = "pending"
	StatusLabeled Status = "labeled"
)

// PaymentStatus only ever moves from unpaid to paid.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// State is the lifecycle position derived from the two sub-states.
type State string

const (
	StateCreated State = "CREATED"
	StatePaid    State = "PAID"
	StateLabeled State = "LABELED"
)

const DefaultPaymentMethod = "card"

// Package describes the parcel being shipped. Weight is in ounces.
type Package struct {
	Weight          float64
	Dimensions      carrier.Dimensions
	Contents        string
	DeclaredValue   decimal.Decimal
	HazmatScreening bool
}

// Transaction is a staged shipment. Addresses are snapshots taken at creation.
type Transaction struct {
	ID              uuid.UUID
	FromAddress     carrier.Address
	ToAddress       carrier.Address
	Package         Package
	SelectedService string
	Price           decimal.Decimal
	PaymentID       *string
	PaymentMethod   string
	PaymentStatus   PaymentStatus
	TrackingNumber  *string
	LabelID         *string
	Status          Status
	QRCode          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t *Transaction) State() State {
	switch {
	case t.Status == StatusLabeled:
		return StateLabeled
	case t.PaymentStatus == PaymentPaid:
		return StatePaid
	default:
		return StateCreated
	}
}

// Clone returns a deep copy safe to hand out of a store.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.PaymentID = cloneString(t.PaymentID)
	c.TrackingNumber = cloneString(t.TrackingNumber)
	c.LabelID = cloneString(t.LabelID)

	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	return new(*s)
}

// VerifyResult is the outcome of a verification. A failed verification is a
// result, not an error.
type VerifyResult struct {
	Valid         bool
	Reason        string
	ReadyForLabel bool
	Transaction   *Transaction
}
