// Package carrier wraps the postal carrier's REST API: address
// standardization, domestic rate search and label creation. Every call first
// obtains a bearer credential from a TokenSource; without configured client
// credentials the package answers from deterministic simulated tables.
package carrier

import (
	"time"

	"github.com/shopspring/decimal"
)

// Mode tells whether a Gateway talks to the carrier or simulates it.
type Mode string

const (
	ModeLive      Mode = "live"
	ModeSimulated Mode = "simulated"
)

// Address is a postal address as the carrier understands it. Person and
// contact fields are only used on labels.
type Address struct {
	FirstName        string
	LastName         string
	Firm             string
	StreetAddress    string
	SecondaryAddress string
	City             string
	State            string
	ZIPCode          string
	ZIPPlus4         string
	Phone            string
}

// AdditionalInfo is the delivery-point metadata returned with a standardized
// address.
type AdditionalInfo struct {
	DeliveryPoint        string `json:"deliveryPoint"`
	CarrierRoute         string `json:"carrierRoute"`
	DPVConfirmation      string `json:"DPVConfirmation"`
	DPVCMRA              string `json:"DPVCMRA"`
	Business             string `json:"business"`
	CentralDeliveryPoint string `json:"centralDeliveryPoint"`
	Vacant               string `json:"vacant"`
}

// StandardizedAddress is a validation candidate. The caller decides whether to
// adopt it; the input address is never modified.
type StandardizedAddress struct {
	Firm           string
	Address        Address
	AdditionalInfo AdditionalInfo
}

// Dimensions are package measurements in inches.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

const defaultSide = 6

// DefaultDimensions is the 6x6x6 box assumed when none is given.
var DefaultDimensions = Dimensions{Length: defaultSide, Width: defaultSide, Height: defaultSide}

// OrDefault fills every unset side with the default 6 inches.
func (d Dimensions) OrDefault() Dimensions {
	if d.Length <= 0 {
		d.Length = defaultSide
	}

	if d.Width <= 0 {
		d.Width = defaultSide
	}

	if d.Height <= 0 {
		d.Height = defaultSide
	}

	return d
}

type RateRequest struct {
	OriginZIPCode      string
	DestinationZIPCode string
	Weight             float64 // ounces
	Dimensions         Dimensions
	MailClass          string
}

// RateQuote is one product tier. Quotes keep the order the carrier (or the
// simulator) produced them in.
type RateQuote struct {
	ProductID     string
	ProductName   string
	MailClass     string
	TotalPrice    decimal.Decimal
	Zone          string
	DeliveryDays  string
	ExtraServices []string
}

type LabelRequest struct {
	FromAddress Address
	ToAddress   Address
	MailClass   string
	Weight      float64 // ounces
	Dimensions  Dimensions
	Price       decimal.Decimal
}

const StatusCreated = "CREATED"

// Label is the result of a label creation. Image is nil for simulated labels.
type Label struct {
	ID             string
	TrackingNumber string
	MailClass      string
	Price          decimal.Decimal
	Status         string
	Image          []byte
	ImageType      string
	CreatedAt      time.Time
	Note           string
}
