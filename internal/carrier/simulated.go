package carrier

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TrackingPrefix starts every simulated tracking number; the full number is
// 22 digits, like the carrier's retail package tracking numbers.
const (
	TrackingPrefix       = "9400"
	trackingNumberDigits = 22
)

var referenceAddress = StandardizedAddress{
	Address: Address{
		StreetAddress: "1600 PENNSYLVANIA AVE NW",
		City:          "WASHINGTON",
		State:         "DC",
		ZIPCode:       "20500",
		ZIPPlus4:      "0005",
	},
	AdditionalInfo: AdditionalInfo{
		DeliveryPoint:        "00",
		CarrierRoute:         "C000",
		DPVConfirmation:      "Y",
		DPVCMRA:              "N",
		Business:             "Y",
		CentralDeliveryPoint: "N",
		Vacant:               "N",
	},
}

var baseRates = []RateQuote{
	{
		ProductID:    "PRIORITY_MAIL",
		ProductName:  "Priority Mail",
		MailClass:    "PRIORITY_MAIL",
		TotalPrice:   decimal.RequireFromString("9.85"),
		Zone:         "4",
		DeliveryDays: "1-3",
	},
	{
		ProductID:    "PRIORITY_MAIL_EXPRESS",
		ProductName:  "Priority Mail Express",
		MailClass:    "PRIORITY_MAIL_EXPRESS",
		TotalPrice:   decimal.RequireFromString("28.75"),
		Zone:         "4",
		DeliveryDays: "1-2",
	},
	{
		ProductID:    "GROUND_ADVANTAGE",
		ProductName:  "USPS Ground Advantage",
		MailClass:    "USPS_GROUND_ADVANTAGE",
		TotalPrice:   decimal.RequireFromString("5.25"),
		Zone:         "4",
		DeliveryDays: "2-5",
	},
	{
		ProductID:    "FIRST_CLASS_MAIL",
		ProductName:  "First-Class Mail",
		MailClass:    "FIRST_CLASS_MAIL",
		TotalPrice:   decimal.RequireFromString("4.50"),
		Zone:         "4",
		DeliveryDays: "2-5",
	},
}

// DefaultLabelPrice is charged on simulated labels created without a price.
var DefaultLabelPrice = decimal.RequireFromString("9.85")

const simulatedLabelNote = "Simulated label: configure carrier credentials for real labels"

var ounces = decimal.NewFromInt(16)

// Simulated answers every call locally. It never touches the network.
type Simulated struct {
	upper cases.Caser
	now   func() time.Time
}

func NewSimulated() *Simulated {
	return &Simulated{
		upper: cases.Upper(language.AmericanEnglish),
		now:   time.Now,
	}
}

func (s *Simulated) Mode() Mode { return ModeSimulated }

// ValidateAddress returns the reference address with the caller's street,
// city and state uppercased over it, and the caller's ZIP code when given.
func (s *Simulated) ValidateAddress(_ context.Context, addr Address) (*StandardizedAddress, error) {
	slog.Info("validating address", "mode", ModeSimulated, "city", addr.City, "state", addr.State)

	out := referenceAddress
	out.Address.StreetAddress = s.upperOr(addr.StreetAddress, out.Address.StreetAddress)
	out.Address.City = s.upperOr(addr.City, out.Address.City)
	out.Address.State = s.upperOr(addr.State, out.Address.State)

	if addr.ZIPCode != "" {
		out.Address.ZIPCode = addr.ZIPCode
	}

	return &out, nil
}

func (s *Simulated) upperOr(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}

	return s.upper.String(v)
}

// Rates scales the base table by max(1, weight/16), rounded to cents.
func (s *Simulated) Rates(_ context.Context, req RateRequest) ([]RateQuote, error) {
	slog.Info("getting rates", "mode", ModeSimulated,
		"origin", req.OriginZIPCode, "destination", req.DestinationZIPCode, "weight", req.Weight)

	return ScaleRates(req.Weight), nil
}

// ScaleRates prices the simulated table for a package of the given weight in
// ounces. Packages under a pound pay the base price.
func ScaleRates(weight float64) []RateQuote {
	multiplier := decimal.Max(decimal.NewFromInt(1), decimal.NewFromFloat(weight).Div(ounces))

	quotes := make([]RateQuote, len(baseRates))
	for i, r := range baseRates {
		r.TotalPrice = r.TotalPrice.Mul(multiplier).Round(2)
		r.ExtraServices = []string{}
		quotes[i] = r
	}

	return quotes
}

func (s *Simulated) CreateLabel(_ context.Context, req LabelRequest) (*Label, error) {
	slog.Info("creating label", "mode", ModeSimulated, "mail_class", req.MailClass)

	price := req.Price
	if price.IsZero() {
		price = DefaultLabelPrice
	}

	return &Label{
		ID:             uuid.NewString(),
		TrackingNumber: newTrackingNumber(),
		MailClass:      req.MailClass,
		Price:          price,
		Status:         StatusCreated,
		ImageType:      "PDF",
		CreatedAt:      s.now().UTC(),
		Note:           simulatedLabelNote,
	}, nil
}

func newTrackingNumber() string {
	var sb strings.Builder

	sb.WriteString(TrackingPrefix)

	for sb.Len() < trackingNumberDigits {
		fmt.Fprintf(&sb, "%d", rand.IntN(10))
	}

	return sb.String()
}
