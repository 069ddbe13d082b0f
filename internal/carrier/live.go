package carrier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	addressPath = "/addresses/v3/address"
	pricesPath  = "/prices/v3/base-rates/search"
	labelPath   = "/labels/v3/label"

	defaultMailClass   = "PRIORITY_MAIL"
	processingCategory = "MACHINABLE"
	rateIndicator      = "DR"
	priceType          = "RETAIL"
	entryFacilityType  = "NONE"
	labelImageType     = "PDF"
	labelType          = "4X6LABEL"
)

// Live calls the carrier API. Should its credential source ever answer with
// the simulated sentinel, the call is served by the simulated fallback.
type Live struct {
	baseURL  string
	client   *http.Client
	tokens   CredentialSource
	fallback *Simulated
}

func NewLive(baseURL string, client *http.Client, tokens CredentialSource) *Live {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	return &Live{
		baseURL:  baseURL,
		client:   client,
		tokens:   tokens,
		fallback: NewSimulated(),
	}
}

func (l *Live) Mode() Mode { return ModeLive }

type wireAddress struct {
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

func toWireAddress(a Address) wireAddress {
	return wireAddress(a)
}

type addressResponse struct {
	Firm                  string         `json:"firm"`
	Address               wireAddress    `json:"address"`
	AddressAdditionalInfo AdditionalInfo `json:"addressAdditionalInfo"`
}

func (l *Live) ValidateAddress(ctx context.Context, addr Address) (*StandardizedAddress, error) {
	cred, err := l.tokens.Credential(ctx)
	if err != nil {
		return nil, err
	}

	if cred.Simulated() {
		return l.fallback.ValidateAddress(ctx, addr)
	}

	q := url.Values{}
	q.Set("streetAddress", addr.StreetAddress)
	q.Set("city", addr.City)
	q.Set("state", addr.State)

	if addr.SecondaryAddress != "" {
		q.Set("secondaryAddress", addr.SecondaryAddress)
	}

	if addr.ZIPCode != "" {
		q.Set("ZIPCode", addr.ZIPCode)
	}

	var body addressResponse
	if err := l.do(ctx, cred, http.MethodGet, addressPath+"?"+q.Encode(), nil, &body); err != nil {
		return nil, wrapCallError(ErrAddressValidation, err)
	}

	return &StandardizedAddress{
		Firm:           body.Firm,
		Address:        Address(body.Address),
		AdditionalInfo: body.AddressAdditionalInfo,
	}, nil
}

type rateSearchRequest struct {
	OriginZIPCode                string  `json:"originZIPCode"`
	DestinationZIPCode           string  `json:"destinationZIPCode"`
	Weight                       float64 `json:"weight"`
	Length                       float64 `json:"length"`
	Width                        float64 `json:"width"`
	Height                       float64 `json:"height"`
	MailClass                    string  `json:"mailClass"`
	ProcessingCategory           string  `json:"processingCategory"`
	DestinationEntryFacilityType string  `json:"destinationEntryFacilityType"`
	RateIndicator                string  `json:"rateIndicator"`
	PriceType                    string  `json:"priceType"`
}

type wireRate struct {
	SKU           string          `json:"SKU"`
	ProductID     string          `json:"productId"`
	Description   string          `json:"description"`
	ProductName   string          `json:"productName"`
	MailClass     string          `json:"mailClass"`
	Price         decimal.Decimal `json:"price"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Zone          string          `json:"zone"`
	DeliveryDays  string          `json:"deliveryDays"`
	ExtraServices []string        `json:"extraServices"`
}

type rateSearchResponse struct {
	TotalBasePrice decimal.Decimal `json:"totalBasePrice"`
	Rates          []wireRate      `json:"rates"`
}

func (l *Live) Rates(ctx context.Context, req RateRequest) ([]RateQuote, error) {
	cred, err := l.tokens.Credential(ctx)
	if err != nil {
		return nil, err
	}

	if cred.Simulated() {
		return l.fallback.Rates(ctx, req)
	}

	dims := req.Dimensions.OrDefault()

	mailClass := req.MailClass
	if mailClass == "" {
		mailClass = defaultMailClass
	}

	payload := rateSearchRequest{
		OriginZIPCode:                req.OriginZIPCode,
		DestinationZIPCode:           req.DestinationZIPCode,
		Weight:                       req.Weight,
		Length:                       dims.Length,
		Width:                        dims.Width,
		Height:                       dims.Height,
		MailClass:                    mailClass,
		ProcessingCategory:           processingCategory,
		DestinationEntryFacilityType: entryFacilityType,
		RateIndicator:                rateIndicator,
		PriceType:                    priceType,
	}

	var body rateSearchResponse
	if err := l.do(ctx, cred, http.MethodPost, pricesPath, payload, &body); err != nil {
		return nil, wrapCallError(ErrRateLookup, err)
	}

	quotes := make([]RateQuote, 0, len(body.Rates))
	for _, r := range body.Rates {
		quotes = append(quotes, r.toQuote(mailClass))
	}

	if len(quotes) == 1 && quotes[0].TotalPrice.IsZero() && !body.TotalBasePrice.IsZero() {
		quotes[0].TotalPrice = body.TotalBasePrice
	}

	return quotes, nil
}

func (r wireRate) toQuote(requestedClass string) RateQuote {
	q := RateQuote{
		ProductID:     firstNonEmpty(r.ProductID, r.SKU),
		ProductName:   firstNonEmpty(r.ProductName, r.Description),
		MailClass:     firstNonEmpty(r.MailClass, requestedClass),
		TotalPrice:    r.TotalPrice,
		Zone:          r.Zone,
		DeliveryDays:  r.DeliveryDays,
		ExtraServices: r.ExtraServices,
	}

	if q.TotalPrice.IsZero() {
		q.TotalPrice = r.Price
	}

	if q.ExtraServices == nil {
		q.ExtraServices = []string{}
	}

	return q
}

type labelImageInfo struct {
	ImageType string `json:"imageType"`
	LabelType string `json:"labelType"`
}

type packageDescription struct {
	Weight             float64 `json:"weight"`
	Length             float64 `json:"length"`
	Width              float64 `json:"width"`
	Height             float64 `json:"height"`
	MailClass          string  `json:"mailClass"`
	ProcessingCategory string  `json:"processingCategory"`
	RateIndicator      string  `json:"rateIndicator"`
}

type labelRequest struct {
	ImageInfo          labelImageInfo     `json:"imageInfo"`
	ToAddress          wireAddress        `json:"toAddress"`
	FromAddress        wireAddress        `json:"fromAddress"`
	PackageDescription packageDescription `json:"packageDescription"`
}

type labelResponse struct {
	LabelID        string `json:"labelId"`
	TrackingNumber string `json:"trackingNumber"`
	LabelMetadata  struct {
		LabelBrokerID  string          `json:"labelBrokerID"`
		TrackingNumber string          `json:"trackingNumber"`
		Postage        decimal.Decimal `json:"postage"`
	} `json:"labelMetadata"`
	LabelImage string `json:"labelImage"`
}

func (l *Live) CreateLabel(ctx context.Context, req LabelRequest) (*Label, error) {
	cred, err := l.tokens.Credential(ctx)
	if err != nil {
		return nil, err
	}

	if cred.Simulated() {
		return l.fallback.CreateLabel(ctx, req)
	}

	dims := req.Dimensions.OrDefault()
	payload := labelRequest{
		ImageInfo:   labelImageInfo{ImageType: labelImageType, LabelType: labelType},
		ToAddress:   toWireAddress(req.ToAddress),
		FromAddress: toWireAddress(req.FromAddress),
		PackageDescription: packageDescription{
			Weight:             req.Weight,
			Length:             dims.Length,
			Width:              dims.Width,
			Height:             dims.Height,
			MailClass:          req.MailClass,
			ProcessingCategory: processingCategory,
			RateIndicator:      rateIndicator,
		},
	}

	var body labelResponse
	if err := l.do(ctx, cred, http.MethodPost, labelPath, payload, &body); err != nil {
		return nil, wrapCallError(ErrLabelCreation, err)
	}

	label := &Label{
		ID:             firstNonEmpty(body.LabelID, body.LabelMetadata.LabelBrokerID),
		TrackingNumber: firstNonEmpty(body.TrackingNumber, body.LabelMetadata.TrackingNumber),
		MailClass:      req.MailClass,
		Price:          body.LabelMetadata.Postage,
		Status:         StatusCreated,
		ImageType:      labelImageType,
		CreatedAt:      time.Now().UTC(),
	}

	if label.ID == "" {
		label.ID = uuid.NewString()
	}

	if label.Price.IsZero() {
		label.Price = req.Price
	}

	if body.LabelImage != "" {
		img, err := base64.StdEncoding.DecodeString(body.LabelImage)
		if err != nil {
			slog.Warn("discarding undecodable label image", "error", err)
		} else {
			label.Image = img
		}
	}

	if label.TrackingNumber == "" {
		return nil, &Error{Kind: ErrLabelCreation, Message: "carrier response carried no tracking number"}
	}

	return label, nil
}

// callError is a non-2xx answer or a transport failure from l.do.
type callError struct {
	status  int
	message string
	err     error
}

func (e *callError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	return fmt.Sprintf("carrier responded with status %d", e.status)
}

func wrapCallError(kind error, err error) error {
	ce, ok := err.(*callError)
	if !ok {
		return &Error{Kind: kind, Err: err}
	}

	return &Error{Kind: kind, Message: ce.message, StatusCode: ce.status, Err: ce.err}
}

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (l *Live) do(ctx context.Context, cred Credential, method, path string, in, out any) error {
	var reqBody io.Reader

	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &callError{err: fmt.Errorf("encoding request: %w", err)}
		}

		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, reqBody)
	if err != nil {
		return &callError{err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("Authorization", "Bearer "+cred.Value)
	req.Header.Set("Accept", "application/json")

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := l.client.Do(req)
	if err != nil {
		slog.Error("carrier request failed", "path", path, "error", err)
		return &callError{err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)

		slog.Error("carrier request rejected", "path", path, "status", resp.StatusCode, "message", eb.Error.Message)

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			l.tokens.Clear()
		}

		return &callError{status: resp.StatusCode, message: eb.Error.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &callError{err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
