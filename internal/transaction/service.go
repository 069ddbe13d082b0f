package transaction

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/scango/internal/carrier"
	"github.com/MrJamesThe3rd/scango/internal/redemption"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// UpdateTransaction applies fn to the stored record and persists the
	// result atomically. Nothing is written when fn fails.
	UpdateTransaction(ctx context.Context, id uuid.UUID, fn func(*Transaction) error) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

// LabelIssuer creates postage for a paid transaction.
type LabelIssuer interface {
	CreateLabel(ctx context.Context, req carrier.LabelRequest) (*carrier.Label, error)
}

type Service struct {
	repo     Repository
	encode   func(uuid.UUID) (string, error)
	now      func() time.Time
	labeling idLocks
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		encode: redemption.Encode,
		now:    time.Now,
	}
}

type CreateParams struct {
	FromAddress     carrier.Address
	ToAddress       carrier.Address
	Package         Package
	SelectedService string
	Price           decimal.Decimal
}

type UpdateParams struct {
	Contents        *string
	DeclaredValue   *decimal.Decimal
	HazmatScreening *bool
}

type PaymentParams struct {
	PaymentID string
	Method    string
}

type ListFilter struct {
	Status        *Status
	PaymentStatus *PaymentStatus
}

// Matches reports whether tx passes the filter.
func (f ListFilter) Matches(tx *Transaction) bool {
	if f.Status != nil && tx.Status != *f.Status {
		return false
	}

	if f.PaymentStatus != nil && tx.PaymentStatus != *f.PaymentStatus {
		return false
	}

	return true
}

func (p CreateParams) validate() error {
	var missing []string

	if !addressComplete(p.FromAddress) {
		missing = append(missing, "fromAddress")
	}

	if !addressComplete(p.ToAddress) {
		missing = append(missing, "toAddress")
	}

	if p.Package.Weight <= 0 {
		missing = append(missing, "weight")
	}

	if strings.TrimSpace(p.SelectedService) == "" {
		missing = append(missing, "selectedService")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}

	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	if p.Package.DeclaredValue.IsNegative() {
		return fmt.Errorf("%w: declared value must not be negative", ErrValidation)
	}

	return nil
}

func addressComplete(a carrier.Address) bool {
	return a.StreetAddress != "" && a.City != "" && a.State != ""
}

// Create stages a new unpaid shipment. The redemption token is rendered
// before the record is stored.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	id := uuid.New()

	qr, err := s.encode(id)
	if err != nil {
		return nil, fmt.Errorf("encode redemption token: %w", err)
	}

	now := s.now().UTC()

	pkg := params.Package
	pkg.Dimensions = pkg.Dimensions.OrDefault()

	tx := &Transaction{
		ID:              id,
		FromAddress:     params.FromAddress,
		ToAddress:       params.ToAddress,
		Package:         pkg,
		SelectedService: params.SelectedService,
		Price:           params.Price,
		PaymentStatus:   PaymentUnpaid,
		Status:          StatusPending,
		QRCode:          qr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

// Update merges the descriptive package fields. Lifecycle fields only move
// through RecordPayment and AttachLabel.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*Transaction, error) {
	if params.DeclaredValue != nil && params.DeclaredValue.IsNegative() {
		return nil, fmt.Errorf("%w: declared value must not be negative", ErrValidation)
	}

	return s.repo.UpdateTransaction(ctx, id, func(tx *Transaction) error {
		if tx.State() == StateLabeled {
			return fmt.Errorf("%w: transaction already labeled", ErrInvalidTransition)
		}

		if params.Contents != nil {
			tx.Package.Contents = *params.Contents
		}

		if params.DeclaredValue != nil {
			tx.Package.DeclaredValue = *params.DeclaredValue
		}

		if params.HazmatScreening != nil {
			tx.Package.HazmatScreening = *params.HazmatScreening
		}

		tx.UpdatedAt = s.now().UTC()

		return nil
	})
}

// RecordPayment moves a transaction from CREATED to PAID.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, params PaymentParams) (*Transaction, error) {
	now := s.now().UTC()

	paymentID := params.PaymentID
	if paymentID == "" {
		paymentID = "payment_" + strconv.FormatInt(now.UnixMilli(), 10)
	}

	method := params.Method
	if method == "" {
		method = DefaultPaymentMethod
	}

	return s.repo.UpdateTransaction(ctx, id, func(tx *Transaction) error {
		if tx.State() != StateCreated {
			return fmt.Errorf("%w: payment already recorded", ErrInvalidTransition)
		}

		tx.PaymentID = &paymentID
		tx.PaymentMethod = method
		tx.PaymentStatus = PaymentPaid
		tx.UpdatedAt = now

		return nil
	})
}

// Verify checks whether a scanned transaction can be labeled. Unknown and
// unpaid transactions produce an invalid result; the error is reserved for
// storage failures.
func (s *Service) Verify(ctx context.Context, id uuid.UUID) (VerifyResult, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return VerifyResult{Reason: ReasonNotFound}, nil
	}

	if err != nil {
		return VerifyResult{}, fmt.Errorf("get transaction: %w", err)
	}

	switch tx.State() {
	case StateCreated:
		return VerifyResult{Reason: ReasonNotPaid, Transaction: tx}, nil
	case StateLabeled:
		return VerifyResult{Valid: true, Reason: ReasonLabeled, Transaction: tx}, nil
	default:
		return VerifyResult{Valid: true, ReadyForLabel: true, Transaction: tx}, nil
	}
}

// AttachLabel moves a transaction from PAID to LABELED, recording the tracking
// number and label id together.
func (s *Service) AttachLabel(ctx context.Context, id uuid.UUID, label carrier.Label) (*Transaction, error) {
	if label.ID == "" || label.TrackingNumber == "" {
		return nil, fmt.Errorf("%w: label id and tracking number are required", ErrValidation)
	}

	return s.repo.UpdateTransaction(ctx, id, func(tx *Transaction) error {
		switch tx.State() {
		case StateCreated:
			return ErrPaymentRequired
		case StateLabeled:
			return fmt.Errorf("%w: transaction already labeled", ErrInvalidTransition)
		}

		tx.TrackingNumber = &label.TrackingNumber
		tx.LabelID = &label.ID
		tx.Status = StatusLabeled
		tx.UpdatedAt = s.now().UTC()

		return nil
	})
}

// IssueLabel creates postage for a paid transaction and attaches it. The
// carrier is not called unless the transaction is ready for a label, and at
// most one issuance per transaction runs at a time.
func (s *Service) IssueLabel(ctx context.Context, id uuid.UUID, issuer LabelIssuer) (*Transaction, *carrier.Label, error) {
	unlock := s.labeling.lock(id)
	defer unlock()

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	switch tx.State() {
	case StateCreated:
		return nil, nil, ErrPaymentRequired
	case StateLabeled:
		return nil, nil, fmt.Errorf("%w: transaction already labeled", ErrInvalidTransition)
	}

	label, err := issuer.CreateLabel(ctx, LabelRequest(tx))
	if err != nil {
		return nil, nil, err
	}

	updated, err := s.AttachLabel(ctx, id, *label)
	if err != nil {
		return nil, nil, fmt.Errorf("attach label: %w", err)
	}

	return updated, label, nil
}

// LabelRequest builds the carrier request for a transaction.
func LabelRequest(tx *Transaction) carrier.LabelRequest {
	return carrier.LabelRequest{
		FromAddress: tx.FromAddress,
		ToAddress:   tx.ToAddress,
		MailClass:   tx.SelectedService,
		Weight:      tx.Package.Weight,
		Dimensions:  tx.Package.Dimensions,
		Price:       tx.Price,
	}
}
