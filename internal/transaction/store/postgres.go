package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/scango/internal/transaction"
)

//go:embed schema.sql
var schema string

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Migrate creates the transactions table when missing.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a row in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx                    transaction.Transaction
		fromJSON, toJSON, pkg []byte
		paymentStatus, status string
	)

	if err := s.Scan(
		&tx.ID, &fromJSON, &toJSON, &pkg, &tx.SelectedService, &tx.Price,
		&tx.PaymentID, &tx.PaymentMethod, &paymentStatus,
		&tx.TrackingNumber, &tx.LabelID, &status, &tx.QRCode,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var (
		from, to address
		p        parcel
	)

	if err := json.Unmarshal(fromJSON, &from); err != nil {
		return nil, fmt.Errorf("decoding from_address: %w", err)
	}

	if err := json.Unmarshal(toJSON, &to); err != nil {
		return nil, fmt.Errorf("decoding to_address: %w", err)
	}

	if err := json.Unmarshal(pkg, &p); err != nil {
		return nil, fmt.Errorf("decoding package: %w", err)
	}

	tx.FromAddress = from.toCarrier()
	tx.ToAddress = to.toCarrier()
	tx.Package = p.toPackage()
	tx.PaymentStatus = transaction.PaymentStatus(paymentStatus)
	tx.Status = transaction.Status(status)

	return &tx, nil
}

const selectTransactionColumns = `
	id, from_address, to_address, package, selected_service, price,
	payment_id, payment_method, payment_status,
	tracking_number, label_id, status, qr_code,
	created_at, updated_at
`

func (s *Postgres) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	from, to, pkg, err := marshalColumns(tx)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO shipment_transactions (` + selectTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = s.db.ExecContext(ctx, query,
		tx.ID, from, to, pkg, tx.SelectedService, tx.Price,
		tx.PaymentID, tx.PaymentMethod, string(tx.PaymentStatus),
		tx.TrackingNumber, tx.LabelID, string(tx.Status), tx.QRCode,
		tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Postgres) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM shipment_transactions WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

// UpdateTransaction locks the row for the duration of fn.
func (s *Postgres) UpdateTransaction(ctx context.Context, id uuid.UUID, fn func(*transaction.Transaction) error) (*transaction.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `SELECT ` + selectTransactionColumns + ` FROM shipment_transactions WHERE id = $1 FOR UPDATE`

	current, err := scanTransaction(dbTx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("locking transaction: %w", err)
	}

	if err := fn(current); err != nil {
		return nil, err
	}

	from, to, pkg, err := marshalColumns(current)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE shipment_transactions
		SET from_address = $2, to_address = $3, package = $4, selected_service = $5, price = $6,
			payment_id = $7, payment_method = $8, payment_status = $9,
			tracking_number = $10, label_id = $11, status = $12, updated_at = $13
		WHERE id = $1
	`

	_, err = dbTx.ExecContext(ctx, update,
		id, from, to, pkg, current.SelectedService, current.Price,
		current.PaymentID, current.PaymentMethod, string(current.PaymentStatus),
		current.TrackingNumber, current.LabelID, string(current.Status), current.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("updating transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}

	return current, nil
}

func (s *Postgres) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM shipment_transactions WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, string(*filter.Status))
		argIdx++
	}

	if filter.PaymentStatus != nil {
		query += fmt.Sprintf(" AND payment_status = $%d", argIdx)

		args = append(args, string(*filter.PaymentStatus))
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	txs := []*transaction.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// marshalColumns encodes the JSONB columns as text.
func marshalColumns(tx *transaction.Transaction) (from, to, pkg string, err error) {
	parts := []any{fromAddress(tx.FromAddress), fromAddress(tx.ToAddress), fromPackage(tx.Package)}
	out := make([]string, len(parts))

	for i, part := range parts {
		data, err := json.Marshal(part)
		if err != nil {
			return "", "", "", fmt.Errorf("encoding jsonb column: %w", err)
		}

		out[i] = string(data)
	}

	return out[0], out[1], out[2], nil
}
