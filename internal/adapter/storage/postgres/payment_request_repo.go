package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codemarket/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRequestRepo implements ports.PaymentRequestRepository.
type PaymentRequestRepo struct {
	pool Pool
}

// NewPaymentRequestRepo creates a new PaymentRequestRepo.
func NewPaymentRequestRepo(pool Pool) *PaymentRequestRepo {
	return &PaymentRequestRepo{pool: pool}
}

const paymentRequestColumns = `id, account_id, request_type, amount, status, bank_name, bank_account_number, bank_account_holder, admin_note, processed_by, processed_at, created_at`

func scanPaymentRequest(row pgx.Row) (*domain.PaymentRequest, error) {
	r := &domain.PaymentRequest{}
	var bankName, bankNumber, bankHolder *string
	err := row.Scan(
		&r.ID, &r.AccountID, &r.Type, &r.Amount, &r.Status,
		&bankName, &bankNumber, &bankHolder,
		&r.AdminNote, &r.ProcessedBy, &r.ProcessedAt, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if bankName != nil || bankNumber != nil || bankHolder != nil {
		r.BankInfo = &domain.BankInfo{}
		if bankName != nil {
			r.BankInfo.BankName = *bankName
		}
		if bankNumber != nil {
			r.BankInfo.AccountNumber = *bankNumber
		}
		if bankHolder != nil {
			r.BankInfo.AccountHolder = *bankHolder
		}
	}
	return r, nil
}

// Create inserts a new pending payment request.
func (r *PaymentRequestRepo) Create(ctx context.Context, req *domain.PaymentRequest) error {
	query := `INSERT INTO payment_requests (id, account_id, request_type, amount, status, bank_name, bank_account_number, bank_account_holder, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var bankName, bankNumber, bankHolder *string
	if req.BankInfo != nil {
		bankName = &req.BankInfo.BankName
		bankNumber = &req.BankInfo.AccountNumber
		bankHolder = &req.BankInfo.AccountHolder
	}

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.AccountID, req.Type, req.Amount, req.Status,
		bankName, bankNumber, bankHolder, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment request: %w", err)
	}
	return nil
}

// GetByID fetches a payment request by its UUID.
func (r *PaymentRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE id = $1`

	req, err := scanPaymentRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get payment request: %w", err)
	}
	return req, nil
}

// ListByAccount returns an account's payment requests, newest first.
func (r *PaymentRequestRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE account_id = $1 ORDER BY created_at DESC`
	return r.queryRequests(ctx, query, accountID)
}

// ListPending returns all pending requests for admin moderation, oldest
// first.
func (r *PaymentRequestRepo) ListPending(ctx context.Context) ([]domain.PaymentRequest, error) {
	query := `SELECT ` + paymentRequestColumns + ` FROM payment_requests WHERE status = 'pending' ORDER BY created_at ASC`
	return r.queryRequests(ctx, query)
}

func (r *PaymentRequestRepo) queryRequests(ctx context.Context, query string, args ...any) ([]domain.PaymentRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payment requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.PaymentRequest
	for rows.Next() {
		req := domain.PaymentRequest{}
		var bankName, bankNumber, bankHolder *string
		if err := rows.Scan(
			&req.ID, &req.AccountID, &req.Type, &req.Amount, &req.Status,
			&bankName, &bankNumber, &bankHolder,
			&req.AdminNote, &req.ProcessedBy, &req.ProcessedAt, &req.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan payment request: %w", err)
		}
		if bankName != nil || bankNumber != nil || bankHolder != nil {
			req.BankInfo = &domain.BankInfo{}
			if bankName != nil {
				req.BankInfo.BankName = *bankName
			}
			if bankNumber != nil {
				req.BankInfo.AccountNumber = *bankNumber
			}
			if bankHolder != nil {
				req.BankInfo.AccountHolder = *bankHolder
			}
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment requests: %w", err)
	}

	return requests, nil
}

// MarkProcessed flips a pending request to a terminal status. The WHERE
// clause guards against double-processing: the update only applies while
// the status is still pending.
func (r *PaymentRequestRepo) MarkProcessed(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentRequestStatus, adminID uuid.UUID, note *string, processedAt time.Time) (bool, error) {
	query := `UPDATE payment_requests
		SET status = $1, admin_note = $2, processed_by = $3, processed_at = $4
		WHERE id = $5 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, note, adminID, processedAt, id)
	if err != nil {
		return false, fmt.Errorf("mark payment request processed: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
