package postgres

import (
	"context"
	"testing"
	"time"

	"codemarket/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest() *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Type:      domain.PaymentRequestWithdrawal,
		Amount:    200000,
		Status:    domain.PaymentRequestPending,
		BankInfo: &domain.BankInfo{
			BankName:      "Vietcombank",
			AccountNumber: "00112233445",
			AccountHolder: "NGUYEN VAN A",
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func requestColumnsList() []string {
	return []string{"id", "account_id", "request_type", "amount", "status",
		"bank_name", "bank_account_number", "bank_account_holder",
		"admin_note", "processed_by", "processed_at", "created_at"}
}

func TestPaymentRequestRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRequestRepo(mock)
	req := newTestRequest()

	mock.ExpectExec("INSERT INTO payment_requests").
		WithArgs(req.ID, req.AccountID, req.Type, req.Amount, req.Status,
			&req.BankInfo.BankName, &req.BankInfo.AccountNumber, &req.BankInfo.AccountHolder,
			req.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), req)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRequestRepo(mock)
	req := newTestRequest()

	rows := pgxmock.NewRows(requestColumnsList()).AddRow(
		req.ID, req.AccountID, req.Type, req.Amount, req.Status,
		&req.BankInfo.BankName, &req.BankInfo.AccountNumber, &req.BankInfo.AccountHolder,
		nil, nil, nil, req.CreatedAt,
	)

	mock.ExpectQuery("SELECT .+ FROM payment_requests WHERE id").
		WithArgs(req.ID).
		WillReturnRows(rows)

	result, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, req.Amount, result.Amount)
	require.NotNil(t, result.BankInfo)
	assert.Equal(t, "Vietcombank", result.BankInfo.BankName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRequestRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM payment_requests WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(requestColumnsList()))

	result, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestRepo_MarkProcessed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRequestRepo(mock)
	id := uuid.New()
	adminID := uuid.New()
	note := "verified bank transfer"
	processedAt := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_requests").
		WithArgs(domain.PaymentRequestApproved, &note, adminID, processedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.MarkProcessed(context.Background(), tx, id, domain.PaymentRequestApproved, adminID, &note, processedAt)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRequestRepo_MarkProcessed_AlreadyTerminal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRequestRepo(mock)
	id := uuid.New()
	adminID := uuid.New()
	processedAt := time.Now().UTC()

	// Status is no longer pending: conditional update touches zero rows.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_requests").
		WithArgs(domain.PaymentRequestRejected, (*string)(nil), adminID, processedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.MarkProcessed(context.Background(), tx, id, domain.PaymentRequestRejected, adminID, nil, processedAt)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
