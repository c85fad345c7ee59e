package service

import (
	"context"
	"fmt"
	"time"

	"codemarket/internal/core/domain"
	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentRequestServiceImpl implements ports.PaymentRequestService.
//
// Submitting never touches the balance. Only an admin approval moves
// money, and the balance is re-checked at approval time because it may
// have changed since submission.
type PaymentRequestServiceImpl struct {
	requestRepo ports.PaymentRequestRepository
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	notifSvc    ports.NotificationService
	mailer      ports.Mailer // nil = email disabled
	log         zerolog.Logger
}

// NewPaymentRequestService creates a new PaymentRequestServiceImpl.
func NewPaymentRequestService(
	requestRepo ports.PaymentRequestRepository,
	accountRepo ports.AccountRepository,
	transactor ports.DBTransactor,
	notifSvc ports.NotificationService,
	mailer ports.Mailer,
	log zerolog.Logger,
) *PaymentRequestServiceImpl {
	return &PaymentRequestServiceImpl{
		requestRepo: requestRepo,
		accountRepo: accountRepo,
		transactor:  transactor,
		notifSvc:    notifSvc,
		mailer:      mailer,
		log:         log,
	}
}

// Submit creates a pending deposit or withdrawal request.
func (s *PaymentRequestServiceImpl) Submit(ctx context.Context, req ports.SubmitPaymentRequest) (*domain.PaymentRequest, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	if req.Type == domain.PaymentRequestWithdrawal {
		if req.BankInfo == nil || req.BankInfo.Empty() {
			return nil, apperror.ErrMissingBankInfo()
		}
		// Soft check only; the authoritative check happens at approval.
		if !account.CanDebit(req.Amount) {
			return nil, apperror.ErrInsufficientBalance()
		}
	}

	request := &domain.PaymentRequest{
		ID:        uuid.New(),
		AccountID: req.AccountID,
		Type:      req.Type,
		Amount:    req.Amount,
		Status:    domain.PaymentRequestPending,
		BankInfo:  req.BankInfo,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create payment request: %w", err))
	}

	s.log.Info().
		Str("request_id", request.ID.String()).
		Str("account_id", req.AccountID.String()).
		Str("type", string(req.Type)).
		Int64("amount", req.Amount).
		Msg("payment request submitted")

	return request, nil
}

// Approve transitions a pending request to approved and applies the
// balance mutation. The status flip and the ledger write share one
// transaction, so a concurrent double-approve cannot double-credit.
func (s *PaymentRequestServiceImpl) Approve(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load request: %w", err))
	}
	if request == nil {
		return nil, apperror.ErrNotFound("payment request")
	}
	if !request.IsPending() {
		return nil, apperror.ErrAlreadyProcessed()
	}

	// Begin database transaction
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	flipped, err := s.requestRepo.MarkProcessed(ctx, dbTx, requestID, domain.PaymentRequestApproved, adminID, notePtr, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark approved: %w", err))
	}
	if !flipped {
		return nil, apperror.ErrAlreadyProcessed()
	}

	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, request.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	var newBalance int64
	switch request.Type {
	case domain.PaymentRequestDeposit:
		newBalance = account.Balance + request.Amount
	case domain.PaymentRequestWithdrawal:
		// Re-check at approval time: the balance may have dropped since
		// submission.
		if !account.CanDebit(request.Amount) {
			return nil, apperror.ErrInsufficientBalance()
		}
		newBalance = account.Balance - request.Amount
	default:
		return nil, apperror.InternalError(fmt.Errorf("unknown request type %q", request.Type))
	}

	if err := s.accountRepo.SetBalance(ctx, dbTx, account.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("apply balance: %w", err))
	}

	// Commit
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	request.Status = domain.PaymentRequestApproved
	request.AdminNote = notePtr
	request.ProcessedBy = &adminID
	request.ProcessedAt = &now

	s.notifyTransition(ctx, request, account.Email, account.DisplayName)

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("admin_id", adminID.String()).
		Str("type", string(request.Type)).
		Int64("amount", request.Amount).
		Int64("balance", newBalance).
		Msg("payment request approved")

	return request, nil
}

// Reject transitions a pending request to rejected. No balance change.
func (s *PaymentRequestServiceImpl) Reject(ctx context.Context, requestID, adminID uuid.UUID, note string) (*domain.PaymentRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load request: %w", err))
	}
	if request == nil {
		return nil, apperror.ErrNotFound("payment request")
	}
	if !request.IsPending() {
		return nil, apperror.ErrAlreadyProcessed()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	flipped, err := s.requestRepo.MarkProcessed(ctx, dbTx, requestID, domain.PaymentRequestRejected, adminID, notePtr, now)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark rejected: %w", err))
	}
	if !flipped {
		return nil, apperror.ErrAlreadyProcessed()
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	request.Status = domain.PaymentRequestRejected
	request.AdminNote = notePtr
	request.ProcessedBy = &adminID
	request.ProcessedAt = &now

	account, err := s.accountRepo.GetByID(ctx, request.AccountID)
	if err == nil && account != nil {
		s.notifyTransition(ctx, request, account.Email, account.DisplayName)
	}

	s.log.Info().
		Str("request_id", requestID.String()).
		Str("admin_id", adminID.String()).
		Msg("payment request rejected")

	return request, nil
}

// ListByAccount returns an account's payment request history.
func (s *PaymentRequestServiceImpl) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.PaymentRequest, error) {
	requests, err := s.requestRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list requests: %w", err))
	}
	return requests, nil
}

// ListPending returns all pending requests for admin moderation.
func (s *PaymentRequestServiceImpl) ListPending(ctx context.Context) ([]domain.PaymentRequest, error) {
	requests, err := s.requestRepo.ListPending(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending requests: %w", err))
	}
	return requests, nil
}

// notifyTransition emits the in-app notification and best-effort email
// for a processed request. Outside the transactional boundary.
func (s *PaymentRequestServiceImpl) notifyTransition(ctx context.Context, request *domain.PaymentRequest, email, displayName string) {
	var notifType domain.NotificationType
	var title, verb string

	switch {
	case request.Type == domain.PaymentRequestDeposit && request.Status == domain.PaymentRequestApproved:
		notifType, title, verb = domain.NotificationDepositApproved, "Nap tien thanh cong", "duoc duyet"
	case request.Type == domain.PaymentRequestDeposit && request.Status == domain.PaymentRequestRejected:
		notifType, title, verb = domain.NotificationDepositRejected, "Yeu cau nap tien bi tu choi", "bi tu choi"
	case request.Type == domain.PaymentRequestWithdrawal && request.Status == domain.PaymentRequestApproved:
		notifType, title, verb = domain.NotificationWithdrawalApproved, "Rut tien thanh cong", "duoc duyet"
	default:
		notifType, title, verb = domain.NotificationWithdrawalRejected, "Yeu cau rut tien bi tu choi", "bi tu choi"
	}

	message := fmt.Sprintf("Yeu cau %s %d VND cua ban da %s.", request.Type, request.Amount, verb)
	if request.AdminNote != nil {
		message += " Ghi chu: " + *request.AdminNote
	}
	s.notifSvc.Notify(ctx, request.AccountID, notifType, title, message, &request.ID)

	if s.mailer != nil && email != "" {
		body := fmt.Sprintf("<p>Xin chao %s,</p><p>%s</p>", displayName, message)
		go func() {
			if err := s.mailer.Send(email, title, body); err != nil {
				s.log.Warn().Err(err).Str("request_id", request.ID.String()).Msg("payment email delivery failed")
			}
		}()
	}
}
