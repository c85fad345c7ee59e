package service

import (
	"context"
	"fmt"

	"codemarket/internal/core/ports"
	"codemarket/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// defaultBalanceRetries bounds the CAS retry loop on balance updates.
const defaultBalanceRetries = 3

// LedgerServiceImpl implements ports.LedgerService. Single-account
// operations use optimistic compare-and-swap writes: the balance is read,
// the new value computed, and the write applied only if the persisted
// balance is unchanged. Conflicts are retried a bounded number of times.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	maxRetries  int
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl. maxRetries <= 0
// selects the default retry bound.
func NewLedgerService(accountRepo ports.AccountRepository, maxRetries int, log zerolog.Logger) *LedgerServiceImpl {
	if maxRetries <= 0 {
		maxRetries = defaultBalanceRetries
	}
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		maxRetries:  maxRetries,
		log:         log,
	}
}

// Credit adds amount to the account balance.
func (s *LedgerServiceImpl) Credit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		account, err := s.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return 0, apperror.InternalError(fmt.Errorf("load account: %w", err))
		}
		if account == nil {
			return 0, apperror.ErrNotFound("account")
		}

		newBalance := account.Balance + amount
		ok, err := s.accountRepo.UpdateBalance(ctx, accountID, newBalance, account.Balance)
		if err != nil {
			return 0, apperror.InternalError(fmt.Errorf("credit balance: %w", err))
		}
		if ok {
			s.log.Info().
				Str("account_id", accountID.String()).
				Int64("amount", amount).
				Int64("balance", newBalance).
				Msg("account credited")
			return newBalance, nil
		}

		s.log.Debug().
			Str("account_id", accountID.String()).
			Int("attempt", attempt+1).
			Msg("credit CAS conflict, retrying")
	}

	return 0, apperror.ErrContention(fmt.Errorf("credit: %d attempts exhausted", s.maxRetries))
}

// Debit subtracts amount from the account balance. The resulting balance
// never goes negative.
func (s *LedgerServiceImpl) Debit(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.ErrInvalidAmount()
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		account, err := s.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return 0, apperror.InternalError(fmt.Errorf("load account: %w", err))
		}
		if account == nil {
			return 0, apperror.ErrNotFound("account")
		}
		if !account.CanDebit(amount) {
			return 0, apperror.ErrInsufficientBalance()
		}

		newBalance := account.Balance - amount
		ok, err := s.accountRepo.UpdateBalance(ctx, accountID, newBalance, account.Balance)
		if err != nil {
			return 0, apperror.InternalError(fmt.Errorf("debit balance: %w", err))
		}
		if ok {
			s.log.Info().
				Str("account_id", accountID.String()).
				Int64("amount", amount).
				Int64("balance", newBalance).
				Msg("account debited")
			return newBalance, nil
		}

		s.log.Debug().
			Str("account_id", accountID.String()).
			Int("attempt", attempt+1).
			Msg("debit CAS conflict, retrying")
	}

	return 0, apperror.ErrContention(fmt.Errorf("debit: %d attempts exhausted", s.maxRetries))
}

// GetBalance returns the current account balance.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("load account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrNotFound("account")
	}
	return account.Balance, nil
}
