package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/askhat/gigledger/internal/config"
	"github.com/askhat/gigledger/internal/model"
	"github.com/askhat/gigledger/internal/repository"
)

// PaymentService owns the two money-moving workflows. Both run as a single
// store transaction: either every mutation commits or none does.
type PaymentService struct {
	repo              *repository.LedgerRepository
	depositLimitRatio decimal.Decimal
	now               func() time.Time
}

func NewPaymentService(repo *repository.LedgerRepository, cfg *config.Config) *PaymentService {
	return &PaymentService{
		repo:              repo,
		depositLimitRatio: cfg.Ledger.DepositLimitRatio,
		now:               time.Now,
	}
}

// PayJob debits the caller, credits the contractor and marks the job paid.
// The job must belong to a non-terminated contract where the caller is the
// client; anything else is ErrNotFound.
func (s *PaymentService) PayJob(ctx context.Context, principal model.Principal, jobID uuid.UUID) error {
	if jobID == uuid.Nil {
		return ErrInvalidInput
	}
	err := s.repo.PayJob(ctx, principal.ProfileID, jobID, s.now().UTC())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrJobAlreadyPaid):
		return ErrJobAlreadyPaid
	case errors.Is(err, repository.ErrInsufficientFunds):
		return ErrInsufficientFunds
	default:
		return err
	}
}

// Deposit adds funds to the caller's own balance, capped at the configured
// fraction of the caller's outstanding debt. Depositing to another profile is
// reported as ErrNotFound, same as a missing profile.
func (s *PaymentService) Deposit(ctx context.Context, principal model.Principal, targetID uuid.UUID, amount decimal.Decimal) error {
	if targetID != principal.ProfileID {
		return ErrNotFound
	}
	if !amount.IsPositive() {
		return ErrInvalidInput
	}
	err := s.repo.Deposit(ctx, principal.ProfileID, amount, s.depositLimitRatio)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDepositCeiling):
		return ErrDepositCeiling
	default:
		return err
	}
}
