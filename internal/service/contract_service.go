package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/askhat/gigledger/internal/model"
	"github.com/askhat/gigledger/internal/repository"
)

// ContractService is the read side of the ledger: visibility-filtered lookups
// of contracts and unpaid jobs. A record that exists but does not belong to
// the caller surfaces as ErrNotFound, never as a permission error.
type ContractService struct {
	repo *repository.LedgerRepository
}

func NewContractService(repo *repository.LedgerRepository) *ContractService {
	return &ContractService{repo: repo}
}

func (s *ContractService) GetContract(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.Contract, error) {
	if contractID == uuid.Nil {
		return nil, ErrInvalidInput
	}
	contract, err := s.repo.GetContractForParty(ctx, contractID, principal.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

// GetOwnProfile returns the caller's profile, balance included. Only the
// authenticated profile itself is visible through this path.
func (s *ContractService) GetOwnProfile(ctx context.Context, principal model.Principal) (*model.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, principal.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (s *ContractService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	return s.repo.ListContractsForParty(ctx, principal.ProfileID)
}

func (s *ContractService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	return s.repo.ListUnpaidJobsForParty(ctx, principal.ProfileID)
}
