package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/askhat/gigledger/internal/model"
)

// Store-level outcomes of the transactional workflows. Absence and visibility
// failures are both gorm.ErrRecordNotFound so callers cannot tell them apart.
var (
	ErrJobAlreadyPaid    = errors.New("job already paid")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDepositCeiling    = errors.New("deposit exceeds allowed limit")
)

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, first_name, last_name, profession, role, balance, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// GetContractForParty returns the contract only when the party is its client
// or contractor. A miss and a visibility failure are indistinguishable.
func (r *LedgerRepository) GetContractForParty(ctx context.Context, contractID, partyID uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, contractor_id, terms, status, created_at
		FROM contracts
		WHERE id = ? AND (client_id = ? OR contractor_id = ?)
		LIMIT 1
	`, contractID, partyID, partyID).Scan(&contract).Error
	if err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &contract, nil
}

func (r *LedgerRepository) ListContractsForParty(ctx context.Context, partyID uuid.UUID) ([]model.Contract, error) {
	var contracts []model.Contract
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, client_id, contractor_id, terms, status, created_at
		FROM contracts
		WHERE (client_id = ? OR contractor_id = ?)
			AND status <> 'terminated'
		ORDER BY created_at ASC
	`, partyID, partyID).Scan(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *LedgerRepository) ListUnpaidJobsForParty(ctx context.Context, partyID uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.contract_id,
			j.description,
			j.price,
			COALESCE(j.paid, FALSE) AS paid,
			j.payment_date,
			j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE (c.client_id = ? OR c.contractor_id = ?)
			AND c.status <> 'terminated'
			AND j.paid IS NOT TRUE
		ORDER BY j.created_at ASC
	`, partyID, partyID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// PayJob moves the job price from the client to the contractor and marks the
// job paid, all inside one transaction. Every mutation is a guarded UPDATE
// checked by rows affected, so a concurrent payer or a stale balance read
// rolls the whole transfer back.
func (r *LedgerRepository) PayJob(ctx context.Context, clientID, jobID uuid.UUID, paidAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job struct {
			ID           uuid.UUID
			ContractorID uuid.UUID
			Price        decimal.Decimal
			Paid         bool
		}
		err := tx.Raw(`
			SELECT j.id, c.contractor_id, j.price, COALESCE(j.paid, FALSE) AS paid
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE j.id = ?
				AND c.client_id = ?
				AND c.status <> 'terminated'
		`, jobID, clientID).Scan(&job).Error
		if err != nil {
			return err
		}
		if job.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}
		if job.Paid {
			return ErrJobAlreadyPaid
		}

		debited, err := debitProfile(tx, clientID, job.Price)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientFunds
		}

		credited, err := creditProfile(tx, job.ContractorID, job.Price)
		if err != nil {
			return err
		}
		if !credited {
			return gorm.ErrRecordNotFound
		}

		flipped, err := flipJobPaid(tx, jobID, paidAt)
		if err != nil {
			return err
		}
		if !flipped {
			// lost the race, another payment committed first
			return ErrJobAlreadyPaid
		}
		return nil
	})
}

// debitProfile subtracts amount from the profile balance. Reports false when
// the balance does not cover the amount, leaving the row untouched.
func debitProfile(tx *gorm.DB, profileID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := tx.Exec(`
		UPDATE profiles
		SET balance = balance - ?
		WHERE id = ? AND balance >= ?
	`, amount, profileID, amount)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// creditProfile adds amount to the profile balance. Reports false when no
// such profile exists.
func creditProfile(tx *gorm.DB, profileID uuid.UUID, amount decimal.Decimal) (bool, error) {
	result := tx.Exec(`
		UPDATE profiles
		SET balance = balance + ?
		WHERE id = ?
	`, amount, profileID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// flipJobPaid marks the job paid. The `paid IS NOT TRUE` guard makes the
// transition at-most-once: a job another transaction already paid matches no
// row and flipJobPaid reports false.
func flipJobPaid(tx *gorm.DB, jobID uuid.UUID, paidAt time.Time) (bool, error) {
	result := tx.Exec(`
		UPDATE jobs
		SET paid = TRUE, payment_date = ?
		WHERE id = ? AND paid IS NOT TRUE
	`, paidAt, jobID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Deposit credits the client balance after checking the limit against the
// client's outstanding debt inside the same transaction. The ceiling is
// limitRatio times the debt, so a client with no unpaid jobs cannot deposit.
func (r *LedgerRepository) Deposit(ctx context.Context, clientID uuid.UUID, amount, limitRatio decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile struct {
			ID uuid.UUID
		}
		if err := tx.Raw(`SELECT id FROM profiles WHERE id = ? LIMIT 1`, clientID).Scan(&profile).Error; err != nil {
			return err
		}
		if profile.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var outstanding struct {
			Debt decimal.Decimal
		}
		err := tx.Raw(`
			SELECT COALESCE(SUM(j.price), 0) AS debt
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE c.client_id = ?
				AND c.status <> 'terminated'
				AND j.paid IS NOT TRUE
		`, clientID).Scan(&outstanding).Error
		if err != nil {
			return err
		}

		if amount.GreaterThan(outstanding.Debt.Mul(limitRatio)) {
			return ErrDepositCeiling
		}

		credited, err := creditProfile(tx, clientID, amount)
		if err != nil {
			return err
		}
		if !credited {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
