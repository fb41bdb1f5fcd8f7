package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFlipJobPaidGuard(t *testing.T) {
	db := newTestDB(t)
	paidAt := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	client := seedProfile(t, db, "client", "Harry", "Potter", "", decimal.NewFromInt(100))
	contractor := seedProfile(t, db, "contractor", "John", "Lenon", "Musician", decimal.Zero)
	contract := seedContract(t, db, client, contractor, "in_progress")

	t.Run("null paid flips", func(t *testing.T) {
		job := seedJob(t, db, contract, decimal.NewFromInt(10))
		flipped, err := flipJobPaid(db, job, paidAt)
		require.NoError(t, err)
		require.True(t, flipped)
		require.True(t, jobIsPaid(t, db, job))
	})

	t.Run("false paid flips", func(t *testing.T) {
		job := seedJob(t, db, contract, decimal.NewFromInt(10))
		require.NoError(t, db.Exec(`UPDATE jobs SET paid = ? WHERE id = ?`, false, job).Error)
		flipped, err := flipJobPaid(db, job, paidAt)
		require.NoError(t, err)
		require.True(t, flipped)
	})

	t.Run("paid row matches nothing", func(t *testing.T) {
		job := seedPaidJob(t, db, contract, decimal.NewFromInt(10), paidAt)
		flipped, err := flipJobPaid(db, job, paidAt)
		require.NoError(t, err)
		require.False(t, flipped)
	})
}

// Replays the loser's side of two concurrent payments: the winner has already
// committed paid = TRUE, so when the loser's transaction reaches the flip it
// matches no row and every earlier balance mutation must roll back.
func TestPayJobLostRaceRollsBack(t *testing.T) {
	db := newTestDB(t)
	paidAt := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	price := decimal.NewFromInt(100)

	client := seedProfile(t, db, "client", "Harry", "Potter", "", decimal.NewFromInt(100))
	contractor := seedProfile(t, db, "contractor", "John", "Lenon", "Musician", decimal.Zero)
	contract := seedContract(t, db, client, contractor, "in_progress")
	job := seedPaidJob(t, db, contract, price, paidAt)

	err := db.Transaction(func(tx *gorm.DB) error {
		debited, err := debitProfile(tx, client, price)
		if err != nil {
			return err
		}
		require.True(t, debited)

		credited, err := creditProfile(tx, contractor, price)
		if err != nil {
			return err
		}
		require.True(t, credited)

		flipped, err := flipJobPaid(tx, job, paidAt)
		if err != nil {
			return err
		}
		if !flipped {
			return ErrJobAlreadyPaid
		}
		return nil
	})
	require.ErrorIs(t, err, ErrJobAlreadyPaid)

	require.True(t, profileBalance(t, db, client).Equal(decimal.NewFromInt(100)))
	require.True(t, profileBalance(t, db, contractor).IsZero())
}

func TestPayJobRollsBackWhenContractorMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewLedgerRepository(db)

	client := seedProfile(t, db, "client", "Harry", "Potter", "", decimal.NewFromInt(100))
	contract := seedContract(t, db, client, uuid.New(), "in_progress")
	job := seedJob(t, db, contract, decimal.NewFromInt(40))

	err := repo.PayJob(context.Background(), client, job, time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// the debit rolled back along with the failed credit
	require.True(t, profileBalance(t, db, client).Equal(decimal.NewFromInt(100)))
	require.False(t, jobIsPaid(t, db, job))
}

func TestDebitProfileGuard(t *testing.T) {
	db := newTestDB(t)

	client := seedProfile(t, db, "client", "Harry", "Potter", "", decimal.NewFromInt(100))

	debited, err := debitProfile(db, client, decimal.NewFromInt(150))
	require.NoError(t, err)
	require.False(t, debited)
	require.True(t, profileBalance(t, db, client).Equal(decimal.NewFromInt(100)))

	debited, err = debitProfile(db, client, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, debited)
	require.True(t, profileBalance(t, db, client).IsZero())
}

func TestCreditProfileGuard(t *testing.T) {
	db := newTestDB(t)

	credited, err := creditProfile(db, uuid.New(), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.False(t, credited)

	client := seedProfile(t, db, "client", "Harry", "Potter", "", decimal.NewFromInt(5))
	credited, err = creditProfile(db, client, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.True(t, credited)
	require.True(t, profileBalance(t, db, client).Equal(decimal.NewFromInt(15)))
}
