package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/askhat/gigledger/internal/config"
	"github.com/askhat/gigledger/internal/model"
)

var testSchema = []string{
	`CREATE TABLE profiles (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		profession TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		balance NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE contracts (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES profiles(id),
		contractor_id TEXT NOT NULL REFERENCES profiles(id),
		terms TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'new',
		created_at DATETIME NOT NULL
	);`,
	`CREATE TABLE jobs (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL REFERENCES contracts(id),
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC NOT NULL,
		paid BOOLEAN,
		payment_date DATETIME,
		created_at DATETIME NOT NULL
	);`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range testSchema {
		require.NoError(t, database.Exec(stmt).Error)
	}
	return database
}

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			DepositLimitRatio: decimal.New(25, -2),
			BestClientsLimit:  2,
		},
	}
}

func seedProfile(t *testing.T, db *gorm.DB, role model.Role, firstName, lastName, profession string, balance decimal.Decimal) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`
		INSERT INTO profiles (id, first_name, last_name, profession, role, balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, firstName, lastName, profession, string(role), balance, time.Now().UTC()).Error
	require.NoError(t, err)
	return id
}

func seedContract(t *testing.T, db *gorm.DB, clientID, contractorID uuid.UUID, status model.ContractStatus) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`
		INSERT INTO contracts (id, client_id, contractor_id, terms, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, clientID, contractorID, "standard terms", string(status), time.Now().UTC()).Error
	require.NoError(t, err)
	return id
}

func seedJob(t *testing.T, db *gorm.DB, contractID uuid.UUID, price decimal.Decimal) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`
		INSERT INTO jobs (id, contract_id, description, price, paid, created_at)
		VALUES (?, ?, ?, ?, NULL, ?)
	`, id, contractID, "work", price, time.Now().UTC()).Error
	require.NoError(t, err)
	return id
}

func seedPaidJob(t *testing.T, db *gorm.DB, contractID uuid.UUID, price decimal.Decimal, paidAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(`
		INSERT INTO jobs (id, contract_id, description, price, paid, payment_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, contractID, "work", price, true, paidAt, time.Now().UTC()).Error
	require.NoError(t, err)
	return id
}

func profileBalance(t *testing.T, db *gorm.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()
	var row struct {
		Balance decimal.Decimal
	}
	require.NoError(t, db.Raw(`SELECT balance FROM profiles WHERE id = ?`, id).Scan(&row).Error)
	return row.Balance
}

func jobPaidState(t *testing.T, db *gorm.DB, id uuid.UUID) (bool, *time.Time) {
	t.Helper()
	var row struct {
		Paid        bool
		PaymentDate *time.Time
	}
	require.NoError(t, db.Raw(`
		SELECT COALESCE(paid, FALSE) AS paid, payment_date FROM jobs WHERE id = ?
	`, id).Scan(&row).Error)
	return row.Paid, row.PaymentDate
}
