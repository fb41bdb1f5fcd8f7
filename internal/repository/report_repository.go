package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/askhat/gigledger/internal/model"
)

// ReportRepository runs read-only aggregations over paid jobs. No transaction
// is needed; results are ordered total DESC with a deterministic tie-break.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) BestProfession(ctx context.Context, start, end time.Time) (*model.ProfessionTotal, error) {
	var row model.ProfessionTotal
	result := r.db.WithContext(ctx).Raw(`
		SELECT p.profession AS profession, SUM(j.price) AS total
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid = ?
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY p.profession
		ORDER BY total DESC, p.profession ASC
		LIMIT 1
	`, true, start, end).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	// rows scanned, not the profession value, decides presence: an empty
	// profession string is a legal winner
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *ReportRepository) TopClients(ctx context.Context, start, end time.Time, limit int) ([]model.ClientTotal, error) {
	var rows []model.ClientTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.client_id AS id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid = ?
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY c.client_id, p.first_name, p.last_name
		ORDER BY paid DESC, c.client_id ASC
		LIMIT ?
	`, true, start, end, limit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) TotalPaid(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(j.price), 0) AS total
		FROM jobs j
		WHERE j.paid = ?
			AND j.payment_date >= ?
			AND j.payment_date <= ?
	`, true, start, end).Scan(&row).Error
	if err != nil {
		return decimal.Decimal{}, err
	}
	return row.Total, nil
}
