package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProfessionTotal is one row of the best-profession aggregation.
type ProfessionTotal struct {
	Profession string
	Total      decimal.Decimal
}

// ClientTotal is one row of the best-clients aggregation.
type ClientTotal struct {
	ID       uuid.UUID
	FullName string
	Paid     decimal.Decimal
}

// EarningsReport is the exportable summary for a payment-date range.
type EarningsReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalPaid      decimal.Decimal
	BestProfession string
	Clients        []ClientTotal
}
