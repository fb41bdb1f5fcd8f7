package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job is a unit of work under a contract. The source schema allows NULL in the
// paid column; queries normalize it with `paid IS NOT TRUE`, so Paid is a plain
// two-valued flag here. Once Paid is true the row is never mutated again.
type Job struct {
	ID          uuid.UUID
	ContractID  uuid.UUID
	Description string
	Price       decimal.Decimal
	Paid        bool
	PaymentDate *time.Time
	CreatedAt   time.Time
}
