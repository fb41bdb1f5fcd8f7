package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

// Contract links one client profile and one contractor profile. A terminated
// contract is permanently excluded from payment and unpaid-job visibility.
type Contract struct {
	ID           uuid.UUID
	ClientID     uuid.UUID
	ContractorID uuid.UUID
	Terms        string
	Status       ContractStatus
	CreatedAt    time.Time
}
