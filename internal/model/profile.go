package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleClient     Role = "client"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
)

type Profile struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Profession string
	Role       Role
	Balance    decimal.Decimal
	CreatedAt  time.Time
}

func (p Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
