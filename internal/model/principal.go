package model

import "github.com/google/uuid"

// Principal is the authenticated caller, resolved from the access token by the
// auth middleware before any ledger operation runs.
type Principal struct {
	ProfileID uuid.UUID
	Role      Role
}

func (p Principal) IsClient() bool     { return p.Role == RoleClient }
func (p Principal) IsContractor() bool { return p.Role == RoleContractor }
func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
