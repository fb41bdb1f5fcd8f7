package service

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrJobAlreadyPaid    = errors.New("job already paid")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDepositCeiling    = errors.New("deposit exceeds allowed limit")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidInput      = errors.New("invalid input")
)
