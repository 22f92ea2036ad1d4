package wallet

import "errors"

var (
	// Validation errors
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrInvalidWalletID = errors.New("invalid wallet ID")
	ErrInvalidName     = errors.New("wallet name must be between 3 and 100 characters")
	ErrNegativeValue   = errors.New("wallet value cannot be negative")

	// Repository errors
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrUnauthorizedAccess = errors.New("unauthorized wallet access")
)
