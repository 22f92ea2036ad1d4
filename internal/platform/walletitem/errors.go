package walletitem

import (
	"errors"
	"fmt"
)

// Validation errors. Field errors are reported joined with ErrValidation so
// callers can match either the category or the specific field.
var (
	ErrValidation         = errors.New("validation failed")
	ErrMissingItemID      = errors.New("wallet item ID is required")
	ErrMissingWalletID    = errors.New("wallet ID is required")
	ErrMissingDate        = errors.New("date is required")
	ErrMissingType        = errors.New("type is required")
	ErrMissingValue       = errors.New("value is required")
	ErrNegativeValue      = errors.New("value cannot be negative")
	ErrDescriptionTooLong = errors.New("description exceeds 500 characters")
	ErrInvalidPage        = errors.New("page is out of range")
	ErrInvalidDateRange   = errors.New("start date must not be after end date")
)

// Lookup errors
var (
	ErrNotFound       = errors.New("not found")
	ErrItemNotFound   = fmt.Errorf("wallet item %w", ErrNotFound)
	ErrWalletNotFound = fmt.Errorf("wallet %w", ErrNotFound)
)

// Business rule errors
var (
	ErrImmutableWallet = errors.New("wallet of an existing item cannot be changed")
	ErrUnknownType     = errors.New("unrecognized wallet item type")
	ErrNotWalletMember = errors.New("user is not a member of this wallet")
)

// ErrStorageUnavailable marks failures of the backing store or cache.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ValidationError reports a missing or malformed field.
func ValidationError(field error) error {
	return fmt.Errorf("%w: %w", ErrValidation, field)
}

// StorageError wraps a backend failure so it matches ErrStorageUnavailable.
// Domain errors that already carry meaning are returned untouched.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
