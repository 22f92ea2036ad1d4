package wallet

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Name limits
const (
	MinNameLength = 3
	MaxNameLength = 100
)

// Wallet is a named account. Value is a nominal figure set at creation;
// the live balance is the signed sum of the wallet's items.
type Wallet struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Value     decimal.Decimal `json:"value" db:"value"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// ValidateCreate validates wallet fields for creation
func (w *Wallet) ValidateCreate() error {
	w.Name = strings.TrimSpace(w.Name)
	if n := utf8.RuneCountInString(w.Name); n < MinNameLength || n > MaxNameLength {
		return ErrInvalidName
	}

	if w.Value.IsNegative() {
		return ErrNegativeValue
	}

	return nil
}
