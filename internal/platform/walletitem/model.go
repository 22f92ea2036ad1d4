package walletitem

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Type discriminates ledger entries: credits add to the wallet balance,
// debits subtract from it.
type Type string

const (
	TypeCredit Type = "CREDIT"
	TypeDebit  Type = "DEBIT"
)

// External labels used by clients
const (
	LabelCredit = "ENTRADA"
	LabelDebit  = "SAÍDA"
)

// MaxDescriptionLength is the longest description accepted, in characters.
const MaxDescriptionLength = 500

var typesByLabel = map[string]Type{
	LabelCredit:        TypeCredit,
	LabelDebit:         TypeDebit,
	string(TypeCredit): TypeCredit,
	string(TypeDebit):  TypeDebit,
}

var labelsByType = map[Type]string{
	TypeCredit: LabelCredit,
	TypeDebit:  LabelDebit,
}

// ParseType resolves a client label ("ENTRADA", "SAÍDA") or a canonical
// name ("CREDIT", "DEBIT") to a Type.
func ParseType(label string) (Type, error) {
	if t, ok := typesByLabel[strings.TrimSpace(label)]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, label)
}

// IsValid checks if the type is one of the known types
func (t Type) IsValid() bool {
	_, ok := labelsByType[t]
	return ok
}

// Label returns the client-facing label of the type
func (t Type) Label() string {
	return labelsByType[t]
}

// Types returns every known type
func Types() []Type {
	return []Type{TypeCredit, TypeDebit}
}

// WalletItem is one dated, typed monetary movement belonging to exactly one wallet.
type WalletItem struct {
	ID          int64           `json:"id" db:"id"`
	WalletID    int64           `json:"wallet_id" db:"wallet"`
	Date        time.Time       `json:"date" db:"date"`
	Type        Type            `json:"type" db:"type"`
	Description string          `json:"description" db:"description"`
	Value       decimal.Decimal `json:"value" db:"value"` // magnitude; sign comes from Type
}

// SignedValue returns the value with the sign implied by the type
func (i *WalletItem) SignedValue() decimal.Decimal {
	if i.Type == TypeDebit {
		return i.Value.Neg()
	}
	return i.Value
}

// Validate checks the fields every stored item must carry and normalizes the date.
// A zero Value is a valid amount, not a missing one: callers that accept
// optional input must reject an absent value before building the item.
func (i *WalletItem) Validate() error {
	if i.WalletID <= 0 {
		return ValidationError(ErrMissingWalletID)
	}

	if i.Date.IsZero() {
		return ValidationError(ErrMissingDate)
	}
	i.Date = DateOf(i.Date)

	if i.Type == "" {
		return ValidationError(ErrMissingType)
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, i.Type)
	}

	if i.Value.IsNegative() {
		return ValidationError(ErrNegativeValue)
	}

	if utf8.RuneCountInString(i.Description) > MaxDescriptionLength {
		return ValidationError(ErrDescriptionTooLong)
	}

	return nil
}

// Clone returns a copy that shares no memory with i
func (i *WalletItem) Clone() *WalletItem {
	c := *i
	return &c
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Page is one page of a date-range query
type Page struct {
	Items      []*WalletItem `json:"items"`
	TotalCount int64         `json:"total_count"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
}

// TotalPages returns the number of pages needed for TotalCount items
func (p *Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// Deletion confirms a removed wallet item
type Deletion struct {
	ID       int64 `json:"id"`
	WalletID int64 `json:"wallet_id"`
}

// Message returns a human-readable confirmation
func (d *Deletion) Message() string {
	return fmt.Sprintf("wallet item %d deleted", d.ID)
}
