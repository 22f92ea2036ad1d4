package walletitem

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventKind names a wallet item change
type EventKind string

const (
	EventCreated EventKind = "wallet_item.created"
	EventUpdated EventKind = "wallet_item.updated"
	EventDeleted EventKind = "wallet_item.deleted"
)

// ItemEvent notifies downstream consumers that a wallet item changed
type ItemEvent struct {
	ID         uuid.UUID   `json:"id"`
	Kind       EventKind   `json:"kind"`
	WalletID   int64       `json:"wallet_id"`
	ItemID     int64       `json:"item_id"`
	Item       *WalletItem `json:"item,omitempty"` // nil for deletions
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewItemEvent builds an event for an item
func NewItemEvent(kind EventKind, walletID, itemID int64, item *WalletItem) ItemEvent {
	return ItemEvent{
		ID:         uuid.New(),
		Kind:       kind,
		WalletID:   walletID,
		ItemID:     itemID,
		Item:       item,
		OccurredAt: time.Now().UTC(),
	}
}

// NopPublisher discards events
type NopPublisher struct{}

// Publish implements EventPublisher
func (NopPublisher) Publish(context.Context, ItemEvent) error { return nil }
