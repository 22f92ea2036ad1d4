package walletitem

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

// DefaultItemsPerPage is used when no page size is configured
const DefaultItemsPerPage = 10

// Service orchestrates wallet item operations.
// Every write invalidates the wallet's cached queries before returning.
type Service struct {
	repo         Repository
	guard        *AccessGuard
	balance      *BalanceAggregator
	cache        QueryCache
	publisher    EventPublisher
	itemsPerPage int
	logger       *logger.Logger
}

// NewService creates a new wallet item service
func NewService(
	repo Repository,
	guard *AccessGuard,
	cache QueryCache,
	publisher EventPublisher,
	itemsPerPage int,
	log *logger.Logger,
) *Service {
	if itemsPerPage <= 0 {
		itemsPerPage = DefaultItemsPerPage
	}
	if publisher == nil {
		publisher = NopPublisher{}
	}

	return &Service{
		repo:         repo,
		guard:        guard,
		balance:      NewBalanceAggregator(repo),
		cache:        cache,
		publisher:    publisher,
		itemsPerPage: itemsPerPage,
		logger:       log.WithField("component", "wallet_item_service"),
	}
}

// ItemsPerPage returns the configured page size
func (s *Service) ItemsPerPage() int {
	return s.itemsPerPage
}

// Create records a new item in a wallet. item.Value is taken as given,
// zero included; see WalletItem.Validate.
func (s *Service) Create(ctx context.Context, item *WalletItem) (*WalletItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	created := item.Clone()
	created.ID = 0

	if err := s.repo.Create(ctx, created); err != nil {
		return nil, StorageError("create wallet item", err)
	}

	if err := s.invalidate(ctx, created.WalletID); err != nil {
		return nil, err
	}

	s.publish(ctx, NewItemEvent(EventCreated, created.WalletID, created.ID, created))

	return created, nil
}

// Update replaces the fields of an existing item.
// Moving an item to another wallet is rejected before any other validation.
func (s *Service) Update(ctx context.Context, item *WalletItem) (*WalletItem, error) {
	if item.ID <= 0 {
		return nil, ValidationError(ErrMissingItemID)
	}

	existing, err := s.repo.GetByID(ctx, item.ID)
	if err != nil {
		return nil, StorageError("get wallet item", err)
	}

	if existing.WalletID != item.WalletID {
		return nil, fmt.Errorf("%w: item %d belongs to wallet %d", ErrImmutableWallet, existing.ID, existing.WalletID)
	}

	updated := item.Clone()
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, StorageError("update wallet item", err)
	}

	if err := s.invalidate(ctx, updated.WalletID); err != nil {
		return nil, err
	}

	s.publish(ctx, NewItemEvent(EventUpdated, updated.WalletID, updated.ID, updated))

	return updated, nil
}

// Delete removes an item
func (s *Service) Delete(ctx context.Context, id int64) (*Deletion, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, StorageError("get wallet item", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, StorageError("delete wallet item", err)
	}

	if err := s.invalidate(ctx, existing.WalletID); err != nil {
		return nil, err
	}

	s.publish(ctx, NewItemEvent(EventDeleted, existing.WalletID, existing.ID, nil))

	return &Deletion{ID: existing.ID, WalletID: existing.WalletID}, nil
}

// GetByID retrieves a single item
func (s *Service) GetByID(ctx context.Context, id int64) (*WalletItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, StorageError("get wallet item", err)
	}
	return item, nil
}

// FindBetweenDates returns one page of the wallet's items dated within
// [start, end]. The caller must be a member of the wallet.
func (s *Service) FindBetweenDates(ctx context.Context, userID, walletID int64, start, end time.Time, page int) (*Page, error) {
	ok, err := s.guard.Authorize(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotWalletMember
	}

	if page < 0 || page > s.lastPage() {
		return nil, ValidationError(fmt.Errorf("%w: %d", ErrInvalidPage, page))
	}

	start, end = DateOf(start), DateOf(end)
	if start.After(end) {
		return nil, ValidationError(ErrInvalidDateRange)
	}

	items, total, err := s.repo.FindByWalletAndDateRange(ctx, walletID, start, end, page, s.itemsPerPage)
	if err != nil {
		return nil, StorageError("find wallet items by date", err)
	}

	return &Page{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   s.itemsPerPage,
	}, nil
}

// FindByWalletAndType returns the wallet's items of the labelled type,
// served from the query cache when possible.
func (s *Service) FindByWalletAndType(ctx context.Context, walletID int64, label string) ([]*WalletItem, error) {
	t, err := ParseType(label)
	if err != nil {
		return nil, err
	}

	items, err := s.cache.GetOrCompute(ctx, walletID, t, func(ctx context.Context) ([]*WalletItem, error) {
		return s.repo.FindByWalletAndType(ctx, walletID, t)
	})
	if err != nil {
		return nil, StorageError("find wallet items by type", err)
	}

	return items, nil
}

// SumByWallet returns the wallet balance, zero when it has no items
func (s *Service) SumByWallet(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	return s.balance.Sum(ctx, walletID)
}

// lastPage is the highest page whose end offset still fits in an int
func (s *Service) lastPage() int {
	return math.MaxInt/s.itemsPerPage - 1
}

func (s *Service) invalidate(ctx context.Context, walletID int64) error {
	if err := s.cache.InvalidateWallet(ctx, walletID); err != nil {
		s.logger.Error("failed to invalidate wallet cache", "wallet_id", walletID, "error", err)
		return StorageError("invalidate wallet cache", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event ItemEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish wallet item event",
			"kind", event.Kind,
			"wallet_id", event.WalletID,
			"item_id", event.ItemID,
			"error", err,
		)
	}
}
