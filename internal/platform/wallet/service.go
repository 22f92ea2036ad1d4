package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

// Service provides business logic for wallet operations
type Service struct {
	repo    Repository
	members MembershipChecker
	logger  *logger.Logger
}

// NewService creates a new wallet service
func NewService(repo Repository, members MembershipChecker, log *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		logger:  log.WithField("component", "wallet_service"),
	}
}

// Create creates a new wallet owned by userID
func (s *Service) Create(ctx context.Context, wallet *Wallet, userID int64) (*Wallet, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}

	if err := wallet.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	wallet.ID = 0
	wallet.CreatedAt = time.Now().UTC()

	if err := s.repo.Create(ctx, wallet, userID); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	s.logger.Info("wallet created", "wallet_id", wallet.ID, "user_id", userID)

	return wallet, nil
}

// GetByID retrieves a wallet the user is a member of
func (s *Service) GetByID(ctx context.Context, id, userID int64) (*Wallet, error) {
	if id <= 0 {
		return nil, ErrInvalidWalletID
	}

	wallet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.members.IsMember(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !ok {
		return nil, ErrUnauthorizedAccess
	}

	return wallet, nil
}

// List retrieves all wallets of a user
func (s *Service) List(ctx context.Context, userID int64) ([]*Wallet, error) {
	wallets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	return wallets, nil
}

// Exists reports whether a wallet exists
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.repo.Exists(ctx, id)
}
