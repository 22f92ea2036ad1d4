// Package membership links users to the wallets they may access.
package membership

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

var (
	ErrInvalidUserID        = errors.New("invalid user ID")
	ErrInvalidWalletID      = errors.New("invalid wallet ID")
	ErrDuplicate            = errors.New("user is already linked to this wallet")
	ErrUserOrWalletNotFound = errors.New("user or wallet not found")
)

// Membership grants a user access to a wallet
type Membership struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	WalletID  int64     `json:"wallet_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the interface for membership persistence
type Repository interface {
	// Create stores a link. Returns ErrDuplicate or ErrUserOrWalletNotFound.
	Create(ctx context.Context, m *Membership) error

	// Exists reports whether the user is linked to the wallet
	Exists(ctx context.Context, userID, walletID int64) (bool, error)
}

// Service manages memberships
type Service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new membership service
func NewService(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: log.WithField("component", "membership_service"),
	}
}

// Create links a user to a wallet
func (s *Service) Create(ctx context.Context, userID, walletID int64) (*Membership, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}
	if walletID <= 0 {
		return nil, ErrInvalidWalletID
	}

	m := &Membership{
		UserID:    userID,
		WalletID:  walletID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrUserOrWalletNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}

	s.logger.Info("wallet member added", "user_id", userID, "wallet_id", walletID)

	return m, nil
}

// IsMember reports whether the user may access the wallet
func (s *Service) IsMember(ctx context.Context, userID, walletID int64) (bool, error) {
	if userID <= 0 || walletID <= 0 {
		return false, nil
	}

	ok, err := s.repo.Exists(ctx, userID, walletID)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return ok, nil
}
