package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/kislikjeka/walletledger/internal/platform/membership"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
)

// MembershipServiceInterface defines the interface for linking users to wallets
type MembershipServiceInterface interface {
	Create(ctx context.Context, userID, walletID int64) (*membership.Membership, error)
}

// MembershipHandler handles user-wallet link requests
type MembershipHandler struct {
	memberships MembershipServiceInterface
}

// NewMembershipHandler creates a new membership handler
func NewMembershipHandler(memberships MembershipServiceInterface) *MembershipHandler {
	return &MembershipHandler{memberships: memberships}
}

// CreateMembershipRequest links a user to a wallet
type CreateMembershipRequest struct {
	UserID   int64 `json:"user_id"`
	WalletID int64 `json:"wallet_id"`
}

// CreateMembership handles POST /user-wallets
func (h *MembershipHandler) CreateMembership(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateMembershipRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.memberships.Create(r.Context(), req.UserID, req.WalletID)
	if err != nil {
		switch {
		case errors.Is(err, membership.ErrInvalidUserID), errors.Is(err, membership.ErrInvalidWalletID):
			respondError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, membership.ErrDuplicate):
			respondError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, membership.ErrUserOrWalletNotFound):
			respondError(w, err.Error(), http.StatusNotFound)
		default:
			respondError(w, "failed to link user to wallet", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, m, http.StatusCreated)
}
