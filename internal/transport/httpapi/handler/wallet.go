package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kislikjeka/walletledger/internal/platform/wallet"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletledger/pkg/money"
)

// WalletServiceInterface defines the interface for wallet operations
type WalletServiceInterface interface {
	Create(ctx context.Context, w *wallet.Wallet, userID int64) (*wallet.Wallet, error)
	List(ctx context.Context, userID int64) ([]*wallet.Wallet, error)
	GetByID(ctx context.Context, id, userID int64) (*wallet.Wallet, error)
}

// WalletHandler handles wallet-related HTTP requests
type WalletHandler struct {
	walletService WalletServiceInterface
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService WalletServiceInterface) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// CreateWalletRequest represents the wallet creation request
type CreateWalletRequest struct {
	Name  string      `json:"name"`
	Value amountInput `json:"value"`
}

// WalletResponse represents a wallet response
type WalletResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
}

// WalletsListResponse represents the response for listing wallets
type WalletsListResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

// CreateWallet handles POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	wlt := &wallet.Wallet{Name: req.Name}
	if req.Value.set {
		value, err := money.ParseAmount(req.Value.raw)
		if err != nil {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		wlt.Value = value
	}

	created, err := h.walletService.Create(r.Context(), wlt, userID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidName), errors.Is(err, wallet.ErrNegativeValue):
			respondError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, wallet.ErrInvalidUserID):
			respondError(w, "user not found, please re-login", http.StatusUnauthorized)
		default:
			respondError(w, "failed to create wallet", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, toWalletResponse(created), http.StatusCreated)
}

// GetWallets handles GET /wallets
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	wallets, err := h.walletService.List(r.Context(), userID)
	if err != nil {
		respondError(w, "failed to list wallets", http.StatusInternalServerError)
		return
	}

	resp := WalletsListResponse{Wallets: make([]WalletResponse, 0, len(wallets))}
	for _, wlt := range wallets {
		resp.Wallets = append(resp.Wallets, toWalletResponse(wlt))
	}

	respondJSON(w, resp, http.StatusOK)
}

// GetWallet handles GET /wallets/{id}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, "invalid wallet ID", http.StatusBadRequest)
		return
	}

	wlt, err := h.walletService.GetByID(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrWalletNotFound):
			respondError(w, "wallet not found", http.StatusNotFound)
		case errors.Is(err, wallet.ErrUnauthorizedAccess):
			respondError(w, "access denied", http.StatusForbidden)
		default:
			respondError(w, "failed to get wallet", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, toWalletResponse(wlt), http.StatusOK)
}

func toWalletResponse(w *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        w.ID,
		Name:      w.Name,
		Value:     w.Value.String(),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}
