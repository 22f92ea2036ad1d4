package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletledger/pkg/money"
)

// Accepted date layouts, ISO first
var dateLayouts = []string{"2006-01-02", "02-01-2006"}

var errInvalidDate = errors.New("invalid date, expected YYYY-MM-DD or DD-MM-YYYY")

// WalletItemServiceInterface defines the wallet item operations used by the handler
type WalletItemServiceInterface interface {
	Create(ctx context.Context, item *walletitem.WalletItem) (*walletitem.WalletItem, error)
	Update(ctx context.Context, item *walletitem.WalletItem) (*walletitem.WalletItem, error)
	Delete(ctx context.Context, id int64) (*walletitem.Deletion, error)
	GetByID(ctx context.Context, id int64) (*walletitem.WalletItem, error)
	FindBetweenDates(ctx context.Context, userID, walletID int64, start, end time.Time, page int) (*walletitem.Page, error)
	FindByWalletAndType(ctx context.Context, walletID int64, label string) ([]*walletitem.WalletItem, error)
	SumByWallet(ctx context.Context, walletID int64) (decimal.Decimal, error)
}

// WalletItemHandler handles wallet item HTTP requests
type WalletItemHandler struct {
	items    WalletItemServiceInterface
	currency string
}

// NewWalletItemHandler creates a new wallet item handler.
// currency is used to render balances for display.
func NewWalletItemHandler(items WalletItemServiceInterface, currency string) *WalletItemHandler {
	return &WalletItemHandler{items: items, currency: currency}
}

// amountInput accepts a JSON number or a JSON string
type amountInput struct {
	raw string
	set bool
}

// UnmarshalJSON implements json.Unmarshaler
func (a *amountInput) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	a.raw, a.set = s, true
	return nil
}

// WalletItemRequest is the body of create and update requests
type WalletItemRequest struct {
	ID          int64       `json:"id"`
	WalletID    int64       `json:"wallet_id"`
	Date        string      `json:"date"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Value       amountInput `json:"value"`
}

// WalletItemResponse represents a wallet item
type WalletItemResponse struct {
	ID          int64  `json:"id"`
	WalletID    int64  `json:"wallet_id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Value       string `json:"value"`
}

// WalletItemPageResponse is one page of a date range query
type WalletItemPageResponse struct {
	Items      []WalletItemResponse `json:"items"`
	TotalCount int64                `json:"total_count"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// DeleteResponse confirms a deletion
type DeleteResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// BalanceResponse carries a wallet balance
type BalanceResponse struct {
	WalletID int64  `json:"wallet_id"`
	Total    string `json:"total"`
	Display  string `json:"display"`
}

// CreateItem handles POST /wallet-items
func (h *WalletItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req WalletItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	item, err := req.toItem()
	if err != nil {
		respondItemError(w, err)
		return
	}

	created, err := h.items.Create(r.Context(), item)
	if err != nil {
		respondItemError(w, err)
		return
	}

	respondJSON(w, toItemResponse(created), http.StatusCreated)
}

// UpdateItem handles PUT /wallet-items
func (h *WalletItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req WalletItemRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	item, err := req.toItem()
	if err != nil {
		respondItemError(w, h.updateError(r.Context(), &req, err))
		return
	}

	updated, err := h.items.Update(r.Context(), item)
	if err != nil {
		respondItemError(w, err)
		return
	}

	respondJSON(w, toItemResponse(updated), http.StatusOK)
}

// DeleteItem handles DELETE /wallet-items/{id}
func (h *WalletItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, "invalid wallet item ID", http.StatusBadRequest)
		return
	}

	deletion, err := h.items.Delete(r.Context(), id)
	if err != nil {
		respondItemError(w, err)
		return
	}

	respondJSON(w, DeleteResponse{ID: deletion.ID, Message: deletion.Message()}, http.StatusOK)
}

// FindBetweenDates handles GET /wallet-items/{wallet}?start_date=&end_date=&page=
func (h *WalletItemHandler) FindBetweenDates(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	walletID, err := pathID(r, "wallet")
	if err != nil {
		respondError(w, "invalid wallet ID", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	start, err := parseDate(q.Get("start_date"))
	if err != nil || start.IsZero() {
		respondError(w, "start_date: "+errInvalidDate.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseDate(q.Get("end_date"))
	if err != nil || end.IsZero() {
		respondError(w, "end_date: "+errInvalidDate.Error(), http.StatusBadRequest)
		return
	}

	page := 0
	if p := q.Get("page"); p != "" {
		page, err = strconv.Atoi(p)
		if err != nil {
			respondError(w, "invalid page", http.StatusBadRequest)
			return
		}
	}

	result, err := h.items.FindBetweenDates(r.Context(), userID, walletID, start, end, page)
	if err != nil {
		respondItemError(w, err)
		return
	}

	respondJSON(w, WalletItemPageResponse{
		Items:      toItemResponses(result.Items),
		TotalCount: result.TotalCount,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages(),
	}, http.StatusOK)
}

// FindByType handles GET /wallet-items/type/{wallet}?type=
func (h *WalletItemHandler) FindByType(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "wallet")
	if err != nil {
		respondError(w, "invalid wallet ID", http.StatusBadRequest)
		return
	}

	items, err := h.items.FindByWalletAndType(r.Context(), walletID, r.URL.Query().Get("type"))
	if err != nil {
		respondItemError(w, err)
		return
	}

	respondJSON(w, toItemResponses(items), http.StatusOK)
}

// GetBalance handles GET /wallet-items/total/{wallet}
func (h *WalletItemHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	walletID, err := pathID(r, "wallet")
	if err != nil {
		respondError(w, "invalid wallet ID", http.StatusBadRequest)
		return
	}

	total, err := h.items.SumByWallet(r.Context(), walletID)
	if err != nil {
		respondItemError(w, err)
		return
	}

	respondJSON(w, BalanceResponse{
		WalletID: walletID,
		Total:    total.String(),
		Display:  money.Format(total, h.currency),
	}, http.StatusOK)
}

// updateError reports a malformed update body the way the service orders its
// checks: item lookup and wallet immutability come before field validation.
func (h *WalletItemHandler) updateError(ctx context.Context, req *WalletItemRequest, fieldErr error) error {
	if req.ID <= 0 {
		return walletitem.ValidationError(walletitem.ErrMissingItemID)
	}

	existing, err := h.items.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}
	if existing.WalletID != req.WalletID {
		return walletitem.ErrImmutableWallet
	}

	return fieldErr
}

func (req *WalletItemRequest) toItem() (*walletitem.WalletItem, error) {
	item := &walletitem.WalletItem{
		ID:          req.ID,
		WalletID:    req.WalletID,
		Description: req.Description,
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	item.Date = date

	if strings.TrimSpace(req.Type) != "" {
		t, err := walletitem.ParseType(req.Type)
		if err != nil {
			return nil, err
		}
		item.Type = t
	}

	if !req.Value.set {
		return nil, walletitem.ValidationError(walletitem.ErrMissingValue)
	}
	value, err := money.ParseAmount(req.Value.raw)
	if err != nil {
		if errors.Is(err, money.ErrEmptyAmount) {
			return nil, walletitem.ValidationError(walletitem.ErrMissingValue)
		}
		return nil, walletitem.ValidationError(err)
	}
	item.Value = value

	return item, nil
}

// parseDate returns the zero time for an empty string
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, walletitem.ValidationError(fmt.Errorf("%w: %q", errInvalidDate, s))
}

// respondItemError maps wallet item errors to HTTP statuses
func respondItemError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, walletitem.ErrNotWalletMember):
		respondError(w, "you do not have access to this wallet", http.StatusForbidden)
	case errors.Is(err, walletitem.ErrItemNotFound):
		respondError(w, "wallet item not found", http.StatusNotFound)
	case errors.Is(err, walletitem.ErrWalletNotFound):
		respondError(w, "wallet not found", http.StatusNotFound)
	case errors.Is(err, walletitem.ErrImmutableWallet):
		respondError(w, walletitem.ErrImmutableWallet.Error(), http.StatusBadRequest)
	case errors.Is(err, walletitem.ErrUnknownType), errors.Is(err, walletitem.ErrValidation):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, walletitem.ErrStorageUnavailable):
		respondError(w, "storage unavailable", http.StatusServiceUnavailable)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

func toItemResponse(item *walletitem.WalletItem) WalletItemResponse {
	return WalletItemResponse{
		ID:          item.ID,
		WalletID:    item.WalletID,
		Date:        item.Date.Format(dateLayouts[0]),
		Type:        item.Type.Label(),
		Description: item.Description,
		Value:       item.Value.String(),
	}
}

func toItemResponses(items []*walletitem.WalletItem) []WalletItemResponse {
	out := make([]WalletItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toItemResponse(item))
	}
	return out
}
