package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletledger/internal/infra/memory"
	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletledger/pkg/logger"
	"github.com/kislikjeka/walletledger/pkg/money"
)

const (
	memberID   int64 = 7
	outsiderID int64 = 8
	walletOne  int64 = 1
	walletTwo  int64 = 2
)

// asUser injects an authenticated identity, standing in for the JWT middleware
func asUser(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID > 0 {
				r = r.WithContext(middleware.WithUser(r.Context(), userID, "user@example.com"))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func itemRouter(h *handler.WalletItemHandler, userID int64) http.Handler {
	r := chi.NewRouter()
	r.Use(asUser(userID))
	r.Post("/wallet-items", h.CreateItem)
	r.Put("/wallet-items", h.UpdateItem)
	r.Get("/wallet-items/type/{wallet}", h.FindByType)
	r.Get("/wallet-items/total/{wallet}", h.GetBalance)
	r.Get("/wallet-items/{wallet}", h.FindBetweenDates)
	r.Delete("/wallet-items/{id}", h.DeleteItem)
	return r
}

func newItemHandler(t *testing.T) *handler.WalletItemHandler {
	t.Helper()

	dir := memory.NewDirectory()
	dir.AddMember(memberID, walletOne)
	dir.AddWallet(walletTwo)

	svc := walletitem.NewService(
		memory.NewWalletItemStore(dir),
		walletitem.NewAccessGuard(dir),
		walletitem.NewItemCache(logger.NewNop()),
		nil,
		2,
		logger.NewNop(),
	)
	return handler.NewWalletItemHandler(svc, "BRL")
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createItem(t *testing.T, h http.Handler, wallet int64, date, label string, value any) handler.WalletItemResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/wallet-items", map[string]any{
		"wallet_id":   wallet,
		"date":        date,
		"type":        label,
		"description": "entry",
		"value":       value,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[handler.WalletItemResponse](t, rec)
}

func TestWalletItemHandler_Create(t *testing.T) {
	r := itemRouter(newItemHandler(t), memberID)

	t.Run("accepts legacy date and comma decimal", func(t *testing.T) {
		item := createItem(t, r, walletOne, "05-01-2024", walletitem.LabelDebit, "35,50")

		assert.Positive(t, item.ID)
		assert.Equal(t, walletOne, item.WalletID)
		assert.Equal(t, "2024-01-05", item.Date)
		assert.Equal(t, walletitem.LabelDebit, item.Type)
		assert.Equal(t, "35.5", item.Value)
	})

	t.Run("accepts numeric value", func(t *testing.T) {
		item := createItem(t, r, walletOne, "2024-01-06", walletitem.LabelCredit, 100)
		assert.Equal(t, "100", item.Value)
	})

	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name:   "missing value",
			body:   map[string]any{"wallet_id": walletOne, "date": "2024-01-01", "type": "ENTRADA"},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing date",
			body:   map[string]any{"wallet_id": walletOne, "type": "ENTRADA", "value": "1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed date",
			body:   map[string]any{"wallet_id": walletOne, "date": "2024/01/01", "type": "ENTRADA", "value": "1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown type",
			body:   map[string]any{"wallet_id": walletOne, "date": "2024-01-01", "type": "TRANSFER", "value": "1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "negative value",
			body:   map[string]any{"wallet_id": walletOne, "date": "2024-01-01", "type": "ENTRADA", "value": "-1"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown wallet",
			body:   map[string]any{"wallet_id": 99, "date": "2024-01-01", "type": "ENTRADA", "value": "1"},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/wallet-items", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[handler.ErrorResponse](t, rec).Error)
		})
	}
}

func TestWalletItemHandler_Update(t *testing.T) {
	r := itemRouter(newItemHandler(t), memberID)
	item := createItem(t, r, walletOne, "2024-01-01", walletitem.LabelCredit, "10")

	t.Run("changes fields", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, "/wallet-items", map[string]any{
			"id":          item.ID,
			"wallet_id":   walletOne,
			"date":        "2024-01-03",
			"type":        walletitem.LabelDebit,
			"description": "fixed",
			"value":       "12.5",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated := decode[handler.WalletItemResponse](t, rec)
		assert.Equal(t, "2024-01-03", updated.Date)
		assert.Equal(t, walletitem.LabelDebit, updated.Type)
		assert.Equal(t, "fixed", updated.Description)
		assert.Equal(t, "12.5", updated.Value)
	})

	t.Run("rejects moving to another wallet", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, "/wallet-items", map[string]any{
			"id":        item.ID,
			"wallet_id": walletTwo,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, walletitem.ErrImmutableWallet.Error(), decode[handler.ErrorResponse](t, rec).Error)
	})

	t.Run("rejects moving before checking fields", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, "/wallet-items", map[string]any{
			"id":        item.ID,
			"wallet_id": walletTwo,
			"type":      "UNKNOWN",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, walletitem.ErrImmutableWallet.Error(), decode[handler.ErrorResponse](t, rec).Error)
	})

	t.Run("unknown item", func(t *testing.T) {
		rec := do(t, r, http.MethodPut, "/wallet-items", map[string]any{
			"id": 404, "wallet_id": walletOne, "date": "2024-01-01", "type": "ENTRADA", "value": "1",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWalletItemHandler_Delete(t *testing.T) {
	r := itemRouter(newItemHandler(t), memberID)
	item := createItem(t, r, walletOne, "2024-01-01", walletitem.LabelCredit, "10")

	rec := do(t, r, http.MethodDelete, "/wallet-items/"+itoa(item.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.DeleteResponse](t, rec)
	assert.Equal(t, item.ID, resp.ID)
	assert.Contains(t, resp.Message, itoa(item.ID))

	rec = do(t, r, http.MethodDelete, "/wallet-items/"+itoa(item.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/wallet-items/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletItemHandler_FindBetweenDates(t *testing.T) {
	h := newItemHandler(t)
	r := itemRouter(h, memberID)

	createItem(t, r, walletOne, "2024-01-01", walletitem.LabelCredit, "65")
	createItem(t, r, walletOne, "2024-01-06", walletitem.LabelCredit, "65")
	createItem(t, r, walletOne, "2024-01-08", walletitem.LabelCredit, "65")

	t.Run("inclusive range in either date format", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/wallet-items/1?start_date=01-01-2024&end_date=2024-01-06", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		page := decode[handler.WalletItemPageResponse](t, rec)
		assert.Equal(t, int64(2), page.TotalCount)
		assert.Equal(t, 1, page.TotalPages)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "2024-01-01", page.Items[0].Date)
		assert.Equal(t, "2024-01-06", page.Items[1].Date)
	})

	t.Run("second page", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/wallet-items/1?start_date=2024-01-01&end_date=2024-01-31&page=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		page := decode[handler.WalletItemPageResponse](t, rec)
		assert.Equal(t, int64(3), page.TotalCount)
		assert.Equal(t, 2, page.TotalPages)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "2024-01-08", page.Items[0].Date)
	})

	t.Run("missing dates", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/wallet-items/1?start_date=2024-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("page too large", func(t *testing.T) {
		rec := do(t, r, http.MethodGet, "/wallet-items/1?start_date=2024-01-01&end_date=2024-01-31&page=9223372036854775807", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[handler.ErrorResponse](t, rec).Error, walletitem.ErrInvalidPage.Error())
	})

	t.Run("non-member", func(t *testing.T) {
		rec := do(t, itemRouter(h, outsiderID), http.MethodGet, "/wallet-items/1?start_date=2024-01-01&end_date=2024-01-31", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := do(t, itemRouter(h, 0), http.MethodGet, "/wallet-items/1?start_date=2024-01-01&end_date=2024-01-31", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestWalletItemHandler_FindByType(t *testing.T) {
	r := itemRouter(newItemHandler(t), memberID)

	createItem(t, r, walletOne, "2024-01-01", walletitem.LabelCredit, "100")
	createItem(t, r, walletOne, "2024-01-02", walletitem.LabelDebit, "35")

	rec := do(t, r, http.MethodGet, "/wallet-items/type/1?type=ENTRADA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]handler.WalletItemResponse](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, walletitem.LabelCredit, items[0].Type)

	// the cached bucket reflects a later write
	createItem(t, r, walletOne, "2024-01-03", walletitem.LabelCredit, "5")
	rec = do(t, r, http.MethodGet, "/wallet-items/type/1?type=ENTRADA", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]handler.WalletItemResponse](t, rec), 2)

	rec = do(t, r, http.MethodGet, "/wallet-items/type/1?type=OTHER", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWalletItemHandler_GetBalance(t *testing.T) {
	r := itemRouter(newItemHandler(t), memberID)

	rec := do(t, r, http.MethodGet, "/wallet-items/total/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", decode[handler.BalanceResponse](t, rec).Total)

	createItem(t, r, walletOne, "2024-01-01", walletitem.LabelCredit, "100")
	createItem(t, r, walletOne, "2024-01-02", walletitem.LabelDebit, "35")

	rec = do(t, r, http.MethodGet, "/wallet-items/total/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	balance := decode[handler.BalanceResponse](t, rec)
	assert.Equal(t, walletOne, balance.WalletID)
	assert.Equal(t, "65", balance.Total)
	assert.Equal(t, money.Format(decimal.NewFromInt(65), "BRL"), balance.Display)
}

// brokenItems fails every call with a storage error
type brokenItems struct{}

var errDown = walletitem.StorageError("query", errors.New("connection refused"))

func (brokenItems) Create(context.Context, *walletitem.WalletItem) (*walletitem.WalletItem, error) {
	return nil, errDown
}
func (brokenItems) Update(context.Context, *walletitem.WalletItem) (*walletitem.WalletItem, error) {
	return nil, errDown
}
func (brokenItems) Delete(context.Context, int64) (*walletitem.Deletion, error) { return nil, errDown }
func (brokenItems) GetByID(context.Context, int64) (*walletitem.WalletItem, error) {
	return nil, errDown
}
func (brokenItems) FindBetweenDates(context.Context, int64, int64, time.Time, time.Time, int) (*walletitem.Page, error) {
	return nil, errDown
}
func (brokenItems) FindByWalletAndType(context.Context, int64, string) ([]*walletitem.WalletItem, error) {
	return nil, errDown
}
func (brokenItems) SumByWallet(context.Context, int64) (decimal.Decimal, error) {
	return decimal.Zero, errDown
}

func TestWalletItemHandler_StorageUnavailable(t *testing.T) {
	r := itemRouter(handler.NewWalletItemHandler(brokenItems{}, "BRL"), memberID)

	for _, target := range []string{
		"/wallet-items/total/1",
		"/wallet-items/type/1?type=ENTRADA",
		"/wallet-items/1?start_date=2024-01-01&end_date=2024-01-31",
	} {
		rec := do(t, r, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}
