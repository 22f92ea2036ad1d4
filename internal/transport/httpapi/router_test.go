package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletledger/internal/infra/memory"
	"github.com/kislikjeka/walletledger/internal/platform/walletitem"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletledger/pkg/logger"
)

func setupRouter(t *testing.T) (http.Handler, *middleware.JWTService) {
	t.Helper()

	dir := memory.NewDirectory()
	dir.AddMember(7, 1)

	items := walletitem.NewService(
		memory.NewWalletItemStore(dir),
		walletitem.NewAccessGuard(dir),
		walletitem.NewItemCache(logger.NewNop()),
		nil,
		10,
		logger.NewNop(),
	)

	jwtSvc := middleware.NewJWTService("test-secret-key-minimum-32-characters-long")

	return httpapi.NewRouter(httpapi.Config{
		Logger:            logger.NewNop(),
		AllowedOrigins:    []string{"http://localhost:5173"},
		WalletItemHandler: handler.NewWalletItemHandler(items, "BRL"),
		HealthHandler:     handler.NewHealthHandler(nil),
		JWTMiddleware:     middleware.JWTMiddleware(jwtSvc),
	}), jwtSvc
}

func TestRouter_HealthIsPublic(t *testing.T) {
	r, _ := setupRouter(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouter_WalletItemsRequireToken(t *testing.T) {
	r, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/wallet-items/total/1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_WalletItemFlow(t *testing.T) {
	r, jwtSvc := setupRouter(t)

	token, err := jwtSvc.GenerateToken(7, "member@example.com")
	require.NoError(t, err)

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := send(http.MethodPost, "/api/v1/wallet-items",
		`{"wallet_id":1,"date":"2024-01-01","type":"ENTRADA","description":"salary","value":"100"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(http.MethodPost, "/api/v1/wallet-items",
		`{"wallet_id":1,"date":"2024-01-02","type":"SAÍDA","description":"rent","value":35}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = send(http.MethodGet, "/api/v1/wallet-items/total/1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var balance handler.BalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balance))
	assert.Equal(t, "65", balance.Total)

	rec = send(http.MethodGet, "/api/v1/wallet-items/1?start_date=01-01-2024&end_date=31-01-2024", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page handler.WalletItemPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(2), page.TotalCount)
}
