package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), buf.String())
	return line
}

func loggedRouter(buf *bytes.Buffer, userID int64) http.Handler {
	log := logger.NewWithOptions(logger.Options{Format: "json", Level: "debug"}, buf)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, Logger(log))
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if userID > 0 {
					req = req.WithContext(WithUser(req.Context(), userID, "member@example.com"))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Get("/wallet-items/{wallet}", func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusForbidden, "you do not have access to this wallet")
		})
		r.Delete("/wallet-items/{id}", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"id":5}`))
		})
	})
	return r
}

func TestLogger_RecordsWalletAndUser(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()
	loggedRouter(&buf, 7).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/wallet-items/3?start_date=2024-01-01", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)

	line := logLine(t, &buf)
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/wallet-items/{wallet}", line["route"])
	assert.Equal(t, "3", line["wallet_id"])
	assert.EqualValues(t, 7, line["user_id"])
	assert.EqualValues(t, http.StatusForbidden, line["status"])
	assert.Equal(t, "you do not have access to this wallet", line["error"])
	assert.NotEmpty(t, line["request_id"])
	assert.Contains(t, line, "duration_ms")
}

func TestLogger_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	loggedRouter(&buf, 0).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/wallet-items/5", nil))

	line := logLine(t, &buf)
	assert.Equal(t, "INFO", line["level"])
	assert.EqualValues(t, http.StatusOK, line["status"])
	assert.Equal(t, "5", line["id"])
	assert.NotContains(t, line, "user_id")
	assert.NotContains(t, line, "error")
}
