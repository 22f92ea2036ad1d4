package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletledger/pkg/logger"
)

// URL params copied into the request log, keyed by the attribute they become
var loggedParams = [][2]string{
	{"wallet", "wallet_id"},
	{"id", "id"},
}

// requestTrace collects identities learned while a request is served.
// Inner middleware only sees a derived context, so it is shared by pointer.
type requestTrace struct {
	userID int64
}

type traceKey struct{}

// traceUser records the authenticated user on the enclosing request trace
func traceUser(ctx context.Context, userID int64) {
	if tr, ok := ctx.Value(traceKey{}).(*requestTrace); ok {
		tr.userID = userID
	}
}

// bodyCapture keeps the body of error responses so the error message can be logged
type bodyCapture struct {
	chimiddleware.WrapResponseWriter
	buf bytes.Buffer
}

func (b *bodyCapture) Write(p []byte) (int, error) {
	if b.Status() >= http.StatusBadRequest {
		b.buf.Write(p)
	}
	return b.WrapResponseWriter.Write(p)
}

// errorMessage returns the "error" field of a captured JSON body
func (b *bodyCapture) errorMessage() string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b.buf.Bytes(), &obj) == nil {
		return obj.Error
	}
	return ""
}

// Logger returns a middleware that logs one line per request: the matched
// route with its wallet and item params, the authenticated user, the status
// and the error message of failed requests.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			trace := &requestTrace{}
			ctx := context.WithValue(r.Context(), traceKey{}, trace)
			if reqID := chimiddleware.GetReqID(ctx); reqID != "" {
				ctx = context.WithValue(ctx, logger.RequestIDKey, reqID)
			}
			r = r.WithContext(ctx)

			bw := &bodyCapture{WrapResponseWriter: chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)}

			defer func() {
				status := bw.Status()
				if status == 0 {
					status = http.StatusOK
				}

				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", bw.BytesWritten(),
				}
				attrs = append(attrs, routeAttrs(r)...)
				if trace.userID > 0 {
					attrs = append(attrs, "user_id", trace.userID)
				}

				reqLog := log.WithContext(ctx).WithDuration(time.Since(start))
				switch {
				case status >= http.StatusInternalServerError:
					reqLog.Error("HTTP request", append(attrs, "error", bw.errorMessage())...)
				case status >= http.StatusBadRequest:
					reqLog.Warn("HTTP request", append(attrs, "error", bw.errorMessage())...)
				default:
					reqLog.Info("HTTP request", attrs...)
				}
			}()

			next.ServeHTTP(bw, r)
		})
	}
}

// routeAttrs returns the matched chi pattern and the ledger URL params
func routeAttrs(r *http.Request) []any {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}

	attrs := []any{"route", rctx.RoutePattern()}
	for _, p := range loggedParams {
		if v := rctx.URLParam(p[0]); v != "" {
			attrs = append(attrs, p[1], v)
		}
	}
	return attrs
}
