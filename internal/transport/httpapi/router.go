package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletledger/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletledger/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletledger/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger            *logger.Logger
	AllowedOrigins    []string
	AuthHandler       *handler.AuthHandler
	WalletHandler     *handler.WalletHandler
	MembershipHandler *handler.MembershipHandler
	WalletItemHandler *handler.WalletItemHandler
	HealthHandler     *handler.HealthHandler
	JWTMiddleware     func(http.Handler) http.Handler
	RateLimit         func(http.Handler) http.Handler // nil disables rate limiting
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	if cfg.RateLimit != nil {
		r.Use(cfg.RateLimit)
	}

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.AuthHandler != nil {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		}

		if cfg.JWTMiddleware == nil {
			return
		}

		r.Group(func(r chi.Router) {
			r.Use(cfg.JWTMiddleware)

			if cfg.WalletHandler != nil {
				r.Post("/wallets", cfg.WalletHandler.CreateWallet)
				r.Get("/wallets", cfg.WalletHandler.GetWallets)
				r.Get("/wallets/{id}", cfg.WalletHandler.GetWallet)
			}

			if cfg.MembershipHandler != nil {
				r.Post("/user-wallets", cfg.MembershipHandler.CreateMembership)
			}

			if cfg.WalletItemHandler != nil {
				r.Route("/wallet-items", func(r chi.Router) {
					r.Post("/", cfg.WalletItemHandler.CreateItem)
					r.Put("/", cfg.WalletItemHandler.UpdateItem)
					r.Get("/type/{wallet}", cfg.WalletItemHandler.FindByType)
					r.Get("/total/{wallet}", cfg.WalletItemHandler.GetBalance)
					r.Get("/{wallet}", cfg.WalletItemHandler.FindBetweenDates)
					r.Delete("/{id}", cfg.WalletItemHandler.DeleteItem)
				})
			}
		})
	})

	return r
}
