package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/FACorreiaa/invoice-converter/pkg/middleware"
)

// NewRouter creates the API router with the invoice routes mounted.
func NewRouter(d *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(d.Config.Server.CORSOrigins))
	r.Use(d.Metrics.Middleware)

	limiter := middleware.NewLimiter(d.Config.Server.RateLimitPerSecond, d.Config.Server.RateLimitBurst)
	r.Use(middleware.RateLimit(limiter, d.Metrics.ObserveRateLimited))

	d.InvoiceHandler.Attach(r)

	return r
}
