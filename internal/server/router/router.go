package router

import (
	"log/slog"

	"github.com/andymarkow/paydash/internal/server/handlers"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

type Options struct {
	log *slog.Logger
}

func NewRouter(dashboard handlers.Dashboard, opts ...Option) chi.Router {
	r := chi.NewRouter()

	rOpts := Options{
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(&rOpts)
	}

	r.Use(
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Logger,
	)

	h := handlers.NewHandlers(dashboard,
		handlers.WithLogger(rOpts.log),
	)

	r.Get("/ping", h.Ping)
	r.Get("/ws", h.StreamDashboard)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboard)

		r.Post("/balance/topup", h.TopUpBalance)
		r.Post("/balance/refresh", h.RefreshBalance)

		r.Get("/orders", h.GetOrders)
		r.Post("/orders", h.CreateOrder)
		r.Post("/orders/refresh", h.RefreshOrders)
	})

	return r
}

type Option func(r *Options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.log = logger
	}
}
