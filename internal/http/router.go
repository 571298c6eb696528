package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires all cart and checkout routes behind the shared
// middleware stack.
func NewRouter(carts *CartHandler, checkout *CheckoutHandler, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/carts/{cartID}", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Post("/items", carts.AddItem)
			r.Delete("/items/{itemID}", carts.RemoveItem)
			r.Post("/items/{itemID}/increase", carts.IncreaseItem)
			r.Post("/items/{itemID}/decrease", carts.DecreaseItem)
			r.Post("/checkout", checkout.CreateSession)
		})
	})

	return r
}
