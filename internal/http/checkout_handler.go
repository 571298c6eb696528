package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront-cart/internal/service"
)

type CheckoutHandler struct {
	checkout *service.CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkout *service.CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CreateSessionRequestDTO struct {
	Origin string `json:"origin,omitempty"`
}

type CheckoutSessionDTO struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartID")

	var req CreateSessionRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
			return
		}
	}
	origin := req.Origin
	if origin == "" {
		origin = r.Header.Get("Origin")
	}
	if origin == "" {
		respondError(w, http.StatusBadRequest, "missing_origin", "origin is required for redirect URLs")
		return
	}

	session, err := h.checkout.CreateSession(ctx, cartID, origin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCart):
			respondError(w, http.StatusNotFound, "invalid_cart", "no cart exists for the given id")
		case errors.Is(err, service.ErrEmptyCart):
			respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart has no items to check out")
		default:
			log.Printf("create checkout session failed: %v", err)
			respondError(w, http.StatusBadGateway, "checkout_failed", "failed to create checkout session")
		}
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutSessionDTO{
		ID:  session.ID,
		URL: session.URL,
	})
}
