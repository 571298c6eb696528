package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/storefront-cart/internal/domain"
	"github.com/example/storefront-cart/internal/service"
)

type CartHandler struct {
	carts   *service.CartService
	timeout time.Duration
}

func NewCartHandler(carts *service.CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int32  `json:"quantity,omitempty"`
}

type CartItemDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Image       string       `json:"image,omitempty"`
	Quantity    int32        `json:"quantity"`
	UnitTotal   domain.Money `json:"unitTotal"`
	LineTotal   domain.Money `json:"lineTotal"`
}

type CartDTO struct {
	ID         string        `json:"id"`
	TotalItems int32         `json:"totalItems"`
	SubTotal   domain.Money  `json:"subTotal"`
	Items      []CartItemDTO `json:"items"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func toCartDTO(cart *domain.Cart) CartDTO {
	items := make([]CartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemDTO{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Image:       item.Image,
			Quantity:    item.Quantity,
			UnitTotal:   item.UnitTotal(),
			LineTotal:   item.LineTotal(),
		})
	}
	return CartDTO{
		ID:         cart.ID,
		TotalItems: cart.TotalItems(),
		SubTotal:   cart.SubTotal(),
		Items:      items,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartID")
	cart, err := h.carts.GetCart(ctx, cartID)
	if err != nil {
		log.Printf("get cart failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartID")

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ItemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "invalid_name", "name is required")
		return
	}
	if req.Price < 0 {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must not be negative")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	cart, err := h.carts.AddItem(ctx, cartID, service.AddItemInput{
		ItemID:      req.ItemID,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		log.Printf("add item failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	respondJSON(w, http.StatusCreated, toCartDTO(cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartID")
	itemID := chi.URLParam(r, "itemID")

	cart, err := h.carts.RemoveItem(ctx, cartID, itemID)
	if err != nil {
		log.Printf("remove item failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) IncreaseItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartID")
	itemID := chi.URLParam(r, "itemID")

	cart, err := h.carts.IncreaseItem(ctx, cartID, itemID)
	if err != nil {
		log.Printf("increase item failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to increase item quantity")
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func (h *CartHandler) DecreaseItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cartID := chi.URLParam(r, "cartID")
	itemID := chi.URLParam(r, "itemID")

	cart, err := h.carts.DecreaseItem(ctx, cartID, itemID)
	if err != nil {
		log.Printf("decrease item failed: %v", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to decrease item quantity")
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Details: details,
	})
}
