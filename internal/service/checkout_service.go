package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/storefront-cart/internal/domain"
	"github.com/example/storefront-cart/internal/payment"
	"github.com/example/storefront-cart/internal/repository"
)

// EventCheckoutSessionCreated is published through the outbox whenever a
// payment session is successfully created for a cart.
const EventCheckoutSessionCreated = "CheckoutSessionCreated"

// PaymentGateway is the capability this service needs from the payment
// provider. Consumers define this interface, not the HTTP client.
type PaymentGateway interface {
	CreateSession(ctx context.Context, lines []payment.Line, urls payment.RedirectURLs, metadata map[string]string) (*payment.Session, error)
}

type CheckoutService struct {
	carts    repository.CartRepository
	sessions repository.CheckoutRepository
	gateway  PaymentGateway
}

func NewCheckoutService(carts repository.CartRepository, sessions repository.CheckoutRepository, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		sessions: sessions,
		gateway:  gateway,
	}
}

type sessionCreatedEvent struct {
	SessionID   string    `json:"session_id"`
	CartID      string    `json:"cart_id"`
	TotalItems  int32     `json:"total_items"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateSession validates the cart and asks the payment provider for a
// checkout session. Validation finishes before any network I/O: an
// invalid or empty cart never reaches the gateway. Gateway failures
// propagate unchanged; retrying is the caller's decision.
func (s *CheckoutService) CreateSession(ctx context.Context, cartID, origin string) (*payment.Session, error) {
	cart, err := s.carts.GetCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, ErrInvalidCart
		}
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]payment.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, toPaymentLine(item))
	}

	urls := payment.RedirectURLs{
		SuccessURL: origin + "/thankyou?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  origin + "/cart?cancelled=true",
	}

	session, err := s.gateway.CreateSession(ctx, lines, urls, map[string]string{
		"cart_id": cartID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	// Best effort: the shopper already has their session, so a failure
	// to record it must not fail the request.
	if e2 := s.recordSession(ctx, cart, session); e2 != nil {
		log.Printf("failed to record checkout session %s: %v", session.ID, e2)
	}

	return session, nil
}

func (s *CheckoutService) recordSession(ctx context.Context, cart *domain.Cart, session *payment.Session) error {
	payload, err := json.Marshal(sessionCreatedEvent{
		SessionID:   session.ID,
		CartID:      cart.ID,
		TotalItems:  cart.TotalItems(),
		TotalAmount: cart.SubTotal().Amount,
		Currency:    domain.Currency,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	return s.sessions.CreateCheckoutSession(ctx, &repository.CheckoutSession{
		ID:     session.ID,
		CartID: cart.ID,
		URL:    session.URL,
	}, EventCheckoutSessionCreated, payload)
}

func toPaymentLine(item domain.CartItem) payment.Line {
	images := []string{}
	if item.Image != "" {
		images = append(images, item.Image)
	}
	return payment.Line{
		Quantity:           item.Quantity,
		UnitAmount:         item.Price,
		Currency:           domain.Currency,
		ProductName:        item.Name,
		ProductDescription: item.Description,
		ProductImages:      images,
	}
}
