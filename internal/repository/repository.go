package repository

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront-cart/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the cart data operations the services need.
// Consumers define this interface, not the Postgres implementation.
type CartRepository interface {
	// FindOrCreate returns the cart with the given id, creating an empty
	// one when absent. It never reports a not-found condition.
	FindOrCreate(ctx context.Context, cartID string) (*domain.Cart, error)

	// GetCart is the strict read: ErrCartNotFound when no cart row exists.
	GetCart(ctx context.Context, cartID string) (*domain.Cart, error)

	// UpsertItem inserts the item with quantity = qtyDelta, or, when an
	// item with the same (id, cart_id) already exists, adds qtyDelta to
	// its quantity and leaves the catalog fields untouched. The cart row
	// is created in the same transaction when absent, so adding to a
	// never-referenced cart works. The item write is a single atomic
	// statement, safe under concurrent calls for the same key.
	UpsertItem(ctx context.Context, cartID string, item domain.CartItem, qtyDelta int32) error

	// RemoveItem deletes the item. Absent rows are a no-op.
	RemoveItem(ctx context.Context, cartID string, itemID string) error

	// AdjustQuantity adds delta to the item's quantity in one conditional
	// update. The update only applies when the result stays >= 0; rows
	// that would go negative, and absent rows, are left untouched.
	AdjustQuantity(ctx context.Context, cartID string, itemID string, delta int32) error

	ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error)
}

// CheckoutSession is the persisted record of a payment-provider session
// created for a cart.
type CheckoutSession struct {
	ID        string
	CartID    string
	URL       string
	CreatedAt time.Time
}

// OutboxEvent is a pending integration event, published to Kafka by the
// outbox poller and marked processed afterwards.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

// CheckoutRepository persists checkout sessions together with their
// outbox events in one transaction.
type CheckoutRepository interface {
	// CreateCheckoutSession stores the session and an outbox event
	// carrying the given payload atomically.
	CreateCheckoutSession(ctx context.Context, session *CheckoutSession, eventType string, payload []byte) error

	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, eventID int64) error
}
