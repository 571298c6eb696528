package service

import (
	"context"
	"sync"

	"github.com/example/storefront-cart/internal/cache"
	"github.com/example/storefront-cart/internal/domain"
	"github.com/example/storefront-cart/internal/payment"
	"github.com/example/storefront-cart/internal/repository"
)

// mockCartRepo mirrors the Postgres repository's semantics in memory:
// atomic-looking upsert merge that creates the cart row when absent,
// conditional quantity adjustment, no-op removes on absent rows.
type mockCartRepo struct {
	mu    sync.Mutex
	carts map[string]map[string]domain.CartItem
	order map[string][]string // insertion order of item ids per cart
	err   error
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{
		carts: make(map[string]map[string]domain.CartItem),
		order: make(map[string][]string),
	}
}

func (m *mockCartRepo) FindOrCreate(_ context.Context, cartID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.carts[cartID]; !ok {
		m.carts[cartID] = make(map[string]domain.CartItem)
	}
	return m.snapshot(cartID), nil
}

func (m *mockCartRepo) GetCart(_ context.Context, cartID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.carts[cartID]; !ok {
		return nil, repository.ErrCartNotFound
	}
	return m.snapshot(cartID), nil
}

func (m *mockCartRepo) UpsertItem(_ context.Context, cartID string, item domain.CartItem, qtyDelta int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.carts[cartID]; !ok {
		m.carts[cartID] = make(map[string]domain.CartItem)
	}
	if existing, ok := m.carts[cartID][item.ID]; ok {
		existing.Quantity += qtyDelta
		m.carts[cartID][item.ID] = existing
		return nil
	}
	item.CartID = cartID
	item.Quantity = qtyDelta
	m.carts[cartID][item.ID] = item
	m.order[cartID] = append(m.order[cartID], item.ID)
	return nil
}

func (m *mockCartRepo) RemoveItem(_ context.Context, cartID string, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.carts[cartID], itemID)
	return nil
}

func (m *mockCartRepo) AdjustQuantity(_ context.Context, cartID string, itemID string, delta int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	item, ok := m.carts[cartID][itemID]
	if !ok || item.Quantity+delta < 0 {
		return nil
	}
	item.Quantity += delta
	m.carts[cartID][itemID] = item
	return nil
}

func (m *mockCartRepo) ListItems(_ context.Context, cartID string) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot(cartID).Items, nil
}

func (m *mockCartRepo) snapshot(cartID string) *domain.Cart {
	cart := &domain.Cart{ID: cartID}
	for _, id := range m.order[cartID] {
		if item, ok := m.carts[cartID][id]; ok {
			cart.Items = append(cart.Items, item)
		}
	}
	return cart
}

// mockCache counts operations; Get always misses unless primed.
type mockCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Cart
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]*domain.Cart)}
}

func (m *mockCache) Get(_ context.Context, cartID string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.entries[cartID]; ok {
		return cart, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *mockCache) Set(_ context.Context, cartID string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cartID] = cart
	m.sets++
	return nil
}

func (m *mockCache) Delete(_ context.Context, cartID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, cartID)
	m.deletes++
	return nil
}

func (m *mockCache) deleteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

// mockGateway captures the session request and returns a canned session.
type mockGateway struct {
	lines    []payment.Line
	urls     payment.RedirectURLs
	metadata map[string]string
	session  *payment.Session
	err      error
	calls    int
}

func (m *mockGateway) CreateSession(_ context.Context, lines []payment.Line, urls payment.RedirectURLs, metadata map[string]string) (*payment.Session, error) {
	m.calls++
	m.lines = lines
	m.urls = urls
	m.metadata = metadata
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

// mockCheckoutRepo records stored sessions and outbox payloads.
type mockCheckoutRepo struct {
	session   *repository.CheckoutSession
	eventType string
	payload   []byte
	createErr error
}

func (m *mockCheckoutRepo) CreateCheckoutSession(_ context.Context, session *repository.CheckoutSession, eventType string, payload []byte) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.session = session
	m.eventType = eventType
	m.payload = payload
	return nil
}

func (m *mockCheckoutRepo) GetUnprocessedEvents(context.Context, int) ([]*repository.OutboxEvent, error) {
	return nil, nil
}

func (m *mockCheckoutRepo) MarkEventAsProcessed(context.Context, int64) error {
	return nil
}
