package service

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/example/storefront-cart/internal/cache"
	"github.com/example/storefront-cart/internal/domain"
	"github.com/example/storefront-cart/internal/repository"
)

// AddItemInput carries everything needed to add an item to a cart.
// Quantity defaults to 1 when left at zero.
type AddItemInput struct {
	ItemID      string
	Name        string
	Description string
	Image       string
	Price       int64
	Quantity    int32
}

type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cartCache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cartCache,
	}
}

// GetCart returns the cart for the given id, creating an empty one on
// first reference. Reads go through the cache; concurrent misses for
// the same cart collapse into one repository call.
func (s *CartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(cartID, func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, cartID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.FindOrCreate(ctx, cartID)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), cartID, cart); errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem inserts the item or, when the (itemID, cartID) pair already
// exists, adds the quantity to the existing row. Name, description,
// image and price from repeat calls are discarded; catalog attributes
// are fixed at first insertion.
func (s *CartService) AddItem(ctx context.Context, cartID string, input AddItemInput) (*domain.Cart, error) {
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}

	item := domain.CartItem{
		ID:          input.ItemID,
		CartID:      cartID,
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		Price:       input.Price,
	}
	if err := s.repo.UpsertItem(ctx, cartID, item, qty); err != nil {
		return nil, err
	}

	return s.refresh(ctx, cartID)
}

// RemoveItem deletes the item row. Removing an item that is not there
// is not an error; the cart simply comes back unchanged.
func (s *CartService) RemoveItem(ctx context.Context, cartID, itemID string) (*domain.Cart, error) {
	if err := s.repo.RemoveItem(ctx, cartID, itemID); err != nil {
		return nil, err
	}
	return s.refresh(ctx, cartID)
}

// IncreaseItem bumps the item's quantity by one. No matching row, no change.
func (s *CartService) IncreaseItem(ctx context.Context, cartID, itemID string) (*domain.Cart, error) {
	if err := s.repo.AdjustQuantity(ctx, cartID, itemID, 1); err != nil {
		return nil, err
	}
	return s.refresh(ctx, cartID)
}

// DecreaseItem lowers the item's quantity by one, stopping at zero.
// A zero-quantity row stays in the cart until explicitly removed.
func (s *CartService) DecreaseItem(ctx context.Context, cartID, itemID string) (*domain.Cart, error) {
	if err := s.repo.AdjustQuantity(ctx, cartID, itemID, -1); err != nil {
		return nil, err
	}
	return s.refresh(ctx, cartID)
}

// refresh drops the cached copy and reads the cart back from the store,
// so every mutation returns freshly computed state.
func (s *CartService) refresh(ctx context.Context, cartID string) (*domain.Cart, error) {
	s.invalidate(cartID)
	return s.repo.FindOrCreate(ctx, cartID)
}

func (s *CartService) invalidate(cartID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, cartID); err != nil {
		log.Printf("cache invalidate error: %v", err)
	}
}
