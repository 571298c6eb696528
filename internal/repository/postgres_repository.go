package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/example/storefront-cart/internal/domain"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// Repository implements CartRepository and CheckoutRepository on Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(cred *Credentials) (*Repository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) FindOrCreate(ctx context.Context, cartID string) (*domain.Cart, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO carts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure cart exists: %w", err)
	}

	items, err := r.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return &domain.Cart{ID: cartID, Items: items}, nil
}

func (r *Repository) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM carts WHERE id = $1`, cartID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	items, err := r.ListItems(ctx, cartID)
	if err != nil {
		return nil, err
	}

	return &domain.Cart{ID: id, Items: items}, nil
}

func (r *Repository) UpsertItem(ctx context.Context, cartID string, item domain.CartItem, qtyDelta int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Adding to a never-referenced cart creates the cart row too, so the
	// item insert below never trips the cart_id foreign key.
	_, err = tx.ExecContext(ctx,
		`INSERT INTO carts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, cartID)
	if err != nil {
		return fmt.Errorf("failed to ensure cart exists: %w", err)
	}

	// Catalog fields stick from the first insert; on conflict only the
	// quantity accumulates. One statement, so concurrent adds for the
	// same (id, cart_id) cannot lose updates.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, name, description, image, price, quantity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id, cart_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		item.ID, cartID, item.Name, item.Description, item.Image, item.Price, qtyDelta)
	if err != nil {
		return fmt.Errorf("failed to upsert cart item: %w", err)
	}

	if e2 := tx.Commit(); e2 != nil {
		return fmt.Errorf("failed to commit item upsert: %w", e2)
	}
	return nil
}

func (r *Repository) RemoveItem(ctx context.Context, cartID string, itemID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *Repository) AdjustQuantity(ctx context.Context, cartID string, itemID string, delta int32) error {
	// The quantity + delta >= 0 filter keeps decrements from ever driving
	// the quantity negative; rows it excludes simply stay as they are.
	_, err := r.db.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = quantity + $3
		WHERE id = $1 AND cart_id = $2 AND quantity + $3 >= 0`,
		itemID, cartID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust item quantity: %w", err)
	}
	return nil
}

func (r *Repository) ListItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cart_id, name, description, image, price, quantity
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if e2 := rows.Scan(&item.ID, &item.CartID, &item.Name, &item.Description,
			&item.Image, &item.Price, &item.Quantity); e2 != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", e2)
		}
		items = append(items, item)
	}
	if e2 := rows.Err(); e2 != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", e2)
	}

	return items, nil
}

func (r *Repository) CreateCheckoutSession(ctx context.Context, session *CheckoutSession, eventType string, payload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_sessions (id, cart_id, url)
		VALUES ($1, $2, $3)`,
		session.ID, session.CartID, session.URL)
	if err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO checkout_outbox (aggregate_id, event_type, payload)
		VALUES ($1, $2, $3)`,
		session.CartID, eventType, payload)
	if err != nil {
		return fmt.Errorf("failed to store outbox event: %w", err)
	}

	if e2 := tx.Commit(); e2 != nil {
		return fmt.Errorf("failed to commit checkout session: %w", e2)
	}
	return nil
}

func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, aggregate_id, event_type, payload, created_at
		FROM checkout_outbox
		WHERE processed_at IS NULL
		ORDER BY id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if e2 := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); e2 != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", e2)
		}
		events = append(events, &ev)
	}
	if e2 := rows.Err(); e2 != nil {
		return nil, fmt.Errorf("failed to iterate outbox events: %w", e2)
	}

	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, eventID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE checkout_outbox SET processed_at = now() WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("failed to mark event as processed: %w", err)
	}
	return nil
}
