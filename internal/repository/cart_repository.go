package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tienda/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound = domain.NewNotFoundError("cart not found")
)

// CartRepository defines the interface for cart data access
type CartRepository interface {
	Save(ctx context.Context, cart *domain.Cart) error
	FindByID(ctx context.Context, id domain.CartID) (*domain.Cart, error)
	FindActiveByClient(ctx context.Context, clientID domain.ClientID) (*domain.Cart, error)
}

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates a new instance of CartRepository
func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

// Save upserts the cart row and replaces its item rows in one transaction
func (r *cartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO carts (id, client_id, state, discount_code, discount_kind, discount_percent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET state = $3, discount_code = $4, discount_kind = $5, discount_percent = $6, updated_at = $8
	`

	var (
		discountCode    interface{}
		discountKind    interface{}
		discountPercent interface{}
	)
	if d := cart.Discount(); d != nil {
		discountCode = d.Code()
		discountKind = string(d.Kind())
		discountPercent = d.Percent().String()
	}

	_, err = tx.ExecContext(
		ctx,
		query,
		cart.ID().UUID(),
		cart.ClientID().UUID(),
		string(cart.State()),
		discountCode,
		discountKind,
		discountPercent,
		cart.CreatedAt(),
		cart.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cart.ID().UUID()); err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}

	itemQuery := `
		INSERT INTO cart_items (id, cart_id, product_id, product_name, sku, quantity, unit_price, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, item := range cart.Items() {
		_, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID().UUID(),
			cart.ID().UUID(),
			item.Product().ProductID().UUID(),
			item.Product().Name(),
			item.Product().SKU(),
			item.Quantity(),
			item.UnitPrice().Amount().String(),
			item.UnitPrice().Currency(),
		)
		if err != nil {
			return fmt.Errorf("failed to save cart item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cart save: %w", err)
	}

	return nil
}

// FindByID retrieves a cart by ID and reconstructs the full aggregate
func (r *cartRepository) FindByID(ctx context.Context, id domain.CartID) (*domain.Cart, error) {
	query := `
		SELECT id, client_id, state, discount_code, discount_kind, discount_percent, created_at, updated_at
		FROM carts
		WHERE id = $1
	`

	cart, err := r.scanCart(ctx, r.db.QueryRowContext(ctx, query, id.UUID()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart by ID: %w", err)
	}

	return cart, nil
}

// FindActiveByClient retrieves the client's most recent ACTIVE cart
func (r *cartRepository) FindActiveByClient(ctx context.Context, clientID domain.ClientID) (*domain.Cart, error) {
	query := `
		SELECT id, client_id, state, discount_code, discount_kind, discount_percent, created_at, updated_at
		FROM carts
		WHERE client_id = $1 AND state = 'ACTIVE'
		ORDER BY created_at DESC
		LIMIT 1
	`

	cart, err := r.scanCart(ctx, r.db.QueryRowContext(ctx, query, clientID.UUID()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find active cart: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) scanCart(ctx context.Context, row rowScanner) (*domain.Cart, error) {
	var (
		id              uuid.UUID
		clientID        uuid.UUID
		state           string
		discountCode    sql.NullString
		discountKind    sql.NullString
		discountPercent sql.NullString
		createdAt       time.Time
		updatedAt       time.Time
	)

	err := row.Scan(&id, &clientID, &state, &discountCode, &discountKind, &discountPercent, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	cartID, err := domain.ParseCartID(id.String())
	if err != nil {
		return nil, err
	}
	ownerID, err := domain.ParseClientID(clientID.String())
	if err != nil {
		return nil, err
	}

	var discount *domain.AppliedDiscount
	if discountCode.Valid {
		percent, err := decimal.NewFromString(discountPercent.String)
		if err != nil {
			return nil, fmt.Errorf("stored discount percent is invalid: %w", err)
		}
		d, err := domain.NewAppliedDiscount(discountCode.String, domain.DiscountKind(discountKind.String), percent)
		if err != nil {
			return nil, fmt.Errorf("stored discount violates invariants: %w", err)
		}
		discount = &d
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	cart, err := domain.ReconstituteCart(cartID, ownerID, items, discount, domain.CartState(state), createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("stored cart violates invariants: %w", err)
	}

	return cart, nil
}

func (r *cartRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]domain.CartItem, error) {
	query := `
		SELECT id, product_id, product_name, sku, quantity, unit_price, currency
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			id        uuid.UUID
			productID uuid.UUID
			name      string
			sku       string
			quantity  int
			unitPrice string
			currency  string
		)
		if err := rows.Scan(&id, &productID, &name, &sku, &quantity, &unitPrice, &currency); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		itemID, err := domain.ParseItemID(id.String())
		if err != nil {
			return nil, err
		}
		prodID, err := domain.ParseProductID(productID.String())
		if err != nil {
			return nil, err
		}
		ref, err := domain.NewProductRef(prodID, name, sku)
		if err != nil {
			return nil, fmt.Errorf("stored product reference is invalid: %w", err)
		}
		price, err := domain.NewMoneyFromString(unitPrice, currency)
		if err != nil {
			return nil, fmt.Errorf("stored unit price is invalid: %w", err)
		}
		item, err := domain.ReconstituteCartItem(itemID, ref, quantity, price)
		if err != nil {
			return nil, fmt.Errorf("stored cart item violates invariants: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
