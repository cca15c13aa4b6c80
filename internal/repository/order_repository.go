package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tienda/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = domain.NewNotFoundError("order not found")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Save(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	FindByClient(ctx context.Context, clientID domain.ClientID) ([]*domain.Order, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Save upserts the order row, inserts item rows once and rewrites the
// history rows, all in one transaction. Items never change after creation;
// history only grows.
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (
			id, order_number, client_id, state, total, currency,
			recipient_name, street, city, region, postal_code, country, phone, instructions,
			payment_method, payment_reference, payment_approved, payment_processed_at,
			tracking_number, carrier, shipped_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (id) DO UPDATE
		SET state = $4,
		    payment_method = $15, payment_reference = $16, payment_approved = $17, payment_processed_at = $18,
		    tracking_number = $19, carrier = $20, shipped_at = $21
	`

	var (
		paymentMethod      interface{}
		paymentReference   interface{}
		paymentApproved    interface{}
		paymentProcessedAt interface{}
		trackingNumber     interface{}
		carrier            interface{}
		shippedAt          interface{}
	)
	if p := order.Payment(); p != nil {
		paymentMethod = p.Method
		paymentReference = p.Reference
		paymentApproved = p.Approved
		paymentProcessedAt = p.ProcessedAt
	}
	if s := order.Shipping(); s != nil {
		trackingNumber = s.TrackingNumber
		carrier = s.Carrier
		shippedAt = s.ShippedAt
	}

	addr := order.Address()
	_, err = tx.ExecContext(
		ctx,
		query,
		order.ID().UUID(),
		order.OrderNumber(),
		order.ClientID().UUID(),
		string(order.State()),
		order.Total().Amount().String(),
		order.Total().Currency(),
		addr.RecipientName(),
		addr.Street(),
		addr.City(),
		addr.Region(),
		addr.PostalCode(),
		addr.Country(),
		addr.Phone(),
		addr.Instructions(),
		paymentMethod,
		paymentReference,
		paymentApproved,
		paymentProcessedAt,
		trackingNumber,
		carrier,
		shippedAt,
		order.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, product_name, sku, quantity, unit_price, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`
	for _, item := range order.Items() {
		_, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID().UUID(),
			order.ID().UUID(),
			item.ProductID().UUID(),
			item.ProductName(),
			item.SKU(),
			item.Quantity(),
			item.UnitPrice().Amount().String(),
			item.UnitPrice().Currency(),
		)
		if err != nil {
			return fmt.Errorf("failed to save order item: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_state_history WHERE order_id = $1`, order.ID().UUID()); err != nil {
		return fmt.Errorf("failed to clear order history: %w", err)
	}

	historyQuery := `
		INSERT INTO order_state_history (order_id, position, from_state, to_state, changed_at, reason, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i, change := range order.History() {
		_, err := tx.ExecContext(
			ctx,
			historyQuery,
			order.ID().UUID(),
			i,
			string(change.From),
			string(change.To),
			change.At,
			change.Reason,
			change.Actor,
		)
		if err != nil {
			return fmt.Errorf("failed to save order history entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order save: %w", err)
	}

	return nil
}

// FindByID retrieves an order by ID and reconstructs the full aggregate
func (r *orderRepository) FindByID(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	query := orderSelect + ` WHERE id = $1`

	order, err := r.scanOrder(ctx, r.db.QueryRowContext(ctx, query, id.UUID()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	return order, nil
}

// FindByClient retrieves all orders belonging to a client, newest first
func (r *orderRepository) FindByClient(ctx context.Context, clientID domain.ClientID) ([]*domain.Order, error) {
	query := orderSelect + ` WHERE client_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, clientID.UUID())
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := r.scanOrder(ctx, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

const orderSelect = `
	SELECT id, order_number, client_id, state, total, currency,
	       recipient_name, street, city, region, postal_code, country, phone, instructions,
	       payment_method, payment_reference, payment_approved, payment_processed_at,
	       tracking_number, carrier, shipped_at, created_at
	FROM orders
`

func (r *orderRepository) scanOrder(ctx context.Context, row rowScanner) (*domain.Order, error) {
	var (
		id                 uuid.UUID
		orderNumber        string
		clientID           uuid.UUID
		state              string
		total              string
		currency           string
		recipientName      string
		street             string
		city               string
		region             string
		postalCode         string
		country            string
		phone              string
		instructions       string
		paymentMethod      sql.NullString
		paymentReference   sql.NullString
		paymentApproved    sql.NullBool
		paymentProcessedAt sql.NullTime
		trackingNumber     sql.NullString
		carrier            sql.NullString
		shippedAt          sql.NullTime
		createdAt          time.Time
	)

	err := row.Scan(
		&id, &orderNumber, &clientID, &state, &total, &currency,
		&recipientName, &street, &city, &region, &postalCode, &country, &phone, &instructions,
		&paymentMethod, &paymentReference, &paymentApproved, &paymentProcessedAt,
		&trackingNumber, &carrier, &shippedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	orderID, err := domain.ParseOrderID(id.String())
	if err != nil {
		return nil, err
	}
	ownerID, err := domain.ParseClientID(clientID.String())
	if err != nil {
		return nil, err
	}
	totalMoney, err := domain.NewMoneyFromString(total, currency)
	if err != nil {
		return nil, fmt.Errorf("stored total is invalid: %w", err)
	}
	address, err := domain.NewShippingAddress(recipientName, street, city, region, postalCode, country, phone, instructions)
	if err != nil {
		return nil, fmt.Errorf("stored shipping address is invalid: %w", err)
	}

	var payment *domain.PaymentSummary
	if paymentReference.Valid {
		payment = &domain.PaymentSummary{
			Method:      paymentMethod.String,
			Reference:   paymentReference.String,
			Approved:    paymentApproved.Bool,
			ProcessedAt: paymentProcessedAt.Time,
		}
	}

	var shipping *domain.ShippingInfo
	if trackingNumber.Valid {
		shipping = &domain.ShippingInfo{
			TrackingNumber: trackingNumber.String,
			Carrier:        carrier.String,
			ShippedAt:      shippedAt.Time,
		}
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := r.loadHistory(ctx, id)
	if err != nil {
		return nil, err
	}

	order, err := domain.ReconstituteOrder(
		orderID, orderNumber, ownerID, items, address, createdAt,
		domain.OrderState(state), totalMoney, payment, shipping, history,
	)
	if err != nil {
		return nil, fmt.Errorf("stored order violates invariants: %w", err)
	}

	return order, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
		SELECT id, product_id, product_name, sku, quantity, unit_price, currency
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
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
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		itemID, err := domain.ParseItemID(id.String())
		if err != nil {
			return nil, err
		}
		prodID, err := domain.ParseProductID(productID.String())
		if err != nil {
			return nil, err
		}
		price, err := domain.NewMoneyFromString(unitPrice, currency)
		if err != nil {
			return nil, fmt.Errorf("stored unit price is invalid: %w", err)
		}
		item, err := domain.ReconstituteOrderItem(itemID, prodID, name, sku, quantity, price)
		if err != nil {
			return nil, fmt.Errorf("stored order item violates invariants: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) loadHistory(ctx context.Context, orderID uuid.UUID) ([]domain.StateChange, error) {
	query := `
		SELECT from_state, to_state, changed_at, reason, actor
		FROM order_state_history
		WHERE order_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	defer rows.Close()

	var history []domain.StateChange
	for rows.Next() {
		var (
			fromState string
			toState   string
			changedAt time.Time
			reason    string
			actor     string
		)
		if err := rows.Scan(&fromState, &toState, &changedAt, &reason, &actor); err != nil {
			return nil, fmt.Errorf("failed to scan order history entry: %w", err)
		}
		history = append(history, domain.StateChange{
			From:   domain.OrderState(fromState),
			To:     domain.OrderState(toState),
			At:     changedAt,
			Reason: reason,
			Actor:  actor,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order history: %w", err)
	}

	return history, nil
}
