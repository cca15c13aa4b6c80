package service

import (
	"context"
	"fmt"

	"tienda/internal/domain"
	"tienda/internal/repository"
)

// OrderService defines the interface for order business logic. An order is
// only ever born from a checked-out cart; from then on it walks the
// fulfillment state machine one transition at a time.
type OrderService interface {
	CreateFromCart(ctx context.Context, cartID domain.CartID, address domain.ShippingAddress) (*domain.Order, error)
	Confirm(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	ProcessPayment(ctx context.Context, id domain.OrderID, reference string) (*domain.Order, error)
	MarkPreparing(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	MarkShipped(ctx context.Context, id domain.OrderID, trackingNumber, carrier string) (*domain.Order, error)
	MarkInTransit(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	Cancel(ctx context.Context, id domain.OrderID, reason string) (*domain.Order, error)
	GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error)
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]*domain.Order, error)
}

var ErrCartNotCheckedOut = domain.NewIllegalStateError("cart must be checked out before an order can be created")

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
	}
}

// CreateFromCart converts a checked-out cart into a pending order. The
// order captures the cart lines as immutable items; on success the cart is
// marked completed.
func (s *orderService) CreateFromCart(ctx context.Context, cartID domain.CartID, address domain.ShippingAddress) (*domain.Order, error) {
	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.State() != domain.CartCheckingOut {
		return nil, ErrCartNotCheckedOut
	}

	items := make([]domain.OrderItem, 0, len(cart.Items()))
	for _, line := range cart.Items() {
		item, err := domain.NewOrderItem(
			line.Product().ProductID(),
			line.Product().Name(),
			line.Product().SKU(),
			line.Quantity(),
			line.UnitPrice(),
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	order, err := domain.NewOrder(cart.ClientID(), items, address)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	if err := cart.Complete(); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	return order, nil
}

// Confirm moves a pending order to CONFIRMED
func (s *orderService) Confirm(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.Confirm()
	})
}

// ProcessPayment records the payment reference against the order
func (s *orderService) ProcessPayment(ctx context.Context, id domain.OrderID, reference string) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.ProcessPayment(reference)
	})
}

// MarkPreparing moves a paid order to PREPARING
func (s *orderService) MarkPreparing(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.MarkPreparing()
	})
}

// MarkShipped records the carrier hand-off
func (s *orderService) MarkShipped(ctx context.Context, id domain.OrderID, trackingNumber, carrier string) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.MarkShipped(trackingNumber, carrier)
	})
}

// MarkInTransit moves a shipped order to IN_TRANSIT
func (s *orderService) MarkInTransit(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.MarkInTransit()
	})
}

// MarkDelivered closes the order
func (s *orderService) MarkDelivered(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.MarkDelivered()
	})
}

// Cancel aborts an order that has not been handed to the carrier
func (s *orderService) Cancel(ctx context.Context, id domain.OrderID, reason string) (*domain.Order, error) {
	return s.mutateOrder(ctx, id, func(o *domain.Order) error {
		return o.Cancel(reason)
	})
}

// GetOrder retrieves a single order
func (s *orderService) GetOrder(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// ListByClient retrieves a client's orders, newest first
func (s *orderService) ListByClient(ctx context.Context, clientID domain.ClientID) ([]*domain.Order, error) {
	return s.orderRepo.FindByClient(ctx, clientID)
}

func (s *orderService) mutateOrder(ctx context.Context, id domain.OrderID, mutate func(*domain.Order) error) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	return order, nil
}
