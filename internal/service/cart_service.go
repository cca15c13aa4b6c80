package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/domain"
	"tienda/internal/repository"

	"github.com/shopspring/decimal"
)

// CartService defines the interface for shopping cart business logic. Item
// lines capture the product's name, SKU and price at the moment of adding;
// later catalog changes do not rewrite existing carts.
type CartService interface {
	GetOrCreateActiveCart(ctx context.Context, clientID domain.ClientID) (*domain.Cart, error)
	GetCart(ctx context.Context, id domain.CartID) (*domain.Cart, error)
	AddItem(ctx context.Context, cartID domain.CartID, productID domain.ProductID, quantity int) (*domain.Cart, error)
	ModifyItemQuantity(ctx context.Context, cartID domain.CartID, productID domain.ProductID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, cartID domain.CartID, productID domain.ProductID) (*domain.Cart, error)
	ClearCart(ctx context.Context, cartID domain.CartID) (*domain.Cart, error)
	ApplyDiscount(ctx context.Context, cartID domain.CartID, code string, kind domain.DiscountKind, percent decimal.Decimal) (*domain.Cart, error)
	Checkout(ctx context.Context, cartID domain.CartID) (*domain.Cart, error)
	AbandonCart(ctx context.Context, cartID domain.CartID) (*domain.Cart, error)
}

var ErrProductUnavailable = domain.NewBusinessRuleError("product is not available for sale")

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetOrCreateActiveCart returns the client's current active cart, opening a
// new one when none exists.
func (s *cartService) GetOrCreateActiveCart(ctx context.Context, clientID domain.ClientID) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindActiveByClient(ctx, clientID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	cart, err = domain.NewCart(clientID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	return cart, nil
}

// GetCart retrieves a cart by ID
func (s *cartService) GetCart(ctx context.Context, id domain.CartID) (*domain.Cart, error) {
	return s.cartRepo.FindByID(ctx, id)
}

// AddItem adds an available product to the cart, capturing its current
// name, SKU and price.
func (s *cartService) AddItem(ctx context.Context, cartID domain.CartID, productID domain.ProductID, quantity int) (*domain.Cart, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.Available() {
		return nil, ErrProductUnavailable
	}

	ref, err := domain.NewProductRef(product.ID(), product.Name(), skuFor(product.ID()))
	if err != nil {
		return nil, err
	}

	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.AddItem(ref, quantity, product.Price())
	})
}

// ModifyItemQuantity sets the quantity of an existing cart line
func (s *cartService) ModifyItemQuantity(ctx context.Context, cartID domain.CartID, productID domain.ProductID, quantity int) (*domain.Cart, error) {
	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.ModifyQuantity(productID, quantity)
	})
}

// RemoveItem drops a product line from the cart
func (s *cartService) RemoveItem(ctx context.Context, cartID domain.CartID, productID domain.ProductID) (*domain.Cart, error) {
	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.RemoveItem(productID)
	})
}

// ClearCart removes every line from the cart
func (s *cartService) ClearCart(ctx context.Context, cartID domain.CartID) (*domain.Cart, error) {
	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.Clear()
	})
}

// ApplyDiscount attaches the single allowed discount to the cart
func (s *cartService) ApplyDiscount(ctx context.Context, cartID domain.CartID, code string, kind domain.DiscountKind, percent decimal.Decimal) (*domain.Cart, error) {
	discount, err := domain.NewAppliedDiscount(code, kind, percent)
	if err != nil {
		return nil, err
	}
	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.ApplyDiscount(discount)
	})
}

// Checkout freezes the cart pending order creation
func (s *cartService) Checkout(ctx context.Context, cartID domain.CartID) (*domain.Cart, error) {
	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.Checkout()
	})
}

// AbandonCart marks a checked-out cart as given up
func (s *cartService) AbandonCart(ctx context.Context, cartID domain.CartID) (*domain.Cart, error) {
	return s.mutateCart(ctx, cartID, func(c *domain.Cart) error {
		return c.Abandon()
	})
}

func (s *cartService) mutateCart(ctx context.Context, id domain.CartID, mutate func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.cartRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(cart); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}

	return cart, nil
}

// skuFor derives the displayed stock-keeping unit from the product id.
func skuFor(id domain.ProductID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return "SKU-" + short
}
