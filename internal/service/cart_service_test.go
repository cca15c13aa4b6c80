package service

import (
	"context"
	"testing"

	"tienda/internal/domain"
	"tienda/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProductRepository struct {
	products map[domain.ProductID]*domain.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[domain.ProductID]*domain.Product)}
}

func (m *mockProductRepository) Save(ctx context.Context, product *domain.Product) error {
	m.products[product.ID()] = product
	return nil
}

func (m *mockProductRepository) Delete(ctx context.Context, id domain.ProductID) error {
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepository) FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *mockProductRepository) List(ctx context.Context, categoryID *domain.CategoryID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	products := []*domain.Product{}
	for _, p := range m.products {
		if categoryID != nil && p.CategoryID() != *categoryID {
			continue
		}
		products = append(products, p)
	}
	return products, len(products), nil
}

type mockCartRepository struct {
	carts map[domain.CartID]*domain.Cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[domain.CartID]*domain.Cart)}
}

func (m *mockCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	m.carts[cart.ID()] = cart
	return nil
}

func (m *mockCartRepository) FindByID(ctx context.Context, id domain.CartID) (*domain.Cart, error) {
	cart, ok := m.carts[id]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (m *mockCartRepository) FindActiveByClient(ctx context.Context, clientID domain.ClientID) (*domain.Cart, error) {
	for _, cart := range m.carts {
		if cart.ClientID() == clientID && cart.State() == domain.CartActive {
			return cart, nil
		}
	}
	return nil, repository.ErrCartNotFound
}

func sellableProduct(t *testing.T, repo *mockProductRepository, price string) *domain.Product {
	t.Helper()

	money, err := domain.NewMoneyFromString(price, domain.DefaultCurrency)
	require.NoError(t, err)

	product, err := domain.NewProduct("Cafe de Olla 500g", "Ground coffee with cinnamon and piloncillo", money, domain.NewCategoryID())
	require.NoError(t, err)

	img, err := domain.NewImage("https://cdn.example.com/cafe.jpg", "bag of coffee", 0)
	require.NoError(t, err)
	require.NoError(t, product.AddImage(img))
	require.NoError(t, product.Activate())

	require.NoError(t, repo.Save(context.Background(), product))
	return product
}

func TestCartService_GetOrCreateActiveCart(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	svc := NewCartService(cartRepo, newMockProductRepository())
	clientID := domain.NewClientID()

	first, err := svc.GetOrCreateActiveCart(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, domain.CartActive, first.State())

	// A second call returns the same cart instead of opening another
	second, err := svc.GetOrCreateActiveCart(ctx, clientID)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)

	product := sellableProduct(t, productRepo, "120.00")
	cart, err := svc.GetOrCreateActiveCart(ctx, domain.NewClientID())
	require.NoError(t, err)

	cart, err = svc.AddItem(ctx, cart.ID(), product.ID(), 2)
	require.NoError(t, err)

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, product.ID(), items[0].Product().ProductID())
	assert.Equal(t, product.Name(), items[0].Product().Name())
	assert.Equal(t, 2, items[0].Quantity())
	assert.True(t, items[0].UnitPrice().Equals(product.Price()))

	// SKU is derived from the product id
	assert.Contains(t, items[0].Product().SKU(), "SKU-")
	assert.Len(t, items[0].Product().SKU(), 12)
}

func TestCartService_AddItem_UnavailableProduct(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)

	product := sellableProduct(t, productRepo, "120.00")
	require.NoError(t, product.Deactivate())

	cart, err := svc.GetOrCreateActiveCart(ctx, domain.NewClientID())
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.ID(), product.ID(), 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBusinessRule))
}

func TestCartService_AddItem_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	svc := NewCartService(cartRepo, newMockProductRepository())

	cart, err := svc.GetOrCreateActiveCart(ctx, domain.NewClientID())
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.ID(), domain.NewProductID(), 1)
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCartService_ModifyAndRemove(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)

	product := sellableProduct(t, productRepo, "80.00")
	cart, err := svc.GetOrCreateActiveCart(ctx, domain.NewClientID())
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.ID(), product.ID(), 1)
	require.NoError(t, err)

	cart, err = svc.ModifyItemQuantity(ctx, cart.ID(), product.ID(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items()[0].Quantity())

	// Quantity zero is rejected, never treated as removal
	_, err = svc.ModifyItemQuantity(ctx, cart.ID(), product.ID(), 0)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBusinessRule))

	cart, err = svc.RemoveItem(ctx, cart.ID(), product.ID())
	require.NoError(t, err)
	assert.Empty(t, cart.Items())
}

func TestCartService_ApplyDiscount(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)

	product := sellableProduct(t, productRepo, "100.00")
	cart, err := svc.GetOrCreateActiveCart(ctx, domain.NewClientID())
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.ID(), product.ID(), 1)
	require.NoError(t, err)

	cart, err = svc.ApplyDiscount(ctx, cart.ID(), "VERANO20", domain.DiscountSeasonal, decimal.NewFromInt(20))
	require.NoError(t, err)
	assert.Equal(t, "80.00 MXN", cart.Total().String())

	// Only one discount per cart
	_, err = svc.ApplyDiscount(ctx, cart.ID(), "OTRO10", domain.DiscountPromotion, decimal.NewFromInt(10))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindBusinessRule))
}

func TestCartService_Checkout(t *testing.T) {
	ctx := context.Background()
	cartRepo := newMockCartRepository()
	productRepo := newMockProductRepository()
	svc := NewCartService(cartRepo, productRepo)

	product := sellableProduct(t, productRepo, "60.00")
	cart, err := svc.GetOrCreateActiveCart(ctx, domain.NewClientID())
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cart.ID(), product.ID(), 1)
	require.NoError(t, err)

	cart, err = svc.Checkout(ctx, cart.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.CartCheckingOut, cart.State())

	// Frozen carts cannot be edited
	_, err = svc.AddItem(ctx, cart.ID(), product.ID(), 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindIllegalState))

	cart, err = svc.AbandonCart(ctx, cart.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.CartAbandoned, cart.State())
}
