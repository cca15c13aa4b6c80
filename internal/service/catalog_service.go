package service

import (
	"context"
	"fmt"

	"tienda/internal/domain"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService defines the interface for product and category business
// logic. Mutations load the aggregate, apply the change through its own
// methods and persist the result, so no invariant can be bypassed here.
type CatalogService interface {
	CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, currency string, categoryID domain.CategoryID) (*domain.Product, error)
	UpdateProductInfo(ctx context.Context, id domain.ProductID, name, description string) (*domain.Product, error)
	ChangeProductPrice(ctx context.Context, id domain.ProductID, price decimal.Decimal, currency string) (*domain.Product, error)
	ActivateProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	AddProductImage(ctx context.Context, id domain.ProductID, url, altText string, order int) (*domain.Product, error)
	RemoveProductImage(ctx context.Context, id domain.ProductID, imageID uuid.UUID) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id domain.ProductID) error
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	ListProducts(ctx context.Context, categoryID *domain.CategoryID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error)

	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id domain.CategoryID, name, description string) (*domain.Category, error)
	AssignCategoryParent(ctx context.Context, id domain.CategoryID, parentID *domain.CategoryID) (*domain.Category, error)
	GetCategory(ctx context.Context, id domain.CategoryID) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateProduct builds and persists a new, unpublished product. The target
// category must exist.
func (s *catalogService) CreateProduct(ctx context.Context, name, description string, price decimal.Decimal, currency string, categoryID domain.CategoryID) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		return nil, err
	}

	money, err := domain.NewMoney(price, currency)
	if err != nil {
		return nil, err
	}

	product, err := domain.NewProduct(name, description, money, categoryID)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	return product, nil
}

// UpdateProductInfo renames and redescribes an existing product
func (s *catalogService) UpdateProductInfo(ctx context.Context, id domain.ProductID, name, description string) (*domain.Product, error) {
	return s.mutateProduct(ctx, id, func(p *domain.Product) error {
		return p.UpdateInfo(name, description)
	})
}

// ChangeProductPrice applies a price change within the increase cap
func (s *catalogService) ChangeProductPrice(ctx context.Context, id domain.ProductID, price decimal.Decimal, currency string) (*domain.Product, error) {
	money, err := domain.NewMoney(price, currency)
	if err != nil {
		return nil, err
	}
	return s.mutateProduct(ctx, id, func(p *domain.Product) error {
		return p.ChangePrice(money)
	})
}

// ActivateProduct publishes a product that has images and a positive price
func (s *catalogService) ActivateProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	return s.mutateProduct(ctx, id, func(p *domain.Product) error {
		return p.Activate()
	})
}

// DeactivateProduct unpublishes a product
func (s *catalogService) DeactivateProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	return s.mutateProduct(ctx, id, func(p *domain.Product) error {
		return p.Deactivate()
	})
}

// AddProductImage appends an image to the product gallery
func (s *catalogService) AddProductImage(ctx context.Context, id domain.ProductID, url, altText string, order int) (*domain.Product, error) {
	img, err := domain.NewImage(url, altText, order)
	if err != nil {
		return nil, err
	}
	return s.mutateProduct(ctx, id, func(p *domain.Product) error {
		return p.AddImage(img)
	})
}

// RemoveProductImage drops an image from the product gallery
func (s *catalogService) RemoveProductImage(ctx context.Context, id domain.ProductID, imageID uuid.UUID) (*domain.Product, error) {
	return s.mutateProduct(ctx, id, func(p *domain.Product) error {
		return p.RemoveImage(imageID)
	})
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id domain.ProductID) error {
	return s.productRepo.Delete(ctx, id)
}

// GetProduct retrieves a single product
func (s *catalogService) GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	return s.productRepo.FindByID(ctx, id)
}

// ListProducts retrieves products with filtering, pagination and sorting
func (s *catalogService) ListProducts(ctx context.Context, categoryID *domain.CategoryID, page, pageSize int, sortBy string, sortOrder repository.SortOrder) ([]*domain.Product, int, error) {
	return s.productRepo.List(ctx, categoryID, page, pageSize, sortBy, sortOrder)
}

func (s *catalogService) mutateProduct(ctx context.Context, id domain.ProductID, mutate func(*domain.Product) error) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	return product, nil
}

// CreateCategory builds and persists a new root-level category
func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	category, err := domain.NewCategory(name, description)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames and redescribes an existing category
func (s *catalogService) UpdateCategory(ctx context.Context, id domain.CategoryID, name, description string) (*domain.Category, error) {
	return s.mutateCategory(ctx, id, func(c *domain.Category) error {
		return c.Update(name, description)
	})
}

// AssignCategoryParent sets or clears a category's parent. A non-nil
// parent must exist.
func (s *catalogService) AssignCategoryParent(ctx context.Context, id domain.CategoryID, parentID *domain.CategoryID) (*domain.Category, error) {
	if parentID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	return s.mutateCategory(ctx, id, func(c *domain.Category) error {
		return c.AssignParent(parentID)
	})
}

// GetCategory retrieves a single category
func (s *catalogService) GetCategory(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// ListCategories retrieves every category
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *catalogService) mutateCategory(ctx context.Context, id domain.CategoryID, mutate func(*domain.Category) error) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := mutate(category); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}
