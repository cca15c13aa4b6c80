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
	ErrProductNotFound = domain.NewNotFoundError("product not found")
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ProductRepository defines the interface for product data access. Save
// persists the full aggregate state; FindByID returns a fully
// reconstructed aggregate with every invariant re-checked.
type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id domain.ProductID) error
	FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	List(ctx context.Context, categoryID *domain.CategoryID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Save upserts the product row and replaces its image rows in one transaction
func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, name, description, price, currency, category_id, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, description = $3, price = $4, currency = $5,
		    category_id = $6, available = $7, updated_at = $9
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID().UUID(),
		product.Name(),
		product.Description(),
		product.Price().Amount().String(),
		product.Price().Currency(),
		product.CategoryID().UUID(),
		product.Available(),
		product.CreatedAt(),
		product.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = $1`, product.ID().UUID()); err != nil {
		return fmt.Errorf("failed to clear product images: %w", err)
	}

	imageQuery := `
		INSERT INTO product_images (id, product_id, url, alt_text, sort_order)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, img := range product.Images() {
		_, err := tx.ExecContext(ctx, imageQuery, img.ID(), product.ID().UUID(), img.URL(), img.AltText(), img.Order())
		if err != nil {
			return fmt.Errorf("failed to save product image: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product save: %w", err)
	}

	return nil
}

// Delete removes a product and its images from the database
func (r *productRepository) Delete(ctx context.Context, id domain.ProductID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id.UUID())
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID and reconstructs the full aggregate
func (r *productRepository) FindByID(ctx context.Context, id domain.ProductID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, price, currency, category_id, available, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id.UUID())
	product, err := r.scanProduct(ctx, row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with optional category filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, categoryID *domain.CategoryID, page, pageSize int, sortBy string, sortOrder SortOrder) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	validSortFields := map[string]bool{
		"name":       true,
		"price":      true,
		"created_at": true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	whereClause := ""
	args := []interface{}{}
	argIndex := 1

	if categoryID != nil {
		whereClause = fmt.Sprintf("WHERE category_id = $%d", argIndex)
		args = append(args, categoryID.UUID())
		argIndex++
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT id, name, description, price, currency, category_id, available, created_at, updated_at
		FROM products
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, whereClause, sortBy, sortOrder, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := r.scanProduct(ctx, rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *productRepository) scanProduct(ctx context.Context, row rowScanner) (*domain.Product, error) {
	var (
		id         uuid.UUID
		name       string
		desc       string
		price      string
		currency   string
		categoryID uuid.UUID
		available  bool
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &name, &desc, &price, &currency, &categoryID, &available, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	money, err := domain.NewMoneyFromString(price, currency)
	if err != nil {
		return nil, fmt.Errorf("stored price is invalid: %w", err)
	}

	images, err := r.loadImages(ctx, id)
	if err != nil {
		return nil, err
	}

	productID, err := domain.ParseProductID(id.String())
	if err != nil {
		return nil, err
	}
	catID, err := domain.ParseCategoryID(categoryID.String())
	if err != nil {
		return nil, err
	}

	product, err := domain.ReconstituteProduct(productID, name, desc, money, catID, images, available, createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("stored product violates invariants: %w", err)
	}

	return product, nil
}

func (r *productRepository) loadImages(ctx context.Context, productID uuid.UUID) ([]domain.Image, error) {
	query := `
		SELECT id, url, alt_text, sort_order
		FROM product_images
		WHERE product_id = $1
		ORDER BY sort_order ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}
	defer rows.Close()

	var images []domain.Image
	for rows.Next() {
		var (
			id        uuid.UUID
			url       string
			altText   string
			sortOrder int
		)
		if err := rows.Scan(&id, &url, &altText, &sortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		img, err := domain.ReconstituteImage(id, url, altText, sortOrder)
		if err != nil {
			return nil, fmt.Errorf("stored image is invalid: %w", err)
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}
