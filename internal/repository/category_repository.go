package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tienda/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound      = domain.NewNotFoundError("category not found")
	ErrCategoryAlreadyExists = domain.NewBusinessRuleError("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Save(ctx context.Context, category *domain.Category) error
	FindByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error)
	FindAll(ctx context.Context) ([]*domain.Category, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Save upserts a category using parameterized queries
func (r *categoryRepository) Save(ctx context.Context, category *domain.Category) error {
	query := `
		INSERT INTO categories (id, name, description, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, description = $3, parent_id = $4, updated_at = $6
	`

	var parentID interface{}
	if pid := category.ParentID(); pid != nil {
		parentID = pid.UUID()
	}

	_, err := r.db.ExecContext(
		ctx,
		query,
		category.ID().UUID(),
		category.Name(),
		category.Description(),
		parentID,
		category.CreatedAt(),
		category.UpdatedAt(),
	)

	if err != nil {
		if strings.Contains(err.Error(), "categories_name_key") {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to save category: %w", err)
	}

	return nil
}

// FindByID retrieves a category by ID using parameterized queries
func (r *categoryRepository) FindByID(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	query := `
		SELECT id, name, description, parent_id, created_at, updated_at
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(r.db.QueryRowContext(ctx, query, id.UUID()))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}

	return category, nil
}

// FindAll retrieves every category ordered by name
func (r *categoryRepository) FindAll(ctx context.Context) ([]*domain.Category, error) {
	query := `
		SELECT id, name, description, parent_id, created_at, updated_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var (
		id        uuid.UUID
		name      string
		desc      string
		parent    sql.Null[uuid.UUID]
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &desc, &parent, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	categoryID, err := domain.ParseCategoryID(id.String())
	if err != nil {
		return nil, err
	}

	var parentID *domain.CategoryID
	if parent.Valid {
		pid, err := domain.ParseCategoryID(parent.V.String())
		if err != nil {
			return nil, err
		}
		parentID = &pid
	}

	category, err := domain.ReconstituteCategory(categoryID, name, desc, parentID, createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("stored category violates invariants: %w", err)
	}

	return category, nil
}
