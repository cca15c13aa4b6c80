package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"tienda/internal/domain"
)

var (
	ErrClientNotFound      = domain.NewNotFoundError("client not found")
	ErrClientAlreadyExists = domain.NewBusinessRuleError("client with this email already exists")
)

// ClientRepository defines the interface for client account data access
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	FindByID(ctx context.Context, id domain.ClientID) (*domain.Client, error)
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

// Create inserts a new client into the database using parameterized queries
func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		client.ID.UUID(),
		client.Email,
		client.PasswordHash,
		client.FirstName,
		client.LastName,
		client.Role,
		client.CreatedAt,
		client.UpdatedAt,
	)

	if err != nil {
		// Unique constraint violation on email
		if strings.Contains(err.Error(), "clients_email_key") {
			return ErrClientAlreadyExists
		}
		return fmt.Errorf("failed to create client: %w", err)
	}

	return nil
}

// FindByEmail retrieves a client by email using parameterized queries
func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at, updated_at
		FROM clients
		WHERE email = $1
	`

	return r.scanClient(r.db.QueryRowContext(ctx, query, email))
}

// FindByID retrieves a client by ID using parameterized queries
func (r *clientRepository) FindByID(ctx context.Context, id domain.ClientID) (*domain.Client, error) {
	query := `
		SELECT id, email, password_hash, first_name, last_name, role, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	return r.scanClient(r.db.QueryRowContext(ctx, query, id.UUID()))
}

func (r *clientRepository) scanClient(row rowScanner) (*domain.Client, error) {
	client := &domain.Client{}
	var id string

	err := row.Scan(
		&id,
		&client.Email,
		&client.PasswordHash,
		&client.FirstName,
		&client.LastName,
		&client.Role,
		&client.CreatedAt,
		&client.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}

	clientID, err := domain.ParseClientID(id)
	if err != nil {
		return nil, err
	}
	client.ID = clientID

	return client, nil
}
