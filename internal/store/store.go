package store

import (
	"context"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
)

// Store defines the interface for account storage
type Store interface {
	// CreateAccount inserts a new account for the identity subject and
	// returns it. Inserting an already-provisioned subject is a no-op.
	CreateAccount(ctx context.Context, email, subjectID string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetBySubject(ctx context.Context, subjectID string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateVault(ctx context.Context, subjectID, clientKeys, userInfo string) error
	SetHasPaid(ctx context.Context, subjectID string, hasPaid bool) error
	MarkForDeletion(ctx context.Context, subjectID string) error
	UpdateBilling(ctx context.Context, accountID string, up models.BillingUpdate) error
	Health(ctx context.Context) error
}

// Database interface for dependency injection
type Database interface {
	Exec(ctx context.Context, sql string, args ...any) error
	Query(ctx context.Context, sql string, args ...any) (interface{}, error)
	QueryRow(ctx context.Context, sql string, args ...any) interface{}
	Health(ctx context.Context) error
	IsConfigured() bool
}

// New creates a new store instance
func New(db Database) Store {
	if db.IsConfigured() {
		return NewPostgresStore(db)
	}
	// Fallback to in-memory store if no database
	return NewInMemoryStore()
}
