package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db Database
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(db Database) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `
	id, email, subject_id, has_paid, subscription_status, subscription_id,
	subscription_plan, wallet_descriptor, client_keys, user_information,
	wants_delete, created_at, updated_at
`

// CreateAccount inserts a new account record. A concurrent insert for the
// same subject loses quietly (ON CONFLICT DO NOTHING) and the stored row
// is returned instead.
func (s *PostgresStore) CreateAccount(ctx context.Context, email, subjectID string) (*models.Account, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO accounts (id, email, subject_id, has_paid, subscription_status, created_at, updated_at)
		VALUES ($1, $2, $3, false, 'unpaid', NOW(), NOW())
		ON CONFLICT (subject_id) DO NOTHING
	`
	if err := s.db.Exec(ctx, query, id, email, subjectID); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	acct, err := s.GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, errors.New("account not visible after insert")
	}
	return acct, nil
}

// GetByID retrieves an account by its primary key
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.getOne(ctx, "id", id)
}

// GetBySubject retrieves an account by identity subject id
func (s *PostgresStore) GetBySubject(ctx context.Context, subjectID string) (*models.Account, error) {
	return s.getOne(ctx, "subject_id", subjectID)
}

// GetByEmail retrieves an account by email
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.getOne(ctx, "email", email)
}

func (s *PostgresStore) getOne(ctx context.Context, column, value string) (*models.Account, error) {
	query := fmt.Sprintf("SELECT %s FROM accounts WHERE %s = $1", accountColumns, column)

	rowAny := s.db.QueryRow(ctx, query, value)
	row, ok := rowAny.(interface{ Scan(dest ...any) error })
	if !ok {
		return nil, fmt.Errorf("invalid row type %T", rowAny)
	}

	var a models.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.SubjectID, &a.HasPaid, &a.SubscriptionStatus,
		&a.SubscriptionID, &a.SubscriptionPlan, &a.WalletDescriptor,
		&a.ClientKeys, &a.UserInformation, &a.WantsDelete,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by %s: %w", column, err)
	}
	return &a, nil
}

// UpdateVault overwrites the client key and user information blobs
func (s *PostgresStore) UpdateVault(ctx context.Context, subjectID, clientKeys, userInfo string) error {
	query := `
		UPDATE accounts
		SET client_keys = $1, user_information = $2, updated_at = NOW()
		WHERE subject_id = $3
	`
	if err := s.db.Exec(ctx, query, clientKeys, userInfo, subjectID); err != nil {
		return fmt.Errorf("update vault: %w", err)
	}
	return nil
}

// SetHasPaid overwrites the paid projection flag
func (s *PostgresStore) SetHasPaid(ctx context.Context, subjectID string, hasPaid bool) error {
	query := `UPDATE accounts SET has_paid = $1, updated_at = NOW() WHERE subject_id = $2`
	if err := s.db.Exec(ctx, query, hasPaid, subjectID); err != nil {
		return fmt.Errorf("set has_paid: %w", err)
	}
	return nil
}

// MarkForDeletion records the soft-delete intent flag
func (s *PostgresStore) MarkForDeletion(ctx context.Context, subjectID string) error {
	query := `UPDATE accounts SET wants_delete = true, updated_at = NOW() WHERE subject_id = $1`
	if err := s.db.Exec(ctx, query, subjectID); err != nil {
		return fmt.Errorf("mark for deletion: %w", err)
	}
	return nil
}

// UpdateBilling applies a reconciled billing state to an account.
// Subscription id and plan columns are only touched when the update
// carries them.
func (s *PostgresStore) UpdateBilling(ctx context.Context, accountID string, up models.BillingUpdate) error {
	query := `
		UPDATE accounts
		SET subscription_status = $1,
		    has_paid = $2,
		    subscription_id = COALESCE($3::text, subscription_id),
		    subscription_plan = COALESCE($4::text, subscription_plan),
		    updated_at = NOW()
		WHERE id = $5
	`
	if err := s.db.Exec(ctx, query, string(up.Status), up.HasPaid, up.SubscriptionID, up.SubscriptionPlan, accountID); err != nil {
		return fmt.Errorf("update billing: %w", err)
	}
	return nil
}

// Health checks database connectivity
func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.Health(ctx)
}
