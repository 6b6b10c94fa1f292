package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
)

type mockDB struct {
	ExecFn         func(ctx context.Context, sql string, args ...any) error
	QueryRowFn     func(ctx context.Context, sql string, args ...any) interface{}
	HealthFn       func(ctx context.Context) error
	IsConfiguredFn func() bool
}

func (m *mockDB) Exec(ctx context.Context, sql string, args ...any) error {
	if m.ExecFn != nil {
		return m.ExecFn(ctx, sql, args...)
	}
	return nil
}
func (m *mockDB) Query(ctx context.Context, sql string, args ...any) (interface{}, error) {
	return nil, nil
}
func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...any) interface{} {
	if m.QueryRowFn != nil {
		return m.QueryRowFn(ctx, sql, args...)
	}
	return nil
}
func (m *mockDB) Health(ctx context.Context) error {
	if m.HealthFn != nil {
		return m.HealthFn(ctx)
	}
	return nil
}
func (m *mockDB) IsConfigured() bool {
	if m.IsConfiguredFn != nil {
		return m.IsConfiguredFn()
	}
	return true
}

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error { return r.err }

func TestPostgresStore_CreateAccount_BuildsUpsert(t *testing.T) {
	var gotSQL string
	db := &mockDB{
		ExecFn: func(ctx context.Context, sql string, args ...any) error {
			gotSQL = sql
			return errors.New("exec failure")
		},
	}
	s := NewPostgresStore(db)
	_, err := s.CreateAccount(context.Background(), "a@example.com", "subject-1")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(gotSQL, "INSERT INTO accounts") || !strings.Contains(gotSQL, "ON CONFLICT (subject_id) DO NOTHING") {
		t.Errorf("unexpected SQL: %s", gotSQL)
	}
}

func TestPostgresStore_GetBySubject_NoRows(t *testing.T) {
	db := &mockDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) interface{} {
		return fakeRow{err: pgx.ErrNoRows}
	}}
	s := NewPostgresStore(db)
	res, err := s.GetBySubject(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil, got %+v", res)
	}
}

func TestPostgresStore_GetByEmail_InvalidRowType(t *testing.T) {
	db := &mockDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) interface{} { return 123 }}
	s := NewPostgresStore(db)
	_, err := s.GetByEmail(context.Background(), "x@example.com")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid row type") {
		t.Errorf("got %v", err)
	}
}

func TestPostgresStore_GetByID_ScanErrorWrapped(t *testing.T) {
	db := &mockDB{QueryRowFn: func(ctx context.Context, sql string, args ...any) interface{} {
		return fakeRow{err: errors.New("scan failure")}
	}}
	s := NewPostgresStore(db)
	_, err := s.GetByID(context.Background(), "acc-1")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "get account by id") {
		t.Errorf("wrap missing: %v", err)
	}
}

func TestPostgresStore_UpdateBilling_CoalescesOptionalColumns(t *testing.T) {
	var gotSQL string
	var gotArgs []any
	db := &mockDB{ExecFn: func(ctx context.Context, sql string, args ...any) error {
		gotSQL = sql
		gotArgs = args
		return nil
	}}
	s := NewPostgresStore(db)

	subID := "sub_9"
	err := s.UpdateBilling(context.Background(), "acc-1", models.BillingUpdate{
		Status:         models.StatusActive,
		HasPaid:        true,
		SubscriptionID: &subID,
	})
	if err != nil {
		t.Fatalf("UpdateBilling: %v", err)
	}
	if !strings.Contains(gotSQL, "COALESCE($3::text, subscription_id)") {
		t.Errorf("expected subscription_id coalesce, got %s", gotSQL)
	}
	if len(gotArgs) != 5 {
		t.Fatalf("expected 5 args, got %d", len(gotArgs))
	}
	if gotArgs[3] != (*string)(nil) {
		t.Errorf("expected nil plan pointer, got %v", gotArgs[3])
	}
}

func TestPostgresStore_UpdateVault_PropagatesError(t *testing.T) {
	db := &mockDB{ExecFn: func(ctx context.Context, sql string, args ...any) error {
		return errors.New("exec failure")
	}}
	s := NewPostgresStore(db)
	if err := s.UpdateVault(context.Background(), "subject-1", "k", "i"); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
