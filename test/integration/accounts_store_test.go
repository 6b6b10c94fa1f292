//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/BiggBoiLeo/Rothbard-Backend/config"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/database"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/models"
	"github.com/BiggBoiLeo/Rothbard-Backend/internal/store"
)

// applyMigrations reads scripts/init.sql and executes it against the provided pool
func applyMigrations(ctx context.Context, pool *pgxpool.Pool, t *testing.T) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	// tests run from the package dir; locate repo root by walking up to find go.mod
	root := cwd
	for i := 0; i < 5; i++ {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		root = filepath.Dir(root)
	}
	path := filepath.Join(root, "scripts", "init.sql")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read init.sql: %v", err)
	}
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
}

func TestPostgresStore_WithContainer(t *testing.T) {
	if !containersAvailable() {
		t.Skip("no container runtime available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image: "postgres:15-alpine",
		Env: map[string]string{
			"POSTGRES_DB":       "rothbard",
			"POSTGRES_USER":     "rothbard",
			"POSTGRES_PASSWORD": "password",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	dsn := "postgres://rothbard:password@" + host + ":" + port.Port() + "/rothbard?sslmode=disable"

	cfg := config.DatabaseConfig{
		URL:             dsn,
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	defer db.Close(ctx)

	applyMigrations(ctx, db.Pool(), t)

	st := store.New(db)

	// Provisioning is idempotent against the unique subject constraint
	acct, err := st.CreateAccount(ctx, "int@example.com", "int-subject-1")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	again, err := st.CreateAccount(ctx, "int@example.com", "int-subject-1")
	if err != nil {
		t.Fatalf("CreateAccount replay: %v", err)
	}
	if again.ID != acct.ID {
		t.Fatalf("replay created a second account: %s vs %s", again.ID, acct.ID)
	}

	// Vault material round-trips
	if err := st.UpdateVault(ctx, "int-subject-1", "enc-keys", "profile"); err != nil {
		t.Fatalf("UpdateVault: %v", err)
	}
	got, err := st.GetBySubject(ctx, "int-subject-1")
	if err != nil || got == nil {
		t.Fatalf("GetBySubject: %+v, %v", got, err)
	}
	if got.ClientKeys != "enc-keys" || got.UserInformation != "profile" {
		t.Fatalf("vault material mismatch: %+v", got)
	}

	// Billing updates flow through the COALESCE columns
	subID := "sub_int_1"
	plan := "prod_vault"
	err = st.UpdateBilling(ctx, acct.ID, models.BillingUpdate{
		Status:           models.StatusActive,
		HasPaid:          true,
		SubscriptionID:   &subID,
		SubscriptionPlan: &plan,
	})
	if err != nil {
		t.Fatalf("UpdateBilling: %v", err)
	}
	got, _ = st.GetByID(ctx, acct.ID)
	if got.SubscriptionStatus != models.StatusActive || !got.HasPaid || got.SubscriptionID != "sub_int_1" {
		t.Fatalf("billing state mismatch: %+v", got)
	}

	// Nil pointers leave stored identifiers alone
	err = st.UpdateBilling(ctx, acct.ID, models.BillingUpdate{
		Status:  models.StatusCancelled,
		HasPaid: false,
	})
	if err != nil {
		t.Fatalf("UpdateBilling cancel: %v", err)
	}
	got, _ = st.GetByID(ctx, acct.ID)
	if got.SubscriptionID != "sub_int_1" {
		t.Fatalf("subscription id must survive cancellation, got %q", got.SubscriptionID)
	}
	if got.SubscriptionStatus != models.StatusCancelled || got.HasPaid {
		t.Fatalf("cancel state mismatch: %+v", got)
	}

	// Deletion flag persists
	if err := st.MarkForDeletion(ctx, "int-subject-1"); err != nil {
		t.Fatalf("MarkForDeletion: %v", err)
	}
	got, _ = st.GetBySubject(ctx, "int-subject-1")
	if !got.WantsDelete {
		t.Fatalf("expected wants_delete set: %+v", got)
	}
}
