// README: Concurrency tests for the assignment transaction (run with -race).
package order

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"quickcart/internal/types"
)

func TestConcurrentAssignSameOrder(t *testing.T) {
	ctx := context.Background()
	store, db := setupTestStore(t)

	orderID := seedReadyOrder(t, db, "o_race_assign")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		partnerID := types.ID(fmt.Sprintf("partner_%d", i))
		seedAvailablePartner(t, db, partnerID)
		wg.Add(1)
		go func(pid types.ID) {
			defer wg.Done()
			errs <- store.AssignPartner(ctx, orderID, pid)
		}(partnerID)
	}

	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if err != ErrPrecondition {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 successful assignment, got %d", success)
	}

	o, err := store.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != StatusAssigned {
		t.Fatalf("unexpected final status: %s", o.Status)
	}
	if o.DeliveryPartnerID == nil || *o.DeliveryPartnerID == "" {
		t.Fatal("expected delivery_partner_id to be set")
	}
}

func TestAssignPartner_AlreadyAssigned(t *testing.T) {
	ctx := context.Background()
	store, db := setupTestStore(t)

	orderID := seedReadyOrder(t, db, "o_double_assign")
	seedAvailablePartner(t, db, "partner_a")
	seedAvailablePartner(t, db, "partner_b")

	if err := store.AssignPartner(ctx, orderID, "partner_a"); err != nil {
		t.Fatalf("first assignment: %v", err)
	}
	if err := store.AssignPartner(ctx, orderID, "partner_b"); err != ErrPrecondition {
		t.Fatalf("expected ErrPrecondition on second assignment, got %v", err)
	}

	o, err := store.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.DeliveryPartnerID == nil || *o.DeliveryPartnerID != "partner_a" {
		t.Fatalf("first assignment must stand, got %v", o.DeliveryPartnerID)
	}
}

func TestAssignPartner_BusyCourierAborts(t *testing.T) {
	ctx := context.Background()
	store, db := setupTestStore(t)

	orderID := seedReadyOrder(t, db, "o_busy_courier")
	seedPartner(t, db, "partner_busy", "busy")

	if err := store.AssignPartner(ctx, orderID, "partner_busy"); err != ErrPrecondition {
		t.Fatalf("expected ErrPrecondition for busy courier, got %v", err)
	}

	// No partial mutation: the order must remain untouched.
	o, err := store.Get(ctx, orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if o.Status != StatusReadyForPickup || o.DeliveryPartnerID != nil {
		t.Fatalf("order mutated despite aborted transaction: %+v", o)
	}
}

func setupTestStore(t *testing.T) (*Store, *pgxpool.Pool) {
	t.Helper()

	dsn := os.Getenv("QUICKCART_TEST_DSN")
	if dsn == "" {
		t.Skip("QUICKCART_TEST_DSN not set; skipping DB-backed race tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE TABLE order_status_events, orders, delivery_partners, users CASCADE"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	return NewStore(db), db
}

func seedReadyOrder(t *testing.T, db *pgxpool.Pool, id string) types.ID {
	t.Helper()
	_, err := db.Exec(context.Background(), `
        INSERT INTO orders (id, customer_id, vendor_id, service_area_id, status, vendor_lat, vendor_lng, created_at)
        VALUES ($1, 'cust_1', 'vendor_1', 'area_1', 'ready_for_pickup', 25.033, 121.565, NOW())`,
		id,
	)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return types.ID(id)
}

func seedAvailablePartner(t *testing.T, db *pgxpool.Pool, id types.ID) {
	seedPartner(t, db, id, "available")
}

func seedPartner(t *testing.T, db *pgxpool.Pool, id types.ID, status string) {
	t.Helper()
	ctx := context.Background()
	userID := "user_" + string(id)
	if _, err := db.Exec(ctx, `
        INSERT INTO users (id, status) VALUES ($1, 'active')
        ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := db.Exec(ctx, `
        INSERT INTO delivery_partners (id, user_id, service_area_id, status, rating, total_deliveries)
        VALUES ($1, $2, 'area_1', $3, 4.5, 0)`,
		string(id), userID, status); err != nil {
		t.Fatalf("seed partner: %v", err)
	}
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	path := filepath.Join(root, "migrations", "0001_init.sql")
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cleaned := stripSQLComments(string(content))
	for _, stmt := range splitSQL(cleaned) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func stripSQLComments(input string) string {
	var b strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		b.WriteString(scanner.Text())
		b.WriteString("\n")
	}
	return b.String()
}

func splitSQL(input string) []string {
	parts := strings.Split(input, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		stmt := strings.TrimSpace(p)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
