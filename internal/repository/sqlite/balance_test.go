package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/halalchat/backend/internal/apperror"
)

// newTestDB returns a DB backed by an in-memory SQLite database.
// Each test gets its own database; it disappears when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEnsureBalance_CreatesWithGrant(t *testing.T) {
	db := newTestDB(t)

	b, err := db.EnsureBalance(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("EnsureBalance() error = %v", err)
	}

	if b.TotalCredits != 5 {
		t.Errorf("TotalCredits = %d, want 5", b.TotalCredits)
	}
	if b.ReferralCredits != 0 {
		t.Errorf("ReferralCredits = %d, want 0", b.ReferralCredits)
	}
}

func TestEnsureBalance_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.EnsureBalance(ctx, "u1", 5); err != nil {
		t.Fatalf("first EnsureBalance() error = %v", err)
	}
	if _, err := db.DebitCredit(ctx, "u1"); err != nil {
		t.Fatalf("DebitCredit() error = %v", err)
	}

	// Second ensure must not re-apply the grant or reset the balance.
	b, err := db.EnsureBalance(ctx, "u1", 5)
	if err != nil {
		t.Fatalf("second EnsureBalance() error = %v", err)
	}
	if b.TotalCredits != 4 {
		t.Errorf("TotalCredits = %d, want 4", b.TotalCredits)
	}
}

func TestDebitCredit_Decrements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.EnsureBalance(ctx, "u1", 3); err != nil {
		t.Fatalf("EnsureBalance() error = %v", err)
	}

	b, err := db.DebitCredit(ctx, "u1")
	if err != nil {
		t.Fatalf("DebitCredit() error = %v", err)
	}
	if b.TotalCredits != 2 {
		t.Errorf("TotalCredits = %d, want 2", b.TotalCredits)
	}
}

func TestDebitCredit_ZeroBalance(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.EnsureBalance(ctx, "u1", 0); err != nil {
		t.Fatalf("EnsureBalance() error = %v", err)
	}

	_, err := db.DebitCredit(ctx, "u1")
	if !errors.Is(err, apperror.ErrInsufficientCredits) {
		t.Errorf("DebitCredit() error = %v, want ErrInsufficientCredits", err)
	}

	// Balance must be untouched.
	b, err := db.GetBalance(ctx, "u1")
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if b.TotalCredits != 0 {
		t.Errorf("TotalCredits = %d, want 0", b.TotalCredits)
	}
}

func TestDebitCredit_MissingRow(t *testing.T) {
	db := newTestDB(t)

	_, err := db.DebitCredit(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrInsufficientCredits) {
		t.Errorf("DebitCredit() error = %v, want ErrInsufficientCredits", err)
	}
}

// TestDebitCredit_Concurrent drives N racing debits against a balance of B
// and checks the conditional decrement: successes never exceed B and the
// final balance is B minus the number of successes, never negative.
func TestDebitCredit_Concurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const starting = 5
	const attempts = 20

	if _, err := db.EnsureBalance(ctx, "u1", starting); err != nil {
		t.Fatalf("EnsureBalance() error = %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.DebitCredit(ctx, "u1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperror.ErrInsufficientCredits):
			// expected once the balance is exhausted
		default:
			t.Fatalf("unexpected debit error: %v", err)
		}
	}

	if successes != starting {
		t.Errorf("successful debits = %d, want %d", successes, starting)
	}

	b, err := db.GetBalance(ctx, "u1")
	if err != nil {
		t.Fatalf("GetBalance() error = %v", err)
	}
	if b.TotalCredits != 0 {
		t.Errorf("final TotalCredits = %d, want 0", b.TotalCredits)
	}
}

func TestAddReferralBonus_FreshReferrer(t *testing.T) {
	db := newTestDB(t)

	// No prior balance: the creation path must yield exactly {total:1, referral:1}.
	b, err := db.AddReferralBonus(context.Background(), "referrer")
	if err != nil {
		t.Fatalf("AddReferralBonus() error = %v", err)
	}

	if b.TotalCredits != 1 {
		t.Errorf("TotalCredits = %d, want 1", b.TotalCredits)
	}
	if b.ReferralCredits != 1 {
		t.Errorf("ReferralCredits = %d, want 1", b.ReferralCredits)
	}
}

func TestAddReferralBonus_ExistingReferrer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.EnsureBalance(ctx, "referrer", 5); err != nil {
		t.Fatalf("EnsureBalance() error = %v", err)
	}

	b, err := db.AddReferralBonus(ctx, "referrer")
	if err != nil {
		t.Fatalf("AddReferralBonus() error = %v", err)
	}

	if b.TotalCredits != 6 {
		t.Errorf("TotalCredits = %d, want 6", b.TotalCredits)
	}
	if b.ReferralCredits != 1 {
		t.Errorf("ReferralCredits = %d, want 1", b.ReferralCredits)
	}
}

func TestAddCredits(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Fresh user: row created with exactly n credits.
	b, err := db.AddCredits(ctx, "referred", 3)
	if err != nil {
		t.Fatalf("AddCredits() error = %v", err)
	}
	if b.TotalCredits != 3 {
		t.Errorf("TotalCredits = %d, want 3", b.TotalCredits)
	}

	// Existing user: atomic increment.
	b, err = db.AddCredits(ctx, "referred", 3)
	if err != nil {
		t.Fatalf("second AddCredits() error = %v", err)
	}
	if b.TotalCredits != 6 {
		t.Errorf("TotalCredits = %d, want 6", b.TotalCredits)
	}
}

func TestGetBalance_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetBalance(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetBalance() error = %v, want ErrNotFound", err)
	}
}
