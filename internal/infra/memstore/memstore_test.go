package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
)

func TestCommitGeneratedExpenses_AdvancesMarker(t *testing.T) {
	s := New()
	ctx := context.Background()

	expenses := []domain.Expense{
		{Amount: 120, Description: "Internet", UserID: "user-1", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	if err := s.CommitGeneratedExpenses(ctx, "user-1", "", "2024-03", expenses); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	marker, err := s.GetGenerationMarker(ctx, "user-1")
	if err != nil {
		t.Fatalf("get marker: %v", err)
	}
	if marker.LastBillsGeneratedMonth != "2024-03" {
		t.Errorf("expected marker 2024-03, got %q", marker.LastBillsGeneratedMonth)
	}

	listed, err := s.ListExpensesByMonth(ctx, "user-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 generated expense, got %d", len(listed))
	}
}

func TestCommitGeneratedExpenses_ConflictWritesNothing(t *testing.T) {
	s := New()
	ctx := context.Background()

	// First session wins the month.
	if err := s.CommitGeneratedExpenses(ctx, "user-1", "", "2024-03", nil); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}

	// Second session read the marker before the first committed, so it
	// still carries prevMonth "".
	expenses := []domain.Expense{
		{Amount: 99, Description: "Rent", UserID: "user-1", Date: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
	}
	err := s.CommitGeneratedExpenses(ctx, "user-1", "", "2024-03", expenses)
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	listed, err := s.ListExpensesByMonth(ctx, "user-1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("conflicting commit must write nothing, got %d expenses", len(listed))
	}
}

func TestCommitGeneratedExpenses_MarkerIsPerUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CommitGeneratedExpenses(ctx, "user-1", "", "2024-03", nil); err != nil {
		t.Fatalf("user-1 commit: %v", err)
	}
	if err := s.CommitGeneratedExpenses(ctx, "user-2", "", "2024-03", nil); err != nil {
		t.Fatalf("user-2 commit must not see user-1 marker: %v", err)
	}
}

func TestDeleteExpensesBatch_IgnoresOtherUsers(t *testing.T) {
	s := New()
	ctx := context.Background()

	mine, _ := s.CreateExpense(ctx, &domain.Expense{Amount: 10, UserID: "user-1", Date: time.Now().UTC()})
	theirs, _ := s.CreateExpense(ctx, &domain.Expense{Amount: 20, UserID: "user-2", Date: time.Now().UTC()})

	if err := s.DeleteExpensesBatch(ctx, "user-1", []string{mine.ID, theirs.ID}); err != nil {
		t.Fatalf("batch delete: %v", err)
	}

	if _, err := s.GetExpense(ctx, "user-1", mine.ID); err == nil {
		t.Error("own expense should be deleted")
	}
	if _, err := s.GetExpense(ctx, "user-2", theirs.ID); err != nil {
		t.Errorf("other user's expense must survive: %v", err)
	}
}

func TestListExpensesByInstallment_OrderedByNumber(t *testing.T) {
	s := New()
	ctx := context.Background()

	batch := []domain.Expense{
		{UserID: "user-1", IsInstallment: true, InstallmentID: "grp-1", InstallmentNumber: 3, Date: time.Now().UTC()},
		{UserID: "user-1", IsInstallment: true, InstallmentID: "grp-1", InstallmentNumber: 1, Date: time.Now().UTC()},
		{UserID: "user-1", IsInstallment: true, InstallmentID: "grp-1", InstallmentNumber: 2, Date: time.Now().UTC()},
	}
	if err := s.CreateExpensesBatch(ctx, batch); err != nil {
		t.Fatalf("batch create: %v", err)
	}

	got, err := s.ListExpensesByInstallment(ctx, "user-1", "grp-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(got))
	}
	for i, e := range got {
		if e.InstallmentNumber != i+1 {
			t.Errorf("fragment %d out of order: number %d", i, e.InstallmentNumber)
		}
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, &domain.User{Email: "a@b.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := s.CreateUser(ctx, &domain.User{Email: "a@b.com", PasswordHash: "y"})
	var conflict *domain.ErrConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestRevokeAllRefreshTokens(t *testing.T) {
	s := New()
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	_ = s.StoreRefreshToken(ctx, "user-1", "hash-1", exp)
	_ = s.StoreRefreshToken(ctx, "user-1", "hash-2", exp)
	_ = s.StoreRefreshToken(ctx, "user-2", "hash-3", exp)

	if err := s.RevokeAllRefreshTokens(ctx, "user-1"); err != nil {
		t.Fatalf("revoke all: %v", err)
	}

	for _, h := range []string{"hash-1", "hash-2"} {
		rt, err := s.GetRefreshToken(ctx, h)
		if err != nil {
			t.Fatalf("get %s: %v", h, err)
		}
		if !rt.Revoked {
			t.Errorf("token %s should be revoked", h)
		}
	}
	rt, err := s.GetRefreshToken(ctx, "hash-3")
	if err != nil {
		t.Fatalf("get hash-3: %v", err)
	}
	if rt.Revoked {
		t.Error("other user's token must stay valid")
	}
}
