package port

import (
	"context"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
)

// LedgerStore defines all data operations for the finance ledger.
// Implemented by the Firestore adapter and the in-memory adapter.
//
// Batch methods are atomic: either every write in the batch lands or none
// do. CommitGeneratedExpenses is additionally conditional on the generation
// marker, which is what makes the monthly generator safe against two
// sessions racing into the same untouched month.
type LedgerStore interface {
	// Expenses
	CreateExpense(ctx context.Context, expense *domain.Expense) (*domain.Expense, error)
	GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) error
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	ListExpensesByMonth(ctx context.Context, userID string, month time.Time) ([]domain.Expense, error)
	ListExpensesByInstallment(ctx context.Context, userID, installmentID string) ([]domain.Expense, error)
	CreateExpensesBatch(ctx context.Context, expenses []domain.Expense) error
	DeleteExpensesBatch(ctx context.Context, userID string, expenseIDs []string) error

	// Incomes
	CreateIncome(ctx context.Context, income *domain.Income) (*domain.Income, error)
	UpdateIncome(ctx context.Context, userID, incomeID string, updates map[string]any) error
	DeleteIncome(ctx context.Context, userID, incomeID string) error
	ListIncomesByMonth(ctx context.Context, userID string, month time.Time) ([]domain.Income, error)

	// Categories
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) error
	DeleteCategory(ctx context.Context, userID, categoryID string) error
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)

	// Cards
	CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error)
	GetCard(ctx context.Context, userID, cardID string) (*domain.Card, error)
	UpdateCard(ctx context.Context, userID, cardID string, updates map[string]any) error
	DeleteCard(ctx context.Context, userID, cardID string) error
	ListCards(ctx context.Context, userID string) ([]domain.Card, error)

	// Bills
	CreateBill(ctx context.Context, bill *domain.Bill) (*domain.Bill, error)
	GetBill(ctx context.Context, userID, billID string) (*domain.Bill, error)
	UpdateBill(ctx context.Context, userID, billID string, updates map[string]any) error
	DeleteBill(ctx context.Context, userID, billID string) error
	ListBills(ctx context.Context, userID string) ([]domain.Bill, error)
	ListAutomaticBills(ctx context.Context, userID string) ([]domain.Bill, error)

	// Generation marker
	GetGenerationMarker(ctx context.Context, userID string) (*domain.GenerationMarker, error)

	// CommitGeneratedExpenses atomically writes the generated expenses and
	// advances the marker to month, but only while the stored marker still
	// equals prevMonth ("" when the user has no marker yet). A lost race
	// surfaces as *domain.ErrConflict and writes nothing.
	CommitGeneratedExpenses(ctx context.Context, userID, prevMonth, month string, expenses []domain.Expense) error
}
