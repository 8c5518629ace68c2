// Package memstore is the in-memory implementation of the ledger, auth and
// blob ports. It is used in local development and tests, and mirrors the
// Firestore adapter's semantics: batches are atomic under one lock, and the
// generation commit is conditional on the stored marker.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
)

// Store holds everything behind a single RWMutex.
type Store struct {
	mu sync.RWMutex

	expenses   map[string]*domain.Expense
	incomes    map[string]*domain.Income
	categories map[string]*domain.Category
	cards      map[string]*domain.Card
	bills      map[string]*domain.Bill
	markers    map[string]string // userID -> "YYYY-MM"

	users         map[string]*domain.User
	usersByEmail  map[string]string // email -> userID
	refreshTokens map[string]*domain.RefreshToken

	blobs map[string][]byte
}

func New() *Store {
	return &Store{
		expenses:      make(map[string]*domain.Expense),
		incomes:       make(map[string]*domain.Income),
		categories:    make(map[string]*domain.Category),
		cards:         make(map[string]*domain.Card),
		bills:         make(map[string]*domain.Bill),
		markers:       make(map[string]string),
		users:         make(map[string]*domain.User),
		usersByEmail:  make(map[string]string),
		refreshTokens: make(map[string]*domain.RefreshToken),
		blobs:         make(map[string][]byte),
	}
}

// ============================================================
// Expenses
// ============================================================

func (s *Store) CreateExpense(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	cp := *expense
	s.expenses[expense.ID] = &cp
	return expense, nil
}

func (s *Store) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	cp := *e
	return &cp, nil
}

func (s *Store) UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[expenseID]
	if !ok || e.UserID != userID {
		return &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	applyExpenseUpdates(e, updates)
	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[expenseID]
	if !ok {
		return nil
	}
	if e.UserID != userID {
		return &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	delete(s.expenses, expenseID)
	return nil
}

func (s *Store) ListExpensesByMonth(ctx context.Context, userID string, month time.Time) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var out []domain.Expense
	for _, e := range s.expenses {
		if e.UserID != userID {
			continue
		}
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) ListExpensesByInstallment(ctx context.Context, userID, installmentID string) ([]domain.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && e.InstallmentID == installmentID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (s *Store) CreateExpensesBatch(ctx context.Context, expenses []domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range expenses {
		if expenses[i].ID == "" {
			expenses[i].ID = uuid.New().String()
		}
	}
	// All IDs assigned before any insert: the batch lands whole.
	for i := range expenses {
		cp := expenses[i]
		s.expenses[cp.ID] = &cp
	}
	return nil
}

func (s *Store) DeleteExpensesBatch(ctx context.Context, userID string, expenseIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range expenseIDs {
		if e, ok := s.expenses[id]; ok && e.UserID == userID {
			delete(s.expenses, id)
		}
	}
	return nil
}

// ============================================================
// Incomes
// ============================================================

func (s *Store) CreateIncome(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	cp := *income
	s.incomes[income.ID] = &cp
	return income, nil
}

func (s *Store) UpdateIncome(ctx context.Context, userID, incomeID string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.incomes[incomeID]
	if !ok || in.UserID != userID {
		return &domain.ErrNotFound{Resource: "income", ID: incomeID}
	}
	applyIncomeUpdates(in, updates)
	return nil
}

func (s *Store) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	in, ok := s.incomes[incomeID]
	if !ok {
		return nil
	}
	if in.UserID != userID {
		return &domain.ErrNotFound{Resource: "income", ID: incomeID}
	}
	delete(s.incomes, incomeID)
	return nil
}

func (s *Store) ListIncomesByMonth(ctx context.Context, userID string, month time.Time) ([]domain.Income, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var out []domain.Income
	for _, in := range s.incomes {
		if in.UserID != userID {
			continue
		}
		if in.Date.Before(start) || !in.Date.Before(end) {
			continue
		}
		out = append(out, *in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// ============================================================
// Categories
// ============================================================

func (s *Store) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	cp := *category
	s.categories[category.ID] = &cp
	return category, nil
}

func (s *Store) UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[categoryID]
	if !ok || cat.UserID != userID {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	if v, ok := updates["name"].(string); ok {
		cat.Name = v
	}
	if v, ok := updates["color"].(string); ok {
		cat.Color = v
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, ok := s.categories[categoryID]
	if !ok {
		return nil
	}
	if cat.UserID != userID {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	delete(s.categories, categoryID)
	return nil
}

func (s *Store) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Category
	for _, cat := range s.categories {
		if cat.UserID == userID {
			out = append(out, *cat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ============================================================
// Cards
// ============================================================

func (s *Store) CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	cp := *card
	s.cards[card.ID] = &cp
	return card, nil
}

func (s *Store) GetCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[cardID]
	if !ok || card.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "card", ID: cardID}
	}
	cp := *card
	return &cp, nil
}

func (s *Store) UpdateCard(ctx context.Context, userID, cardID string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok || card.UserID != userID {
		return &domain.ErrNotFound{Resource: "card", ID: cardID}
	}
	applyCardUpdates(card, updates)
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, userID, cardID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	card, ok := s.cards[cardID]
	if !ok {
		return nil
	}
	if card.UserID != userID {
		return &domain.ErrNotFound{Resource: "card", ID: cardID}
	}
	delete(s.cards, cardID)
	return nil
}

func (s *Store) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Card
	for _, card := range s.cards {
		if card.UserID == userID {
			out = append(out, *card)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ============================================================
// Bills + generation marker
// ============================================================

func (s *Store) CreateBill(ctx context.Context, bill *domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	cp := *bill
	s.bills[bill.ID] = &cp
	return bill, nil
}

func (s *Store) GetBill(ctx context.Context, userID, billID string) (*domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bills[billID]
	if !ok || b.UserID != userID {
		return nil, &domain.ErrNotFound{Resource: "bill", ID: billID}
	}
	cp := *b
	return &cp, nil
}

func (s *Store) UpdateBill(ctx context.Context, userID, billID string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID]
	if !ok || b.UserID != userID {
		return &domain.ErrNotFound{Resource: "bill", ID: billID}
	}
	applyBillUpdates(b, updates)
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, userID, billID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bills[billID]
	if !ok {
		return nil
	}
	if b.UserID != userID {
		return &domain.ErrNotFound{Resource: "bill", ID: billID}
	}
	delete(s.bills, billID)
	return nil
}

func (s *Store) ListBills(ctx context.Context, userID string) ([]domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Bill
	for _, b := range s.bills {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDay < out[j].DueDay })
	return out, nil
}

func (s *Store) ListAutomaticBills(ctx context.Context, userID string) ([]domain.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Bill
	for _, b := range s.bills {
		if b.UserID == userID && b.IsActive && b.IsAutomatic {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDay < out[j].DueDay })
	return out, nil
}

func (s *Store) GetGenerationMarker(ctx context.Context, userID string) (*domain.GenerationMarker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &domain.GenerationMarker{
		UserID:                  userID,
		LastBillsGeneratedMonth: s.markers[userID],
	}, nil
}

func (s *Store) CommitGeneratedExpenses(ctx context.Context, userID, prevMonth, month string, expenses []domain.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.markers[userID] != prevMonth {
		return &domain.ErrConflict{Message: "generation marker moved: " + s.markers[userID]}
	}
	for i := range expenses {
		if expenses[i].ID == "" {
			expenses[i].ID = uuid.New().String()
		}
		cp := expenses[i]
		s.expenses[cp.ID] = &cp
	}
	s.markers[userID] = month
	return nil
}

// ============================================================
// Update helpers
// ============================================================

func applyExpenseUpdates(e *domain.Expense, updates map[string]any) {
	for k, v := range updates {
		switch k {
		case "amount":
			if f, ok := toFloat(v); ok {
				e.Amount = f
			}
		case "description":
			if sv, ok := v.(string); ok {
				e.Description = sv
			}
		case "category":
			if sv, ok := v.(string); ok {
				e.Category = sv
			}
		case "location":
			if sv, ok := v.(string); ok {
				e.Location = sv
			}
		case "paymentMethod":
			if sv, ok := v.(string); ok {
				e.PaymentMethod = sv
			}
		case "cardId":
			if sv, ok := v.(string); ok {
				e.CardID = sv
			}
		case "date":
			if t, ok := v.(time.Time); ok {
				e.Date = t
			}
		case "notes":
			if sv, ok := v.(string); ok {
				e.Notes = sv
			}
		}
	}
}

func applyIncomeUpdates(in *domain.Income, updates map[string]any) {
	for k, v := range updates {
		switch k {
		case "amount":
			if f, ok := toFloat(v); ok {
				in.Amount = f
			}
		case "source":
			if sv, ok := v.(string); ok {
				in.Source = sv
			}
		case "payer":
			if sv, ok := v.(string); ok {
				in.Payer = sv
			}
		case "date":
			if t, ok := v.(time.Time); ok {
				in.Date = t
			}
		}
	}
}

func applyCardUpdates(c *domain.Card, updates map[string]any) {
	for k, v := range updates {
		switch k {
		case "name":
			if sv, ok := v.(string); ok {
				c.Name = sv
			}
		case "lastFourDigits":
			if sv, ok := v.(string); ok {
				c.LastFourDigits = sv
			}
		case "closingDay":
			if n, ok := toInt(v); ok {
				c.ClosingDay = n
			}
		case "dueDay":
			if n, ok := toInt(v); ok {
				c.DueDay = n
			}
		case "logoUrl":
			if sv, ok := v.(string); ok {
				c.LogoURL = sv
			}
		case "storagePath":
			if sv, ok := v.(string); ok {
				c.StoragePath = sv
			}
		}
	}
}

func applyBillUpdates(b *domain.Bill, updates map[string]any) {
	for k, v := range updates {
		switch k {
		case "description":
			if sv, ok := v.(string); ok {
				b.Description = sv
			}
		case "amount":
			if f, ok := toFloat(v); ok {
				b.Amount = f
			}
		case "dueDay":
			if n, ok := toInt(v); ok {
				b.DueDay = n
			}
		case "category":
			if sv, ok := v.(string); ok {
				b.Category = sv
			}
		case "isActive":
			if bv, ok := v.(bool); ok {
				b.IsActive = bv
			}
		case "isAutomatic":
			if bv, ok := v.(bool); ok {
				b.IsAutomatic = bv
			}
		case "paymentMethod":
			if sv, ok := v.(string); ok {
				b.PaymentMethod = sv
			}
		case "cardId":
			if sv, ok := v.(string); ok {
				b.CardID = sv
			}
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	}
	return 0, false
}
