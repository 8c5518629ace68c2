package service

import (
	"context"
	"sort"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"golang.org/x/sync/errgroup"
)

// ============================================================
// Dashboard summary
// ============================================================

// GetMonthlySummary aggregates the dashboard numbers for one month. The four
// store reads are independent, so they run concurrently.
func (s *LedgerService) GetMonthlySummary(ctx context.Context, userID, month string) (*domain.MonthlySummary, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetMonthlySummary")
	defer span.End()

	monthStart, err := s.resolveMonth(month)
	if err != nil {
		return nil, err
	}
	monthLabel := monthStart.Format(monthLayout)

	var (
		expenses []domain.Expense
		incomes  []domain.Income
		cards    []domain.Card
		bills    []domain.Bill
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpensesByMonth(gctx, userID, monthStart)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.store.ListIncomesByMonth(gctx, userID, monthStart)
		return err
	})
	g.Go(func() error {
		var err error
		cards, err = s.store.ListCards(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = s.store.ListBills(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.MonthlySummary{
		Month:        monthLabel,
		ExpenseCount: len(expenses),
	}

	cardNames := make(map[string]string, len(cards))
	for _, c := range cards {
		cardNames[c.ID] = c.Name
	}

	byCategory := make(map[string]float64)
	byCard := make(map[string]float64)
	expenseDescriptions := make(map[string]bool, len(expenses))

	for _, e := range expenses {
		summary.TotalExpenses += e.Amount
		expenseDescriptions[e.Description] = true
		if e.Category != "" {
			byCategory[e.Category] += e.Amount
		}
		if e.PaymentMethod == domain.PaymentCredit && e.CardID != "" {
			byCard[e.CardID] += e.Amount
		}
	}
	for _, in := range incomes {
		summary.TotalIncomes += in.Amount
	}
	summary.Balance = summary.TotalIncomes - summary.TotalExpenses

	for cat, total := range byCategory {
		summary.ByCategory = append(summary.ByCategory, domain.CategoryTotal{Category: cat, Total: total})
	}
	sort.Slice(summary.ByCategory, func(i, j int) bool {
		return summary.ByCategory[i].Total > summary.ByCategory[j].Total
	})

	for cardID, total := range byCard {
		summary.ByCard = append(summary.ByCard, domain.CardTotal{
			CardID:   cardID,
			CardName: cardNames[cardID],
			Total:    total,
		})
	}
	sort.Slice(summary.ByCard, func(i, j int) bool {
		return summary.ByCard[i].Total > summary.ByCard[j].Total
	})

	// A bill counts as pending while no expense this month carries its
	// description. Generated and manually paid bills both clear it.
	for _, b := range bills {
		if b.IsActive && !expenseDescriptions[b.Description] {
			summary.PendingBills++
		}
	}

	return summary, nil
}
