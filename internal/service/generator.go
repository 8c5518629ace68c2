package service

import (
	"context"
	"errors"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"go.uber.org/zap"
)

// ============================================================
// Monthly generator
// ============================================================

// GenerateMonthlyExpenses materializes the user's active automatic bills as
// expenses for the current month, at most once per user and month. The gate
// has three layers: a TTL cache, the stored marker, and the conditional
// commit that re-checks the marker transactionally. Losing the commit race
// is indistinguishable from arriving second: both report zero generated.
func (s *LedgerService) GenerateMonthlyExpenses(ctx context.Context, userID string) (*domain.GenerateResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GenerateMonthlyExpenses")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("generate_expenses", time.Since(start)) }()

	month := s.currentMonth()

	if cached, ok := s.gateCache.Get(userID); ok && cached == month {
		s.metrics.IncrCacheHit("generation-gate")
		return &domain.GenerateResponse{Generated: 0, Month: month}, nil
	}
	s.metrics.IncrCacheMiss("generation-gate")

	marker, err := s.store.GetGenerationMarker(ctx, userID)
	if err != nil {
		return nil, err
	}
	if marker.LastBillsGeneratedMonth == month {
		s.gateCache.Set(userID, month)
		return &domain.GenerateResponse{Generated: 0, Month: month}, nil
	}

	bills, err := s.store.ListAutomaticBills(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthStart, _ := time.Parse(monthLayout, month)
	expenses := make([]domain.Expense, 0, len(bills))
	for _, bill := range bills {
		expenses = append(expenses, expenseFromBill(&bill, monthStart))
	}

	// The marker advances even when there are no automatic bills, so the
	// gate stays closed for the rest of the month either way.
	err = s.store.CommitGeneratedExpenses(ctx, userID, marker.LastBillsGeneratedMonth, month, expenses)
	if err != nil {
		var conflict *domain.ErrConflict
		if errors.As(err, &conflict) {
			// Another session generated this month first.
			s.logger.Info("generation lost race, month already generated",
				zap.String("user_id", userID),
				zap.String("month", month),
			)
			s.gateCache.Set(userID, month)
			return &domain.GenerateResponse{Generated: 0, Month: month}, nil
		}
		s.logger.Error("failed to commit generated expenses",
			zap.String("user_id", userID),
			zap.String("month", month),
			zap.Error(err),
		)
		return nil, err
	}

	s.gateCache.Set(userID, month)
	s.metrics.AddExpensesGenerated(len(expenses))
	if len(expenses) > 0 {
		s.hub.Publish(userID, stream.Event{Type: stream.EventExpensesGenerated, Data: map[string]any{
			"month":     month,
			"generated": len(expenses),
		}})
	}

	s.logger.Info("monthly expenses generated",
		zap.String("user_id", userID),
		zap.String("month", month),
		zap.Int("generated", len(expenses)),
	)
	return &domain.GenerateResponse{Generated: len(expenses), Month: month}, nil
}

// expenseFromBill builds the expense an automatic bill materializes for the
// given month. A dueDay past the month's last day rolls into the next month
// via time.Date normalization; that matches the historical behavior users
// already rely on.
func expenseFromBill(bill *domain.Bill, monthStart time.Time) domain.Expense {
	due := time.Date(monthStart.Year(), monthStart.Month(), bill.DueDay, 0, 0, 0, 0, time.UTC)
	return domain.Expense{
		Amount:        bill.Amount,
		Description:   bill.Description,
		Category:      bill.Category,
		Location:      "Despesa Automática",
		PaymentMethod: bill.PaymentMethod,
		CardID:        bill.CardID,
		UserID:        bill.UserID,
		Date:          due,
		Notes:         "Gerado automaticamente a partir da conta recorrente.",
	}
}
