package service

import (
	"context"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Incomes
// ============================================================

func validateIncomeRequest(req *domain.IncomeRequest) (time.Time, error) {
	if req.Amount <= 0 {
		return time.Time{}, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.Source == "" {
		return time.Time{}, &domain.ErrValidation{Field: "source", Message: "required"}
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "date", Message: "invalid format, use YYYY-MM-DD"}
	}
	return date, nil
}

func (s *LedgerService) CreateIncome(ctx context.Context, userID string, req *domain.IncomeRequest) (*domain.Income, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateIncome")
	defer span.End()

	date, err := validateIncomeRequest(req)
	if err != nil {
		return nil, err
	}

	income := &domain.Income{
		Amount: req.Amount,
		Source: req.Source,
		Payer:  req.Payer,
		UserID: userID,
		Date:   date,
	}

	created, err := s.store.CreateIncome(ctx, income)
	if err != nil {
		s.logger.Error("failed to create income", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *LedgerService) UpdateIncome(ctx context.Context, userID, incomeID string, req *domain.IncomeRequest) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateIncome")
	defer span.End()

	date, err := validateIncomeRequest(req)
	if err != nil {
		return err
	}

	return s.store.UpdateIncome(ctx, userID, incomeID, map[string]any{
		"amount": req.Amount,
		"source": req.Source,
		"payer":  req.Payer,
		"date":   date,
	})
}

func (s *LedgerService) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteIncome")
	defer span.End()

	return s.store.DeleteIncome(ctx, userID, incomeID)
}

func (s *LedgerService) ListIncomes(ctx context.Context, userID, month string) ([]domain.Income, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListIncomes")
	defer span.End()

	monthStart, err := s.resolveMonth(month)
	if err != nil {
		return nil, err
	}
	return s.store.ListIncomesByMonth(ctx, userID, monthStart)
}
