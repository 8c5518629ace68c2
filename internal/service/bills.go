package service

import (
	"context"
	"fmt"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"go.uber.org/zap"
)

// ============================================================
// Recurring bills
// ============================================================

func validateBillRequest(req *domain.BillRequest) error {
	if req.Description == "" {
		return &domain.ErrValidation{Field: "description", Message: "required"}
	}
	if req.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		return &domain.ErrValidation{Field: "dueDay", Message: "must be between 1 and 31"}
	}
	if req.IsAutomatic {
		if !validPaymentMethod(req.PaymentMethod) {
			return &domain.ErrValidation{Field: "paymentMethod", Message: "required for automatic bills, must be debit_pix or credit"}
		}
		if req.PaymentMethod == domain.PaymentCredit && req.CardID == "" {
			return &domain.ErrValidation{Field: "cardId", Message: "required for credit payments"}
		}
	}
	return nil
}

func (s *LedgerService) CreateBill(ctx context.Context, userID string, req *domain.BillRequest) (*domain.Bill, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateBill")
	defer span.End()

	if err := validateBillRequest(req); err != nil {
		return nil, err
	}

	bill := &domain.Bill{
		Description:   req.Description,
		Amount:        req.Amount,
		DueDay:        req.DueDay,
		Category:      req.Category,
		IsActive:      req.IsActive,
		UserID:        userID,
		IsAutomatic:   req.IsAutomatic,
		PaymentMethod: req.PaymentMethod,
		CardID:        req.CardID,
	}

	created, err := s.store.CreateBill(ctx, bill)
	if err != nil {
		s.logger.Error("failed to create bill", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("bill created",
		zap.String("user_id", userID),
		zap.String("bill_id", created.ID),
		zap.Bool("automatic", created.IsAutomatic),
	)
	return created, nil
}

func (s *LedgerService) GetBill(ctx context.Context, userID, billID string) (*domain.Bill, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetBill")
	defer span.End()

	return s.store.GetBill(ctx, userID, billID)
}

func (s *LedgerService) UpdateBill(ctx context.Context, userID, billID string, req *domain.BillRequest) (*domain.Bill, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateBill")
	defer span.End()

	if err := validateBillRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"description":   req.Description,
		"amount":        req.Amount,
		"dueDay":        req.DueDay,
		"category":      req.Category,
		"isActive":      req.IsActive,
		"isAutomatic":   req.IsAutomatic,
		"paymentMethod": req.PaymentMethod,
		"cardId":        req.CardID,
	}
	if err := s.store.UpdateBill(ctx, userID, billID, updates); err != nil {
		return nil, err
	}
	return s.store.GetBill(ctx, userID, billID)
}

func (s *LedgerService) DeleteBill(ctx context.Context, userID, billID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteBill")
	defer span.End()

	// Expenses already generated from this bill stay in the ledger.
	return s.store.DeleteBill(ctx, userID, billID)
}

func (s *LedgerService) ListBills(ctx context.Context, userID string) ([]domain.Bill, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListBills")
	defer span.End()

	return s.store.ListBills(ctx, userID)
}

// PayBill records an immediate expense for a bill, outside the monthly
// generator. Used for manual bills or paying an automatic bill early; it
// does not touch the generation marker.
func (s *LedgerService) PayBill(ctx context.Context, userID, billID string) (*domain.Expense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.PayBill")
	defer span.End()

	bill, err := s.store.GetBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	if !bill.IsActive {
		return nil, &domain.ErrValidation{Field: "isActive", Message: "cannot pay an inactive bill"}
	}

	paymentMethod := bill.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentDebitPix
	}

	// The payment is dated on the bill's due day in the current month, same
	// as the monthly generator would, so the ledger reads consistently.
	now := s.now().UTC()
	expense := &domain.Expense{
		Amount:        bill.Amount,
		Description:   bill.Description,
		Category:      bill.Category,
		Location:      "Pagamento de Conta",
		PaymentMethod: paymentMethod,
		CardID:        bill.CardID,
		UserID:        userID,
		Date:          time.Date(now.Year(), now.Month(), bill.DueDay, 0, 0, 0, 0, time.UTC),
		Notes:         fmt.Sprintf("Pagamento referente à conta %q.", bill.Description),
	}

	created, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		s.logger.Error("failed to pay bill",
			zap.String("user_id", userID),
			zap.String("bill_id", billID),
			zap.Error(err),
		)
		return nil, err
	}

	s.hub.Publish(userID, stream.Event{Type: stream.EventBillPaid, Data: map[string]any{
		"billId":    billID,
		"expenseId": created.ID,
	}})

	s.logger.Info("bill paid",
		zap.String("user_id", userID),
		zap.String("bill_id", billID),
		zap.String("expense_id", created.ID),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}
