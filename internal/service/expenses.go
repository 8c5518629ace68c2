package service

import (
	"context"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ============================================================
// Expenses
// ============================================================

const dateLayout = "2006-01-02"

func validPaymentMethod(method string) bool {
	return method == domain.PaymentDebitPix || method == domain.PaymentCredit
}

func validateExpenseRequest(req *domain.ExpenseRequest) error {
	if req.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.Description == "" {
		return &domain.ErrValidation{Field: "description", Message: "required"}
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return &domain.ErrValidation{Field: "paymentMethod", Message: "must be debit_pix or credit"}
	}
	if req.PaymentMethod == domain.PaymentCredit && req.CardID == "" {
		return &domain.ErrValidation{Field: "cardId", Message: "required for credit payments"}
	}
	if req.Date == "" {
		return &domain.ErrValidation{Field: "date", Message: "required"}
	}
	return nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, userID string, req *domain.ExpenseRequest) (*domain.Expense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateExpense")
	defer span.End()

	if err := validateExpenseRequest(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "invalid format, use YYYY-MM-DD"}
	}

	expense := &domain.Expense{
		Amount:        req.Amount,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		PaymentMethod: req.PaymentMethod,
		CardID:        req.CardID,
		UserID:        userID,
		Date:          date,
		Notes:         req.Notes,
	}

	created, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		s.logger.Error("failed to create expense", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.hub.Publish(userID, stream.Event{Type: stream.EventExpenseCreated, Data: created})

	s.logger.Info("expense created",
		zap.String("user_id", userID),
		zap.String("expense_id", created.ID),
		zap.Float64("amount", created.Amount),
	)
	return created, nil
}

func (s *LedgerService) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetExpense")
	defer span.End()

	return s.store.GetExpense(ctx, userID, expenseID)
}

func (s *LedgerService) UpdateExpense(ctx context.Context, userID, expenseID string, req *domain.ExpenseRequest) (*domain.Expense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateExpense")
	defer span.End()

	if err := validateExpenseRequest(req); err != nil {
		return nil, err
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "date", Message: "invalid format, use YYYY-MM-DD"}
	}

	updates := map[string]any{
		"amount":        req.Amount,
		"description":   req.Description,
		"category":      req.Category,
		"location":      req.Location,
		"paymentMethod": req.PaymentMethod,
		"cardId":        req.CardID,
		"date":          date,
		"notes":         req.Notes,
	}
	if err := s.store.UpdateExpense(ctx, userID, expenseID, updates); err != nil {
		return nil, err
	}

	updated, err := s.store.GetExpense(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(userID, stream.Event{Type: stream.EventExpenseUpdated, Data: updated})
	return updated, nil
}

// DeleteExpense removes an expense. Deleting any fragment of an installment
// group removes the entire group in one atomic batch, so a purchase never
// lingers half-deleted across months.
func (s *LedgerService) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteExpense")
	defer span.End()

	expense, err := s.store.GetExpense(ctx, userID, expenseID)
	if err != nil {
		return err
	}

	if !expense.IsInstallment || expense.InstallmentID == "" {
		if err := s.store.DeleteExpense(ctx, userID, expenseID); err != nil {
			return err
		}
		s.hub.Publish(userID, stream.Event{Type: stream.EventExpenseDeleted, Data: map[string]any{"id": expenseID}})
		return nil
	}

	fragments, err := s.store.ListExpensesByInstallment(ctx, userID, expense.InstallmentID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(fragments))
	for _, f := range fragments {
		ids = append(ids, f.ID)
	}
	if err := s.store.DeleteExpensesBatch(ctx, userID, ids); err != nil {
		s.logger.Error("failed to delete installment group",
			zap.String("user_id", userID),
			zap.String("installment_id", expense.InstallmentID),
			zap.Error(err),
		)
		return err
	}

	s.hub.Publish(userID, stream.Event{Type: stream.EventExpenseDeleted, Data: map[string]any{
		"id":            expenseID,
		"installmentId": expense.InstallmentID,
		"deleted":       len(ids),
	}})

	s.logger.Info("installment group deleted",
		zap.String("user_id", userID),
		zap.String("installment_id", expense.InstallmentID),
		zap.Int("fragments", len(ids)),
	)
	return nil
}

// DeleteInstallmentGroup removes every fragment sharing the installment id in
// one atomic batch. An unknown or already-deleted group is a no-op.
func (s *LedgerService) DeleteInstallmentGroup(ctx context.Context, userID, installmentID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteInstallmentGroup")
	defer span.End()

	fragments, err := s.store.ListExpensesByInstallment(ctx, userID, installmentID)
	if err != nil {
		return err
	}
	if len(fragments) == 0 {
		return nil
	}
	ids := make([]string, 0, len(fragments))
	for _, f := range fragments {
		ids = append(ids, f.ID)
	}
	if err := s.store.DeleteExpensesBatch(ctx, userID, ids); err != nil {
		return err
	}

	s.hub.Publish(userID, stream.Event{Type: stream.EventExpenseDeleted, Data: map[string]any{
		"installmentId": installmentID,
		"deleted":       len(ids),
	}})
	s.logger.Info("installment group deleted",
		zap.String("user_id", userID),
		zap.String("installment_id", installmentID),
		zap.Int("fragments", len(ids)),
	)
	return nil
}

// ListExpenses returns the user's expenses for the given "YYYY-MM" month,
// defaulting to the current month.
func (s *LedgerService) ListExpenses(ctx context.Context, userID, month string) ([]domain.Expense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListExpenses")
	defer span.End()

	monthStart, err := s.resolveMonth(month)
	if err != nil {
		return nil, err
	}
	return s.store.ListExpensesByMonth(ctx, userID, monthStart)
}

// resolveMonth parses "YYYY-MM", empty meaning the current month.
func (s *LedgerService) resolveMonth(month string) (time.Time, error) {
	if month == "" {
		month = s.currentMonth()
	}
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, &domain.ErrValidation{Field: "month", Message: "invalid format, use YYYY-MM"}
	}
	return t, nil
}

// ============================================================
// Installment splitter
// ============================================================

// CreateInstallments splits a credit purchase into monthly fragments sharing
// one installment id, written in a single atomic batch. Each fragment gets
// the total divided evenly and rounded to cents; the last fragment absorbs
// the rounding residual so the group always sums exactly to the total.
func (s *LedgerService) CreateInstallments(ctx context.Context, userID string, req *domain.InstallmentRequest) ([]domain.Expense, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateInstallments")
	defer span.End()

	if req.TotalAmount <= 0 {
		return nil, &domain.ErrValidation{Field: "totalAmount", Message: "must be positive"}
	}
	if req.TotalInstallments < 1 {
		return nil, &domain.ErrValidation{Field: "totalInstallments", Message: "must be at least 1"}
	}
	if req.Description == "" {
		return nil, &domain.ErrValidation{Field: "description", Message: "required"}
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, &domain.ErrValidation{Field: "paymentMethod", Message: "must be debit_pix or credit"}
	}
	purchaseDate, err := time.Parse(dateLayout, req.PurchaseDate)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "purchaseDate", Message: "invalid format, use YYYY-MM-DD"}
	}

	amounts := splitAmount(req.TotalAmount, req.TotalInstallments)
	installmentID := uuid.New().String()

	expenses := make([]domain.Expense, 0, req.TotalInstallments)
	for i := 0; i < req.TotalInstallments; i++ {
		pd := purchaseDate
		expenses = append(expenses, domain.Expense{
			Amount:            amounts[i],
			Description:       req.Description,
			Category:          req.Category,
			Location:          req.Location,
			PaymentMethod:     req.PaymentMethod,
			CardID:            req.CardID,
			UserID:            userID,
			Date:              addMonths(purchaseDate, i),
			Notes:             req.Notes,
			IsInstallment:     true,
			InstallmentNumber: i + 1,
			TotalInstallments: req.TotalInstallments,
			TotalAmount:       req.TotalAmount,
			InstallmentID:     installmentID,
			PurchaseDate:      &pd,
		})
	}

	if err := s.store.CreateExpensesBatch(ctx, expenses); err != nil {
		s.logger.Error("failed to create installment batch",
			zap.String("user_id", userID),
			zap.String("installment_id", installmentID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.AddInstallmentsSplit(len(expenses))
	s.hub.Publish(userID, stream.Event{Type: stream.EventExpenseCreated, Data: map[string]any{
		"installmentId": installmentID,
		"fragments":     len(expenses),
	}})

	s.logger.Info("installment purchase split",
		zap.String("user_id", userID),
		zap.String("installment_id", installmentID),
		zap.Float64("total_amount", req.TotalAmount),
		zap.Int("installments", req.TotalInstallments),
	)
	return expenses, nil
}

// addMonths shifts t forward by n calendar months, clamping the day to the
// target month's last day. A month-end purchase lands on the last day of each
// shorter month (Jan 31 → Feb 29 → Mar 31), never rolling into the month
// after; AddDate would silently do that.
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

// splitAmount divides total into n cent-rounded parts; the last part absorbs
// the residual so the parts always sum exactly to total.
func splitAmount(total float64, n int) []float64 {
	totalDec := decimal.NewFromFloat(total)
	per := totalDec.Div(decimal.NewFromInt(int64(n))).Round(2)

	amounts := make([]float64, n)
	sum := decimal.Zero
	for i := 0; i < n-1; i++ {
		amounts[i], _ = per.Float64()
		sum = sum.Add(per)
	}
	last, _ := totalDec.Sub(sum).Round(2).Float64()
	amounts[n-1] = last
	return amounts
}
