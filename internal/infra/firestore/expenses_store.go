package firestore

import (
	"context"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Expenses store — CRUD, month queries, atomic batches
// ============================================================

func expenseFields(e *domain.Expense) map[string]value {
	fields := map[string]value{
		"amount":        doubleVal(e.Amount),
		"description":   strVal(e.Description),
		"category":      strVal(e.Category),
		"location":      strVal(e.Location),
		"paymentMethod": strVal(e.PaymentMethod),
		"cardId":        strVal(e.CardID),
		"userId":        strVal(e.UserID),
		"date":          timeVal(e.Date),
		"notes":         strVal(e.Notes),
	}
	if e.IsInstallment {
		fields["isInstallment"] = boolVal(true)
		fields["installmentNumber"] = intVal(e.InstallmentNumber)
		fields["totalInstallments"] = intVal(e.TotalInstallments)
		fields["totalAmount"] = doubleVal(e.TotalAmount)
		fields["installmentId"] = strVal(e.InstallmentID)
		if e.PurchaseDate != nil {
			fields["purchaseDate"] = timeVal(*e.PurchaseDate)
		}
	}
	return fields
}

func docToExpense(d *document) domain.Expense {
	e := domain.Expense{
		ID:            d.id(),
		Amount:        d.num("amount"),
		Description:   d.str("description"),
		Category:      d.str("category"),
		Location:      d.str("location"),
		PaymentMethod: d.str("paymentMethod"),
		CardID:        d.str("cardId"),
		UserID:        d.str("userId"),
		Date:          d.timestamp("date"),
		Notes:         d.str("notes"),
		IsInstallment: d.boolean("isInstallment"),
	}
	if e.IsInstallment {
		e.InstallmentNumber = d.integer("installmentNumber")
		e.TotalInstallments = d.integer("totalInstallments")
		e.TotalAmount = d.num("totalAmount")
		e.InstallmentID = d.str("installmentId")
		if pd := d.timestamp("purchaseDate"); !pd.IsZero() {
			e.PurchaseDate = &pd
		}
	}
	return e
}

func (c *Client) CreateExpense(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateExpense")
	defer span.End()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if err := c.createDocument(ctx, colExpenses, expense.ID, expenseFields(expense)); err != nil {
		return nil, err
	}
	return expense, nil
}

func (c *Client) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetExpense")
	defer span.End()

	doc, err := c.getDocument(ctx, colExpenses, expenseID, "")
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.str("userId") != userID {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	e := docToExpense(doc)
	return &e, nil
}

func (c *Client) UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateExpense")
	defer span.End()

	if _, err := c.GetExpense(ctx, userID, expenseID); err != nil {
		return err
	}
	return c.patchDocument(ctx, colExpenses, expenseID, encodeUpdates(updates))
}

func (c *Client) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteExpense")
	defer span.End()

	doc, err := c.getDocument(ctx, colExpenses, expenseID, "")
	if err != nil {
		return err
	}
	if doc == nil {
		return nil // already gone
	}
	if doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	return c.deleteDocument(ctx, colExpenses, expenseID)
}

func (c *Client) ListExpensesByMonth(ctx context.Context, userID string, month time.Time) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListExpensesByMonth")
	defer span.End()

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	docs, err := c.runQuery(ctx, colExpenses, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
		{Field: "date", Op: "GREATER_THAN_OR_EQUAL", Value: timeVal(start)},
		{Field: "date", Op: "LESS_THAN", Value: timeVal(end)},
	}, []orderSpec{{Field: "date", Desc: true}}, "")
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, 0, len(docs))
	for i := range docs {
		expenses = append(expenses, docToExpense(&docs[i]))
	}
	return expenses, nil
}

func (c *Client) ListExpensesByInstallment(ctx context.Context, userID, installmentID string) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListExpensesByInstallment")
	defer span.End()

	docs, err := c.runQuery(ctx, colExpenses, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
		{Field: "installmentId", Op: "EQUAL", Value: strVal(installmentID)},
	}, nil, "")
	if err != nil {
		return nil, err
	}

	expenses := make([]domain.Expense, 0, len(docs))
	for i := range docs {
		expenses = append(expenses, docToExpense(&docs[i]))
	}
	return expenses, nil
}

// CreateExpensesBatch writes all expenses in one atomic commit.
func (c *Client) CreateExpensesBatch(ctx context.Context, expenses []domain.Expense) error {
	ctx, span := tracer.Start(ctx, "Firestore.CreateExpensesBatch")
	defer span.End()

	writes := make([]write, 0, len(expenses))
	for i := range expenses {
		e := &expenses[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		writes = append(writes, updateWrite(c.docName(colExpenses, e.ID), expenseFields(e)))
	}
	return c.commit(ctx, writes, "")
}

// DeleteExpensesBatch removes all listed expenses in one atomic commit.
func (c *Client) DeleteExpensesBatch(ctx context.Context, userID string, expenseIDs []string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteExpensesBatch")
	defer span.End()

	writes := make([]write, 0, len(expenseIDs))
	for _, id := range expenseIDs {
		writes = append(writes, deleteWrite(c.docName(colExpenses, id)))
	}
	if len(writes) == 0 {
		return nil
	}
	return c.commit(ctx, writes, "")
}

// encodeUpdates converts a plain updates map into typed Firestore values.
func encodeUpdates(updates map[string]any) map[string]value {
	fields := make(map[string]value, len(updates))
	for k, v := range updates {
		switch t := v.(type) {
		case string:
			fields[k] = strVal(t)
		case float64:
			fields[k] = doubleVal(t)
		case int:
			fields[k] = intVal(t)
		case bool:
			fields[k] = boolVal(t)
		case time.Time:
			fields[k] = timeVal(t)
		}
	}
	return fields
}
