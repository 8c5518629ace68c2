package firestore

import (
	"context"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Incomes store
// ============================================================

func incomeFields(in *domain.Income) map[string]value {
	return map[string]value{
		"amount": doubleVal(in.Amount),
		"source": strVal(in.Source),
		"payer":  strVal(in.Payer),
		"userId": strVal(in.UserID),
		"date":   timeVal(in.Date),
	}
}

func docToIncome(d *document) domain.Income {
	return domain.Income{
		ID:     d.id(),
		Amount: d.num("amount"),
		Source: d.str("source"),
		Payer:  d.str("payer"),
		UserID: d.str("userId"),
		Date:   d.timestamp("date"),
	}
}

func (c *Client) CreateIncome(ctx context.Context, income *domain.Income) (*domain.Income, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateIncome")
	defer span.End()

	if income.ID == "" {
		income.ID = uuid.New().String()
	}
	if err := c.createDocument(ctx, colIncomes, income.ID, incomeFields(income)); err != nil {
		return nil, err
	}
	return income, nil
}

func (c *Client) UpdateIncome(ctx context.Context, userID, incomeID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateIncome")
	defer span.End()

	doc, err := c.getDocument(ctx, colIncomes, incomeID, "")
	if err != nil {
		return err
	}
	if doc == nil || doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "income", ID: incomeID}
	}
	return c.patchDocument(ctx, colIncomes, incomeID, encodeUpdates(updates))
}

func (c *Client) DeleteIncome(ctx context.Context, userID, incomeID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteIncome")
	defer span.End()

	doc, err := c.getDocument(ctx, colIncomes, incomeID, "")
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "income", ID: incomeID}
	}
	return c.deleteDocument(ctx, colIncomes, incomeID)
}

func (c *Client) ListIncomesByMonth(ctx context.Context, userID string, month time.Time) ([]domain.Income, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListIncomesByMonth")
	defer span.End()

	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	docs, err := c.runQuery(ctx, colIncomes, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
		{Field: "date", Op: "GREATER_THAN_OR_EQUAL", Value: timeVal(start)},
		{Field: "date", Op: "LESS_THAN", Value: timeVal(end)},
	}, []orderSpec{{Field: "date", Desc: true}}, "")
	if err != nil {
		return nil, err
	}

	incomes := make([]domain.Income, 0, len(docs))
	for i := range docs {
		incomes = append(incomes, docToIncome(&docs[i]))
	}
	return incomes, nil
}
