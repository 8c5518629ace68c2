package firestore

import (
	"context"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Bills store + generation marker
// ============================================================

func billFields(b *domain.Bill) map[string]value {
	fields := map[string]value{
		"description": strVal(b.Description),
		"amount":      doubleVal(b.Amount),
		"dueDay":      intVal(b.DueDay),
		"category":    strVal(b.Category),
		"isActive":    boolVal(b.IsActive),
		"userId":      strVal(b.UserID),
		"isAutomatic": boolVal(b.IsAutomatic),
	}
	if b.IsAutomatic {
		fields["paymentMethod"] = strVal(b.PaymentMethod)
		fields["cardId"] = strVal(b.CardID)
	}
	return fields
}

func docToBill(d *document) domain.Bill {
	return domain.Bill{
		ID:            d.id(),
		Description:   d.str("description"),
		Amount:        d.num("amount"),
		DueDay:        d.integer("dueDay"),
		Category:      d.str("category"),
		IsActive:      d.boolean("isActive"),
		UserID:        d.str("userId"),
		IsAutomatic:   d.boolean("isAutomatic"),
		PaymentMethod: d.str("paymentMethod"),
		CardID:        d.str("cardId"),
	}
}

func (c *Client) CreateBill(ctx context.Context, bill *domain.Bill) (*domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateBill")
	defer span.End()

	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if err := c.createDocument(ctx, colBills, bill.ID, billFields(bill)); err != nil {
		return nil, err
	}
	return bill, nil
}

func (c *Client) GetBill(ctx context.Context, userID, billID string) (*domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetBill")
	defer span.End()

	doc, err := c.getDocument(ctx, colBills, billID, "")
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.str("userId") != userID {
		return nil, &domain.ErrNotFound{Resource: "bill", ID: billID}
	}
	b := docToBill(doc)
	return &b, nil
}

func (c *Client) UpdateBill(ctx context.Context, userID, billID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateBill")
	defer span.End()

	if _, err := c.GetBill(ctx, userID, billID); err != nil {
		return err
	}
	return c.patchDocument(ctx, colBills, billID, encodeUpdates(updates))
}

func (c *Client) DeleteBill(ctx context.Context, userID, billID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteBill")
	defer span.End()

	doc, err := c.getDocument(ctx, colBills, billID, "")
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "bill", ID: billID}
	}
	return c.deleteDocument(ctx, colBills, billID)
}

func (c *Client) ListBills(ctx context.Context, userID string) ([]domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListBills")
	defer span.End()

	docs, err := c.runQuery(ctx, colBills, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
	}, []orderSpec{{Field: "dueDay"}}, "")
	if err != nil {
		return nil, err
	}

	bills := make([]domain.Bill, 0, len(docs))
	for i := range docs {
		bills = append(bills, docToBill(&docs[i]))
	}
	return bills, nil
}

func (c *Client) ListAutomaticBills(ctx context.Context, userID string) ([]domain.Bill, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListAutomaticBills")
	defer span.End()

	docs, err := c.runQuery(ctx, colBills, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
		{Field: "isActive", Op: "EQUAL", Value: boolVal(true)},
		{Field: "isAutomatic", Op: "EQUAL", Value: boolVal(true)},
	}, nil, "")
	if err != nil {
		return nil, err
	}

	bills := make([]domain.Bill, 0, len(docs))
	for i := range docs {
		bills = append(bills, docToBill(&docs[i]))
	}
	return bills, nil
}

// ============================================================
// Generation marker
// ============================================================

func (c *Client) GetGenerationMarker(ctx context.Context, userID string) (*domain.GenerationMarker, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetGenerationMarker")
	defer span.End()

	doc, err := c.getDocument(ctx, colUserMetadata, userID, "")
	if err != nil {
		return nil, err
	}
	marker := &domain.GenerationMarker{UserID: userID}
	if doc != nil {
		marker.LastBillsGeneratedMonth = doc.str("lastBillsGeneratedMonth")
	}
	return marker, nil
}

// CommitGeneratedExpenses runs the generation commit inside a read-write
// transaction. The marker is re-read inside the transaction and compared to
// prevMonth; Firestore's serializable transactions then guarantee that two
// sessions racing into the same untouched month cannot both commit — the
// loser's commit aborts and surfaces as ErrConflict.
func (c *Client) CommitGeneratedExpenses(ctx context.Context, userID, prevMonth, month string, expenses []domain.Expense) error {
	ctx, span := tracer.Start(ctx, "Firestore.CommitGeneratedExpenses")
	defer span.End()

	txn, err := c.beginTransaction(ctx)
	if err != nil {
		return err
	}

	doc, err := c.getDocument(ctx, colUserMetadata, userID, txn)
	if err != nil {
		if rbErr := c.rollback(ctx, txn); rbErr != nil {
			c.logger.Warn("firestore: rollback failed", zap.Error(rbErr))
		}
		return err
	}
	stored := ""
	if doc != nil {
		stored = doc.str("lastBillsGeneratedMonth")
	}
	if stored != prevMonth {
		if rbErr := c.rollback(ctx, txn); rbErr != nil {
			c.logger.Warn("firestore: rollback failed", zap.Error(rbErr))
		}
		return &domain.ErrConflict{Message: "generation marker moved: " + stored}
	}

	writes := make([]write, 0, len(expenses)+1)
	for i := range expenses {
		e := &expenses[i]
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		writes = append(writes, updateWrite(c.docName(colExpenses, e.ID), expenseFields(e)))
	}
	writes = append(writes, updateWrite(c.docName(colUserMetadata, userID), map[string]value{
		"userId":                  strVal(userID),
		"lastBillsGeneratedMonth": strVal(month),
	}))

	if err := c.commit(ctx, writes, txn); err != nil {
		// A 409 means another session committed first for this month.
		if statusOf(err) == 409 {
			return &domain.ErrConflict{Message: "generation committed concurrently"}
		}
		return err
	}
	return nil
}
