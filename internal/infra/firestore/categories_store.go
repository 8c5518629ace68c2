package firestore

import (
	"context"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Categories store
// ============================================================

func categoryFields(cat *domain.Category) map[string]value {
	return map[string]value{
		"name":   strVal(cat.Name),
		"userId": strVal(cat.UserID),
		"color":  strVal(cat.Color),
	}
}

func docToCategory(d *document) domain.Category {
	return domain.Category{
		ID:     d.id(),
		Name:   d.str("name"),
		UserID: d.str("userId"),
		Color:  d.str("color"),
	}
}

func (c *Client) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateCategory")
	defer span.End()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := c.createDocument(ctx, colCategories, category.ID, categoryFields(category)); err != nil {
		return nil, err
	}
	return category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateCategory")
	defer span.End()

	doc, err := c.getDocument(ctx, colCategories, categoryID, "")
	if err != nil {
		return err
	}
	if doc == nil || doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return c.patchDocument(ctx, colCategories, categoryID, encodeUpdates(updates))
}

func (c *Client) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteCategory")
	defer span.End()

	doc, err := c.getDocument(ctx, colCategories, categoryID, "")
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	// Expenses keep referencing the category by name; that dangling
	// reference is accepted, no cascade here.
	return c.deleteDocument(ctx, colCategories, categoryID)
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListCategories")
	defer span.End()

	docs, err := c.runQuery(ctx, colCategories, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
	}, []orderSpec{{Field: "name"}}, "")
	if err != nil {
		return nil, err
	}

	categories := make([]domain.Category, 0, len(docs))
	for i := range docs {
		categories = append(categories, docToCategory(&docs[i]))
	}
	return categories, nil
}
