package firestore

import (
	"context"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Cards store
// ============================================================

func cardFields(card *domain.Card) map[string]value {
	return map[string]value{
		"name":           strVal(card.Name),
		"lastFourDigits": strVal(card.LastFourDigits),
		"closingDay":     intVal(card.ClosingDay),
		"dueDay":         intVal(card.DueDay),
		"userId":         strVal(card.UserID),
		"logoUrl":        strVal(card.LogoURL),
		"storagePath":    strVal(card.StoragePath),
	}
}

func docToCard(d *document) domain.Card {
	return domain.Card{
		ID:             d.id(),
		Name:           d.str("name"),
		LastFourDigits: d.str("lastFourDigits"),
		ClosingDay:     d.integer("closingDay"),
		DueDay:         d.integer("dueDay"),
		UserID:         d.str("userId"),
		LogoURL:        d.str("logoUrl"),
		StoragePath:    d.str("storagePath"),
	}
}

func (c *Client) CreateCard(ctx context.Context, card *domain.Card) (*domain.Card, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateCard")
	defer span.End()

	if card.ID == "" {
		card.ID = uuid.New().String()
	}
	if err := c.createDocument(ctx, colCards, card.ID, cardFields(card)); err != nil {
		return nil, err
	}
	return card, nil
}

func (c *Client) GetCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetCard")
	defer span.End()

	doc, err := c.getDocument(ctx, colCards, cardID, "")
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.str("userId") != userID {
		return nil, &domain.ErrNotFound{Resource: "card", ID: cardID}
	}
	card := docToCard(doc)
	return &card, nil
}

func (c *Client) UpdateCard(ctx context.Context, userID, cardID string, updates map[string]any) error {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateCard")
	defer span.End()

	if _, err := c.GetCard(ctx, userID, cardID); err != nil {
		return err
	}
	return c.patchDocument(ctx, colCards, cardID, encodeUpdates(updates))
}

func (c *Client) DeleteCard(ctx context.Context, userID, cardID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.DeleteCard")
	defer span.End()

	doc, err := c.getDocument(ctx, colCards, cardID, "")
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if doc.str("userId") != userID {
		return &domain.ErrNotFound{Resource: "card", ID: cardID}
	}
	return c.deleteDocument(ctx, colCards, cardID)
}

func (c *Client) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	ctx, span := tracer.Start(ctx, "Firestore.ListCards")
	defer span.End()

	docs, err := c.runQuery(ctx, colCards, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
	}, []orderSpec{{Field: "name"}}, "")
	if err != nil {
		return nil, err
	}

	cards := make([]domain.Card, 0, len(docs))
	for i := range docs {
		cards = append(cards, docToCard(&docs[i]))
	}
	return cards, nil
}
