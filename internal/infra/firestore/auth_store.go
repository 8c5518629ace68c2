package firestore

import (
	"context"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
)

// ============================================================
// Auth store — users and refresh tokens
// ============================================================

func userFields(u *domain.User) map[string]value {
	return map[string]value{
		"email":        strVal(u.Email),
		"displayName":  strVal(u.DisplayName),
		"passwordHash": strVal(u.PasswordHash),
		"createdAt":    timeVal(u.CreatedAt),
	}
}

func docToUser(d *document) domain.User {
	return domain.User{
		ID:           d.id(),
		Email:        d.str("email"),
		DisplayName:  d.str("displayName"),
		PasswordHash: d.str("passwordHash"),
		CreatedAt:    d.timestamp("createdAt"),
	}
}

func (c *Client) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetUserByID")
	defer span.End()

	doc, err := c.getDocument(ctx, colUsers, userID, "")
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	u := docToUser(doc)
	return &u, nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetUserByEmail")
	defer span.End()

	docs, err := c.runQuery(ctx, colUsers, []fieldFilter{
		{Field: "email", Op: "EQUAL", Value: strVal(email)},
	}, nil, "")
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, &domain.ErrNotFound{Resource: "user", ID: email}
	}
	u := docToUser(&docs[0])
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Firestore.CreateUser")
	defer span.End()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if err := c.createDocument(ctx, colUsers, user.ID, userFields(user)); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) UpdateUserPassword(ctx context.Context, userID, passwordHash string) error {
	ctx, span := tracer.Start(ctx, "Firestore.UpdateUserPassword")
	defer span.End()

	return c.patchDocument(ctx, colUsers, userID, map[string]value{
		"passwordHash": strVal(passwordHash),
	})
}

// ------------------------------------------------------------
// Refresh tokens — stored keyed by their sha256 hash so that a
// presented token can be looked up with a single document get.
// ------------------------------------------------------------

func (c *Client) StoreRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	ctx, span := tracer.Start(ctx, "Firestore.StoreRefreshToken")
	defer span.End()

	return c.createDocument(ctx, colRefreshTokens, tokenHash, map[string]value{
		"userId":    strVal(userID),
		"tokenHash": strVal(tokenHash),
		"expiresAt": timeVal(expiresAt),
		"revoked":   boolVal(false),
		"createdAt": timeVal(time.Now().UTC()),
	})
}

func (c *Client) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	ctx, span := tracer.Start(ctx, "Firestore.GetRefreshToken")
	defer span.End()

	doc, err := c.getDocument(ctx, colRefreshTokens, tokenHash, "")
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, &domain.ErrNotFound{Resource: "refresh token", ID: tokenHash}
	}
	return &domain.RefreshToken{
		ID:        doc.id(),
		UserID:    doc.str("userId"),
		TokenHash: doc.str("tokenHash"),
		ExpiresAt: doc.timestamp("expiresAt"),
		Revoked:   doc.boolean("revoked"),
		CreatedAt: doc.timestamp("createdAt"),
	}, nil
}

func (c *Client) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	ctx, span := tracer.Start(ctx, "Firestore.RevokeRefreshToken")
	defer span.End()

	return c.patchDocument(ctx, colRefreshTokens, tokenHash, map[string]value{
		"revoked": boolVal(true),
	})
}

func (c *Client) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Firestore.RevokeAllRefreshTokens")
	defer span.End()

	docs, err := c.runQuery(ctx, colRefreshTokens, []fieldFilter{
		{Field: "userId", Op: "EQUAL", Value: strVal(userID)},
		{Field: "revoked", Op: "EQUAL", Value: boolVal(false)},
	}, nil, "")
	if err != nil {
		return err
	}

	writes := make([]write, 0, len(docs))
	for i := range docs {
		writes = append(writes, updateWrite(c.docName(colRefreshTokens, docs[i].id()), map[string]value{
			"userId":    strVal(docs[i].str("userId")),
			"tokenHash": strVal(docs[i].str("tokenHash")),
			"expiresAt": timeVal(docs[i].timestamp("expiresAt")),
			"revoked":   boolVal(true),
			"createdAt": timeVal(docs[i].timestamp("createdAt")),
		}))
	}
	if len(writes) == 0 {
		return nil
	}
	return c.commit(ctx, writes, "")
}
