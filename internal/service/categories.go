package service

import (
	"context"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Categories
// ============================================================

func (s *LedgerService) CreateCategory(ctx context.Context, userID string, req *domain.CategoryRequest) (*domain.Category, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateCategory")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}

	category := &domain.Category{
		Name:   req.Name,
		UserID: userID,
		Color:  req.Color,
	}

	created, err := s.store.CreateCategory(ctx, category)
	if err != nil {
		s.logger.Error("failed to create category", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (s *LedgerService) UpdateCategory(ctx context.Context, userID, categoryID string, req *domain.CategoryRequest) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateCategory")
	defer span.End()

	if req.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}

	return s.store.UpdateCategory(ctx, userID, categoryID, map[string]any{
		"name":  req.Name,
		"color": req.Color,
	})
}

// DeleteCategory removes the category only. Expenses referencing it by name
// keep the now-dangling name; that is accepted behavior.
func (s *LedgerService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteCategory")
	defer span.End()

	return s.store.DeleteCategory(ctx, userID, categoryID)
}

func (s *LedgerService) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListCategories")
	defer span.End()

	return s.store.ListCategories(ctx, userID)
}
