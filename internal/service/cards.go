package service

import (
	"context"
	"fmt"

	"github.com/synapse-finance/synapse-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Credit cards
// ============================================================

func validateCardRequest(req *domain.CardRequest) error {
	if req.Name == "" {
		return &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if len(req.LastFourDigits) != 4 {
		return &domain.ErrValidation{Field: "lastFourDigits", Message: "must be exactly 4 digits"}
	}
	for _, r := range req.LastFourDigits {
		if r < '0' || r > '9' {
			return &domain.ErrValidation{Field: "lastFourDigits", Message: "must be exactly 4 digits"}
		}
	}
	if req.ClosingDay < 1 || req.ClosingDay > 31 {
		return &domain.ErrValidation{Field: "closingDay", Message: "must be between 1 and 31"}
	}
	if req.DueDay < 1 || req.DueDay > 31 {
		return &domain.ErrValidation{Field: "dueDay", Message: "must be between 1 and 31"}
	}
	return nil
}

func (s *LedgerService) CreateCard(ctx context.Context, userID string, req *domain.CardRequest) (*domain.Card, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.CreateCard")
	defer span.End()

	if err := validateCardRequest(req); err != nil {
		return nil, err
	}

	card := &domain.Card{
		Name:           req.Name,
		LastFourDigits: req.LastFourDigits,
		ClosingDay:     req.ClosingDay,
		DueDay:         req.DueDay,
		UserID:         userID,
	}

	created, err := s.store.CreateCard(ctx, card)
	if err != nil {
		s.logger.Error("failed to create card", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("card created",
		zap.String("user_id", userID),
		zap.String("card_id", created.ID),
	)
	return created, nil
}

func (s *LedgerService) GetCard(ctx context.Context, userID, cardID string) (*domain.Card, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.GetCard")
	defer span.End()

	return s.store.GetCard(ctx, userID, cardID)
}

func (s *LedgerService) UpdateCard(ctx context.Context, userID, cardID string, req *domain.CardRequest) (*domain.Card, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UpdateCard")
	defer span.End()

	if err := validateCardRequest(req); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":           req.Name,
		"lastFourDigits": req.LastFourDigits,
		"closingDay":     req.ClosingDay,
		"dueDay":         req.DueDay,
	}
	if err := s.store.UpdateCard(ctx, userID, cardID, updates); err != nil {
		return nil, err
	}
	return s.store.GetCard(ctx, userID, cardID)
}

// DeleteCard removes the card and, best-effort, its stored logo. A failed
// logo cleanup is logged but never blocks the delete.
func (s *LedgerService) DeleteCard(ctx context.Context, userID, cardID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.DeleteCard")
	defer span.End()

	card, err := s.store.GetCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCard(ctx, userID, cardID); err != nil {
		return err
	}

	if card.StoragePath != "" {
		if blobErr := s.blobs.Delete(ctx, card.StoragePath); blobErr != nil {
			s.metrics.IncrStoreError("storage")
			s.logger.Warn("failed to delete card logo blob",
				zap.String("card_id", cardID),
				zap.String("path", card.StoragePath),
				zap.Error(blobErr),
			)
		}
	}
	return nil
}

func (s *LedgerService) ListCards(ctx context.Context, userID string) ([]domain.Card, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.ListCards")
	defer span.End()

	return s.store.ListCards(ctx, userID)
}

// UploadCardLogo stores the logo image and points the card at it. A previous
// logo, if any, is removed after the card record is updated.
func (s *LedgerService) UploadCardLogo(ctx context.Context, userID, cardID, contentType string, data []byte) (*domain.CardLogoResponse, error) {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.UploadCardLogo")
	defer span.End()

	if len(data) == 0 {
		return nil, &domain.ErrValidation{Field: "logo", Message: "empty file"}
	}

	card, err := s.store.GetCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("card-logos/%s/%s", userID, uuid.New().String())
	url, err := s.blobs.Upload(ctx, path, contentType, data)
	if err != nil {
		s.metrics.IncrStoreError("storage")
		s.logger.Error("failed to upload card logo",
			zap.String("card_id", cardID),
			zap.Error(err),
		)
		return nil, err
	}

	updates := map[string]any{
		"logoUrl":     url,
		"storagePath": path,
	}
	if err := s.store.UpdateCard(ctx, userID, cardID, updates); err != nil {
		// Orphaned blob; remove it so the bucket does not accumulate garbage.
		if blobErr := s.blobs.Delete(ctx, path); blobErr != nil {
			s.logger.Warn("failed to clean up orphaned logo blob", zap.String("path", path), zap.Error(blobErr))
		}
		return nil, err
	}

	if card.StoragePath != "" && card.StoragePath != path {
		if blobErr := s.blobs.Delete(ctx, card.StoragePath); blobErr != nil {
			s.logger.Warn("failed to delete previous logo blob",
				zap.String("path", card.StoragePath),
				zap.Error(blobErr),
			)
		}
	}

	return &domain.CardLogoResponse{LogoURL: url, StoragePath: path}, nil
}

// RemoveCardLogo detaches and deletes the card's logo. A card with no logo is
// a no-op.
func (s *LedgerService) RemoveCardLogo(ctx context.Context, userID, cardID string) error {
	ctx, span := ledgerTracer.Start(ctx, "LedgerService.RemoveCardLogo")
	defer span.End()

	card, err := s.store.GetCard(ctx, userID, cardID)
	if err != nil {
		return err
	}
	if card.StoragePath == "" {
		return nil
	}

	updates := map[string]any{
		"logoUrl":     "",
		"storagePath": "",
	}
	if err := s.store.UpdateCard(ctx, userID, cardID, updates); err != nil {
		return err
	}

	if blobErr := s.blobs.Delete(ctx, card.StoragePath); blobErr != nil {
		s.metrics.IncrStoreError("storage")
		s.logger.Warn("failed to delete card logo blob",
			zap.String("card_id", cardID),
			zap.String("path", card.StoragePath),
			zap.Error(blobErr),
		)
	}
	return nil
}
