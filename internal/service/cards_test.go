package service

import (
	"context"
	"errors"
	"testing"

	"github.com/synapse-finance/synapse-go/internal/domain"
)

func createTestCard(t *testing.T, svc *LedgerService, userID string) *domain.Card {
	t.Helper()
	card, err := svc.CreateCard(context.Background(), userID, &domain.CardRequest{
		Name:           "Visa Gold",
		LastFourDigits: "4242",
		ClosingDay:     25,
		DueDay:         5,
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	return card
}

func TestCardValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.CardRequest
	}{
		{"missing name", domain.CardRequest{LastFourDigits: "1234", ClosingDay: 1, DueDay: 10}},
		{"short digits", domain.CardRequest{Name: "X", LastFourDigits: "123", ClosingDay: 1, DueDay: 10}},
		{"non-numeric digits", domain.CardRequest{Name: "X", LastFourDigits: "12ab", ClosingDay: 1, DueDay: 10}},
		{"closing day out of range", domain.CardRequest{Name: "X", LastFourDigits: "1234", ClosingDay: 0, DueDay: 10}},
		{"due day out of range", domain.CardRequest{Name: "X", LastFourDigits: "1234", ClosingDay: 1, DueDay: 32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCard(ctx, "user-1", &tt.req)
			var validation *domain.ErrValidation
			if !errors.As(err, &validation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestUploadAndRemoveCardLogo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	card := createTestCard(t, svc, "user-1")

	resp, err := svc.UploadCardLogo(ctx, "user-1", card.ID, "image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatalf("upload logo: %v", err)
	}
	if resp.LogoURL == "" || resp.StoragePath == "" {
		t.Fatalf("expected logo url and path, got %+v", resp)
	}

	updated, err := svc.GetCard(ctx, "user-1", card.ID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if updated.LogoURL != resp.LogoURL || updated.StoragePath != resp.StoragePath {
		t.Errorf("card not pointing at uploaded logo: %+v", updated)
	}

	if err := svc.RemoveCardLogo(ctx, "user-1", card.ID); err != nil {
		t.Fatalf("remove logo: %v", err)
	}
	cleared, err := svc.GetCard(ctx, "user-1", card.ID)
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	if cleared.LogoURL != "" || cleared.StoragePath != "" {
		t.Errorf("expected logo fields cleared, got %+v", cleared)
	}

	// Removing again is a no-op.
	if err := svc.RemoveCardLogo(ctx, "user-1", card.ID); err != nil {
		t.Errorf("second remove: %v", err)
	}
}

func TestUploadCardLogo_EmptyFile(t *testing.T) {
	svc, _ := newTestService(t)

	card := createTestCard(t, svc, "user-1")

	_, err := svc.UploadCardLogo(context.Background(), "user-1", card.ID, "image/png", nil)
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected ErrValidation for empty file, got %v", err)
	}
}

func TestDeleteInstallmentGroupDirect(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateInstallments(ctx, "user-1", &domain.InstallmentRequest{
		Description:       "Notebook",
		PaymentMethod:     domain.PaymentCredit,
		CardID:            "card-1",
		TotalAmount:       300,
		TotalInstallments: 3,
		PurchaseDate:      "2024-03-10",
	})
	if err != nil {
		t.Fatalf("create installments: %v", err)
	}

	if err := svc.DeleteInstallmentGroup(ctx, "user-1", created[0].InstallmentID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	for _, e := range created {
		if _, err := svc.GetExpense(ctx, "user-1", e.ID); err == nil {
			t.Errorf("fragment %d still present after group delete", e.InstallmentNumber)
		}
	}

	// Unknown group is a no-op, not an error.
	if err := svc.DeleteInstallmentGroup(ctx, "user-1", "no-such-group"); err != nil {
		t.Errorf("unknown group: %v", err)
	}
}
