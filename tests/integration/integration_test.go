package integration_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/handler"
	"github.com/synapse-finance/synapse-go/internal/infra/cache"
	"github.com/synapse-finance/synapse-go/internal/infra/memstore"
	"github.com/synapse-finance/synapse-go/internal/infra/observability"
	"github.com/synapse-finance/synapse-go/internal/service"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"go.uber.org/zap"
)

// TestIntegration_FullFlow exercises the whole stack — router, auth middleware,
// services and the in-memory store — through one realistic user journey.
func TestIntegration_FullFlow(t *testing.T) {
	// --- Build the application exactly as main does, minus Firestore ---
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	store := memstore.New()
	hub := stream.NewHub()

	ledgerSvc := service.NewLedgerService(store, store, hub, cache.New[string](time.Hour), metrics, logger)
	authSvc := service.NewAuthService(store, "integration-secret", 15*time.Minute, time.Hour, logger)

	router := handler.NewRouter(ledgerSvc, authSvc, hub, metrics, []string{"*"}, logger)

	call := func(method, path, token string, body, out any) int {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if out != nil && rec.Body.Len() > 0 {
			if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
				t.Fatalf("%s %s: decode response: %v (%s)", method, path, err, rec.Body.String())
			}
		}
		return rec.Code
	}

	// --- 1. Register and log in ---
	if code := call(http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Email:       "lucas@example.com",
		DisplayName: "Lucas",
		Password:    "integration-pass",
	}, nil); code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", code)
	}

	var login domain.LoginResponse
	if code := call(http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:    "lucas@example.com",
		Password: "integration-pass",
	}, &login); code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", code)
	}
	token := login.AccessToken

	// --- 2. Set up a category and a card ---
	if code := call(http.MethodPost, "/v1/categories", token, domain.CategoryRequest{
		Name: "Moradia", Color: "#4caf50",
	}, nil); code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d", code)
	}

	var card domain.Card
	if code := call(http.MethodPost, "/v1/cards", token, domain.CardRequest{
		Name: "Visa Gold", LastFourDigits: "4242", ClosingDay: 25, DueDay: 5,
	}, &card); code != http.StatusCreated {
		t.Fatalf("create card: expected 201, got %d", code)
	}

	// --- 3. Recurring bill + monthly generation ---
	if code := call(http.MethodPost, "/v1/bills", token, domain.BillRequest{
		Description:   "Aluguel",
		Amount:        1800,
		DueDay:        5,
		Category:      "Moradia",
		IsActive:      true,
		IsAutomatic:   true,
		PaymentMethod: domain.PaymentDebitPix,
	}, nil); code != http.StatusCreated {
		t.Fatalf("create bill: expected 201, got %d", code)
	}

	var gen domain.GenerateResponse
	if code := call(http.MethodPost, "/v1/expenses/generate", token, nil, &gen); code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d", code)
	}
	if gen.Generated != 1 {
		t.Fatalf("generate: expected 1 expense, got %d", gen.Generated)
	}

	// Calling again in the same month is a no-op.
	if code := call(http.MethodPost, "/v1/expenses/generate", token, nil, &gen); code != http.StatusOK {
		t.Fatalf("second generate: expected 200, got %d", code)
	}
	if gen.Generated != 0 {
		t.Fatalf("second generate: expected 0, got %d", gen.Generated)
	}

	// --- 4. Installment purchase on the card ---
	var installments struct {
		Expenses []domain.Expense `json:"expenses"`
	}
	if code := call(http.MethodPost, "/v1/expenses/installments", token, domain.InstallmentRequest{
		Description:       "Sofá",
		Category:          "Moradia",
		PaymentMethod:     domain.PaymentCredit,
		CardID:            card.ID,
		TotalAmount:       2500,
		TotalInstallments: 10,
		PurchaseDate:      time.Now().UTC().Format("2006-01-02"),
	}, &installments); code != http.StatusCreated {
		t.Fatalf("installments: expected 201, got %d", code)
	}
	if len(installments.Expenses) != 10 {
		t.Fatalf("expected 10 fragments, got %d", len(installments.Expenses))
	}
	var sum float64
	for _, e := range installments.Expenses {
		sum += e.Amount
	}
	if sum != 2500 {
		t.Errorf("fragments sum to %.2f, want 2500.00", sum)
	}

	// --- 5. Income + dashboard summary for the current month ---
	if code := call(http.MethodPost, "/v1/incomes", token, domain.IncomeRequest{
		Amount: 7000,
		Source: "Salário",
		Date:   time.Now().UTC().Format("2006-01-02"),
	}, nil); code != http.StatusCreated {
		t.Fatalf("create income: expected 201, got %d", code)
	}

	var summary domain.MonthlySummary
	if code := call(http.MethodGet, "/v1/summary", token, nil, &summary); code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d", code)
	}
	if summary.TotalIncomes != 7000 {
		t.Errorf("total incomes %.2f, want 7000.00", summary.TotalIncomes)
	}
	// This month holds the generated rent plus the first installment fragment.
	wantExpenses := 1800.0 + installments.Expenses[0].Amount
	if summary.TotalExpenses != wantExpenses {
		t.Errorf("total expenses %.2f, want %.2f", summary.TotalExpenses, wantExpenses)
	}
	if len(summary.ByCard) != 1 || summary.ByCard[0].CardID != card.ID {
		t.Errorf("expected card aggregation for %s, got %+v", card.ID, summary.ByCard)
	}

	// --- 6. Token refresh rotates, logout revokes ---
	var refreshed domain.LoginResponse
	if code := call(http.MethodPost, "/v1/auth/refresh", "", domain.RefreshRequest{
		RefreshToken: login.RefreshToken,
	}, &refreshed); code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", code)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("refresh token must rotate")
	}

	if code := call(http.MethodPost, "/v1/auth/logout", refreshed.AccessToken, nil, nil); code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", code)
	}
	if code := call(http.MethodPost, "/v1/auth/refresh", "", domain.RefreshRequest{
		RefreshToken: refreshed.RefreshToken,
	}, nil); code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: expected 401, got %d", code)
	}
}
