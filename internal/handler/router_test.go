package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
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

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.New()
	hub := stream.NewHub()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()

	ledgerSvc := service.NewLedgerService(store, store, hub, cache.New[string](time.Hour), metrics, logger)
	authSvc := service.NewAuthService(store, "test-secret", 15*time.Minute, time.Hour, logger)

	return handler.NewRouter(ledgerSvc, authSvc, hub, metrics, []string{"*"}, logger)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
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
	return rec
}

func registerAndLogin(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Email:       "joao@example.com",
		DisplayName: "João",
		Password:    "super-secret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:    "joao@example.com",
		Password: "super-secret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var login domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return login.AccessToken
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/v1/expenses", "/v1/cards", "/v1/bills", "/v1/summary"} {
		rec := doJSON(t, router, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401 without token, got %d", path, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/expenses", "not-a-real-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/expenses", token, domain.ExpenseRequest{
		Amount:        42.50,
		Description:   "Mercado",
		Category:      "Alimentação",
		PaymentMethod: domain.PaymentDebitPix,
		Date:          "2024-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected expense id")
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/expenses?month=2024-03", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listed struct {
		Expenses []domain.Expense `json:"expenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(listed.Expenses))
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/expenses/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/expenses/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestCreateExpense_ValidationError(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/expenses", token, domain.ExpenseRequest{
		Amount:        -5,
		Description:   "negativo",
		PaymentMethod: domain.PaymentDebitPix,
		Date:          "2024-03-10",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateEndpointIsIdempotent(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/bills", token, domain.BillRequest{
		Description:   "Aluguel",
		Amount:        1500,
		DueDay:        5,
		Category:      "Moradia",
		IsActive:      true,
		IsAutomatic:   true,
		PaymentMethod: domain.PaymentDebitPix,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/expenses/generate", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var first domain.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode generate: %v", err)
	}
	if first.Generated != 1 {
		t.Errorf("first run generated %d, want 1", first.Generated)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/expenses/generate", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("second generate: expected 200, got %d", rec.Code)
	}
	var second domain.GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode generate: %v", err)
	}
	if second.Generated != 0 {
		t.Errorf("second run generated %d, want 0", second.Generated)
	}
}

func TestInstallmentsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/expenses/installments", token, domain.InstallmentRequest{
		Description:       "Notebook",
		Category:          "Eletrônicos",
		PaymentMethod:     domain.PaymentCredit,
		CardID:            "card-1",
		TotalAmount:       100,
		TotalInstallments: 3,
		PurchaseDate:      "2024-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Expenses []domain.Expense `json:"expenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Expenses) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(resp.Expenses))
	}
	var sum float64
	for _, e := range resp.Expenses {
		sum += e.Amount
	}
	if sum != 100 {
		t.Errorf("fragments sum to %.2f, want 100.00", sum)
	}

	// Deleting one fragment removes the whole group.
	rec = doJSON(t, router, http.MethodDelete, "/v1/expenses/"+resp.Expenses[1].ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete fragment: expected 204, got %d", rec.Code)
	}
	for _, month := range []string{"2024-03", "2024-04", "2024-05"} {
		rec = doJSON(t, router, http.MethodGet, "/v1/expenses?month="+month, token, nil)
		var listed struct {
			Expenses []domain.Expense `json:"expenses"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		if len(listed.Expenses) != 0 {
			t.Errorf("%s: expected no expenses after group delete, got %d", month, len(listed.Expenses))
		}
	}
}

func TestSummaryEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/incomes", token, domain.IncomeRequest{
		Amount: 4000,
		Source: "Salário",
		Date:   "2024-03-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income: expected 201, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/expenses", token, domain.ExpenseRequest{
		Amount:        500,
		Description:   "Mercado",
		Category:      "Alimentação",
		PaymentMethod: domain.PaymentDebitPix,
		Date:          "2024-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense: expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/summary?month=2024-03", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary domain.MonthlySummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Balance != 3500 {
		t.Errorf("balance %.2f, want 3500.00", summary.Balance)
	}
	if summary.ExpenseCount != 1 {
		t.Errorf("expense count %d, want 1", summary.ExpenseCount)
	}
}

func TestUsersCannotSeeEachOthersData(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", domain.RegisterRequest{
		Email:       "ana@example.com",
		DisplayName: "Ana",
		Password:    "another-secret",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register second user: expected 201, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/v1/auth/login", "", domain.LoginRequest{
		Email:    "ana@example.com",
		Password: "another-secret",
	})
	var login domain.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/expenses", token, domain.ExpenseRequest{
		Amount:        99,
		Description:   "Particular",
		PaymentMethod: domain.PaymentDebitPix,
		Date:          "2024-03-10",
	})
	var created domain.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode expense: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/expenses/"+created.ID, login.AccessToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/expenses?month=2024-03", login.AccessToken, nil)
	var listed struct {
		Expenses []domain.Expense `json:"expenses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Expenses) != 0 {
		t.Errorf("cross-user list: expected empty, got %d", len(listed.Expenses))
	}
}

func TestPayBillEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodPost, "/v1/bills", token, domain.BillRequest{
		Description: "Internet",
		Amount:      120,
		DueDay:      10,
		Category:    "Moradia",
		IsActive:    true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bill: expected 201, got %d", rec.Code)
	}
	var bill domain.Bill
	if err := json.Unmarshal(rec.Body.Bytes(), &bill); err != nil {
		t.Fatalf("decode bill: %v", err)
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/v1/bills/%s/pay", bill.ID), token, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("pay: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var expense domain.Expense
	if err := json.Unmarshal(rec.Body.Bytes(), &expense); err != nil {
		t.Fatalf("decode expense: %v", err)
	}
	if expense.Amount != 120 || expense.Description != "Internet" {
		t.Errorf("paid expense %+v, want amount 120 description Internet", expense)
	}
}

func TestLedgerMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := registerAndLogin(t, router)

	rec := doJSON(t, router, http.MethodGet, "/v1/metrics/ledger", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var metrics domain.LedgerMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &metrics); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if metrics.Period != "all_time" {
		t.Errorf("period %q, want all_time", metrics.Period)
	}

	// Register and login were counted before this snapshot was taken.
	if metrics.TotalRequests < 2 {
		t.Errorf("total requests %d, want at least 2", metrics.TotalRequests)
	}
	if metrics.ErrorRate != 0 {
		t.Errorf("error rate %v with no server errors, want 0", metrics.ErrorRate)
	}
}
