package handler

import (
	"encoding/json"
	"net/http"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Despesas — /v1/expenses
// ============================================================

func listExpensesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		expenses, err := svc.ListExpenses(ctx, UserIDFromContext(ctx), r.URL.Query().Get("month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if expenses == nil {
			expenses = []domain.Expense{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
	}
}

func createExpenseHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses")
		defer span.End()

		var req domain.ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.CreateExpense(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, expense)
	}
}

func getExpenseHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses/{expenseId}")
		defer span.End()

		expense, err := svc.GetExpense(ctx, UserIDFromContext(ctx), chi.URLParam(r, "expenseId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func updateExpenseHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/expenses/{expenseId}")
		defer span.End()

		var req domain.ExpenseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expense, err := svc.UpdateExpense(ctx, UserIDFromContext(ctx), chi.URLParam(r, "expenseId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, expense)
	}
}

func deleteExpenseHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/{expenseId}")
		defer span.End()

		if err := svc.DeleteExpense(ctx, UserIDFromContext(ctx), chi.URLParam(r, "expenseId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ============================================================
// Geração mensal — POST /v1/expenses/generate
// ============================================================

func generateExpensesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses/generate")
		defer span.End()

		resp, err := svc.GenerateMonthlyExpenses(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Parcelamento — POST /v1/expenses/installments
// ============================================================

func createInstallmentsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/expenses/installments")
		defer span.End()

		var req domain.InstallmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		expenses, err := svc.CreateInstallments(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expenses": expenses})
	}
}

func deleteInstallmentGroupHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/expenses/installments/{installmentId}")
		defer span.End()

		if err := svc.DeleteInstallmentGroup(ctx, UserIDFromContext(ctx), chi.URLParam(r, "installmentId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
