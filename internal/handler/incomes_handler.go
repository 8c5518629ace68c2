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
// Receitas — /v1/incomes
// ============================================================

func listIncomesHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/incomes")
		defer span.End()

		incomes, err := svc.ListIncomes(ctx, UserIDFromContext(ctx), r.URL.Query().Get("month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if incomes == nil {
			incomes = []domain.Income{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"incomes": incomes})
	}
}

func createIncomeHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/incomes")
		defer span.End()

		var req domain.IncomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		income, err := svc.CreateIncome(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, income)
	}
}

func updateIncomeHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/incomes/{incomeId}")
		defer span.End()

		var req domain.IncomeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		incomeID := chi.URLParam(r, "incomeId")
		if err := svc.UpdateIncome(ctx, UserIDFromContext(ctx), incomeID, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, domain.SuccessResponse{Message: "Receita atualizada", ID: incomeID})
	}
}

func deleteIncomeHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/incomes/{incomeId}")
		defer span.End()

		if err := svc.DeleteIncome(ctx, UserIDFromContext(ctx), chi.URLParam(r, "incomeId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
