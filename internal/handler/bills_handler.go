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
// Contas recorrentes — /v1/bills
// ============================================================

func listBillsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bills")
		defer span.End()

		bills, err := svc.ListBills(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if bills == nil {
			bills = []domain.Bill{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
	}
}

func createBillHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bills")
		defer span.End()

		var req domain.BillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		bill, err := svc.CreateBill(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, bill)
	}
}

func getBillHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/bills/{billId}")
		defer span.End()

		bill, err := svc.GetBill(ctx, UserIDFromContext(ctx), chi.URLParam(r, "billId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, bill)
	}
}

func updateBillHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/bills/{billId}")
		defer span.End()

		var req domain.BillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		bill, err := svc.UpdateBill(ctx, UserIDFromContext(ctx), chi.URLParam(r, "billId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, bill)
	}
}

func deleteBillHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/bills/{billId}")
		defer span.End()

		if err := svc.DeleteBill(ctx, UserIDFromContext(ctx), chi.URLParam(r, "billId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func payBillHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/bills/{billId}/pay")
		defer span.End()

		expense, err := svc.PayBill(ctx, UserIDFromContext(ctx), chi.URLParam(r, "billId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, expense)
	}
}
