package handler

import (
	"net/http"

	"github.com/synapse-finance/synapse-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard — GET /v1/summary?month=YYYY-MM
// ============================================================

func summaryHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/summary")
		defer span.End()

		summary, err := svc.GetMonthlySummary(ctx, UserIDFromContext(ctx), r.URL.Query().Get("month"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}
