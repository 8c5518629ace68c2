// Package handler wires the HTTP surface: routing, auth middleware and the
// per-aggregate request handlers.
package handler

import (
	"net/http"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/infra/observability"
	"github.com/synapse-finance/synapse-go/internal/service"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract defined for the Synapse frontend.
func NewRouter(ledgerSvc *service.LedgerService, authSvc *service.AuthService, hub *stream.Hub, metrics *observability.Metrics, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.RequestMetricsMiddleware(metrics))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(ledgerSvc))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 🔐 Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			// Public routes
			r.Post("/register", authRegisterHandler(authSvc, logger))
			r.Post("/login", authLoginHandler(authSvc, logger))
			r.Post("/refresh", authRefreshHandler(authSvc, logger))

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(authSvc, logger))
				r.Post("/logout", authLogoutHandler(authSvc, logger))
				r.Put("/password", authChangePasswordHandler(authSvc, logger))
			})
		})

		// Everything below requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			// =============================================
			// 💸 Despesas
			// =============================================
			r.Get("/expenses", listExpensesHandler(ledgerSvc, logger))
			r.Post("/expenses", createExpenseHandler(ledgerSvc, logger))
			r.Post("/expenses/generate", generateExpensesHandler(ledgerSvc, logger))
			r.Post("/expenses/installments", createInstallmentsHandler(ledgerSvc, logger))
			r.Delete("/expenses/installments/{installmentId}", deleteInstallmentGroupHandler(ledgerSvc, logger))
			r.Get("/expenses/{expenseId}", getExpenseHandler(ledgerSvc, logger))
			r.Put("/expenses/{expenseId}", updateExpenseHandler(ledgerSvc, logger))
			r.Delete("/expenses/{expenseId}", deleteExpenseHandler(ledgerSvc, logger))

			// =============================================
			// 💰 Receitas
			// =============================================
			r.Get("/incomes", listIncomesHandler(ledgerSvc, logger))
			r.Post("/incomes", createIncomeHandler(ledgerSvc, logger))
			r.Put("/incomes/{incomeId}", updateIncomeHandler(ledgerSvc, logger))
			r.Delete("/incomes/{incomeId}", deleteIncomeHandler(ledgerSvc, logger))

			// =============================================
			// 🏷️ Categorias
			// =============================================
			r.Get("/categories", listCategoriesHandler(ledgerSvc, logger))
			r.Post("/categories", createCategoryHandler(ledgerSvc, logger))
			r.Put("/categories/{categoryId}", updateCategoryHandler(ledgerSvc, logger))
			r.Delete("/categories/{categoryId}", deleteCategoryHandler(ledgerSvc, logger))

			// =============================================
			// 💳 Cartões
			// =============================================
			r.Get("/cards", listCardsHandler(ledgerSvc, logger))
			r.Post("/cards", createCardHandler(ledgerSvc, logger))
			r.Get("/cards/{cardId}", getCardHandler(ledgerSvc, logger))
			r.Put("/cards/{cardId}", updateCardHandler(ledgerSvc, logger))
			r.Delete("/cards/{cardId}", deleteCardHandler(ledgerSvc, logger))
			r.Post("/cards/{cardId}/logo", uploadCardLogoHandler(ledgerSvc, logger))
			r.Delete("/cards/{cardId}/logo", removeCardLogoHandler(ledgerSvc, logger))

			// =============================================
			// 📅 Contas recorrentes
			// =============================================
			r.Get("/bills", listBillsHandler(ledgerSvc, logger))
			r.Post("/bills", createBillHandler(ledgerSvc, logger))
			r.Get("/bills/{billId}", getBillHandler(ledgerSvc, logger))
			r.Put("/bills/{billId}", updateBillHandler(ledgerSvc, logger))
			r.Delete("/bills/{billId}", deleteBillHandler(ledgerSvc, logger))
			r.Post("/bills/{billId}/pay", payBillHandler(ledgerSvc, logger))

			// =============================================
			// 📊 Dashboard
			// =============================================
			r.Get("/summary", summaryHandler(ledgerSvc, logger))

			// =============================================
			// 🔔 Eventos (SSE)
			// =============================================
			r.Get("/events", eventsHandler(hub, logger))

			// =============================================
			// 📈 Métricas
			// =============================================
			r.Get("/metrics/ledger", ledgerMetricsHandler(metrics))
		})
	})

	return r
}

// ============================================================
// Health & Metrics
// ============================================================

func healthzHandler(ledgerSvc *service.LedgerService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "synapse-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		_, err := ledgerSvc.ListCategories(ctx, "health-check")
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			status = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "document-store", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func ledgerMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetLedgerSnapshot())
	}
}
