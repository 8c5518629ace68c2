package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxLogoSize caps card logo uploads at 2 MiB.
const maxLogoSize = 2 << 20

// ============================================================
// Cartões — /v1/cards
// ============================================================

func listCardsHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards")
		defer span.End()

		cards, err := svc.ListCards(ctx, UserIDFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if cards == nil {
			cards = []domain.Card{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
	}
}

func createCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards")
		defer span.End()

		var req domain.CardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		card, err := svc.CreateCard(ctx, UserIDFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, card)
	}
}

func getCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/cards/{cardId}")
		defer span.End()

		card, err := svc.GetCard(ctx, UserIDFromContext(ctx), chi.URLParam(r, "cardId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func updateCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/cards/{cardId}")
		defer span.End()

		var req domain.CardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		card, err := svc.UpdateCard(ctx, UserIDFromContext(ctx), chi.URLParam(r, "cardId"), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, card)
	}
}

func deleteCardHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/cards/{cardId}")
		defer span.End()

		if err := svc.DeleteCard(ctx, UserIDFromContext(ctx), chi.URLParam(r, "cardId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// uploadCardLogoHandler accepts a multipart form with a "logo" file field.
func uploadCardLogoHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/cards/{cardId}/logo")
		defer span.End()

		if err := r.ParseMultipartForm(maxLogoSize); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, header, err := r.FormFile("logo")
		if err != nil {
			writeError(w, http.StatusBadRequest, "logo file is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxLogoSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read logo file")
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		resp, err := svc.UploadCardLogo(ctx, UserIDFromContext(ctx), chi.URLParam(r, "cardId"), contentType, data)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func removeCardLogoHandler(svc *service.LedgerService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/cards/{cardId}/logo")
		defer span.End()

		if err := svc.RemoveCardLogo(ctx, UserIDFromContext(ctx), chi.URLParam(r, "cardId")); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
