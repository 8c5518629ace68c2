package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/synapse-finance/synapse-go/internal/stream"

	"go.uber.org/zap"
)

const sseKeepAlive = 15 * time.Second

// ============================================================
// Eventos — GET /v1/events (Server-Sent Events)
// ============================================================

// eventsHandler streams ledger events for the authenticated user. The client
// reconnects on its own; events published while disconnected are not replayed.
func eventsHandler(hub *stream.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		userID := UserIDFromContext(r.Context())
		events, cancel := hub.Subscribe(userID)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		logger.Debug("sse: client connected", zap.String("user_id", userID))

		keepAlive := time.NewTicker(sseKeepAlive)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				logger.Debug("sse: client disconnected", zap.String("user_id", userID))
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case event, open := <-events:
				if !open {
					return
				}
				payload, err := json.Marshal(event)
				if err != nil {
					logger.Warn("sse: failed to marshal event", zap.Error(err))
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
				flusher.Flush()
			}
		}
	}
}
