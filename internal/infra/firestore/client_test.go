package firestore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/infra/resilience"

	"go.uber.org/zap"
)

func newTestClient(httpClient *http.Client) *Client {
	return NewClient(
		httpClient,
		"test-project",
		"(default)",
		"test-token",
		resilience.NewCircuitBreaker("firestore-test"),
		resilience.Config{MaxRetries: 0, InitialBackoff: time.Millisecond},
		zap.NewNop(),
	)
}

func TestDoJSON_SlowStoreClassifiedAsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(&http.Client{Timeout: 20 * time.Millisecond})

	err := client.doJSON(context.Background(), http.MethodGet, server.URL, nil, nil)
	var timeout *domain.ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestDoJSON_ExpiredContextClassifiedAsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.doJSON(ctx, http.MethodGet, server.URL, nil, nil)
	var timeout *domain.ErrTimeout
	if !errors.As(err, &timeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestDoJSON_ServerErrorClassifiedAsExternal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.Client())

	err := client.doJSON(context.Background(), http.MethodGet, server.URL, nil, nil)
	var external *domain.ErrExternalService
	if !errors.As(err, &external) {
		t.Fatalf("expected ErrExternalService for 5xx, got %v", err)
	}
}
