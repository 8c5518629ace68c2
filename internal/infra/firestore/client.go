// Package firestore implements the Synapse document store on top of the
// Google Firestore REST API (v1). It is the production persistence backend;
// the in-memory adapter in internal/infra/memstore mirrors its semantics for
// local development and tests.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/synapse-finance/synapse-go/internal/domain"
	"github.com/synapse-finance/synapse-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("firestore")

const baseURL = "https://firestore.googleapis.com/v1"

// Collection names, matching the original Firestore layout so existing data
// keeps working.
const (
	colExpenses      = "expenses"
	colIncomes       = "incomes"
	colCategories    = "categories"
	colCards         = "cards"
	colBills         = "bills"
	colUserMetadata  = "userMetadata"
	colUsers         = "users"
	colRefreshTokens = "refreshTokens"
)

// Client wraps HTTP calls to the Firestore REST API.
type Client struct {
	httpClient *http.Client
	projectID  string
	database   string
	token      string
	cb         *gobreaker.CircuitBreaker
	bulkhead   *resilience.Bulkhead
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a Firestore client.
func NewClient(httpClient *http.Client, projectID, database, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = 50
	}
	return &Client{
		httpClient: httpClient,
		projectID:  projectID,
		database:   database,
		token:      token,
		cb:         cb,
		bulkhead:   resilience.NewBulkhead(maxConcurrency),
		cfg:        cfg,
		logger:     logger,
	}
}

// root is the database resource prefix every document name hangs off.
func (c *Client) root() string {
	return fmt.Sprintf("projects/%s/databases/%s", c.projectID, c.database)
}

// docName builds the full resource name of a document.
func (c *Client) docName(collection, id string) string {
	return fmt.Sprintf("%s/documents/%s/%s", c.root(), collection, id)
}

// httpStatusError carries the status code so callers can classify.
type httpStatusError struct {
	status int
	body   string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("firestore returned status %d: %s", e.status, e.body)
}

// doJSON executes one authenticated JSON request. Network failures and 5xx
// responses go through the circuit breaker and retry with backoff; 4xx
// responses surface immediately (retrying a conflict or a bad request only
// makes things worse).
func (c *Client) doJSON(ctx context.Context, method, url string, reqBody, out any) error {
	var encoded []byte
	if reqBody != nil {
		var err error
		encoded, err = json.Marshal(reqBody)
		if err != nil {
			return err
		}
	}

	if err := c.bulkhead.Acquire(ctx); err != nil {
		return err
	}
	defer c.bulkhead.Release()

	var respBody []byte
	var statusErr *httpStatusError

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var body io.Reader
			if encoded != nil {
				body = bytes.NewReader(encoded)
			}
			req, err := http.NewRequestWithContext(ctx, method, url, body)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				c.logger.Error("firestore: request failed",
					zap.String("method", method),
					zap.String("url", url),
					zap.Error(err),
				)
				return err
			}
			defer resp.Body.Close()

			respBody, err = io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				statusErr = nil
				return nil
			}

			c.logger.Warn("firestore: non-2xx response",
				zap.String("method", method),
				zap.String("url", url),
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(respBody)),
			)
			statusErr = &httpStatusError{status: resp.StatusCode, body: string(respBody)}
			if resp.StatusCode >= 500 {
				return statusErr // retryable
			}
			return nil // 4xx: stop retrying, classified below
		})
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return &domain.ErrCircuitOpen{Service: "firestore"}
		}
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return &domain.ErrTimeout{Operation: fmt.Sprintf("firestore %s", method)}
		}
		return &domain.ErrExternalService{Service: "firestore", Err: err}
	}
	if statusErr != nil {
		return statusErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode firestore response: %w", err)
		}
	}
	return nil
}

// statusOf unwraps the HTTP status from an error, 0 when unknown.
func statusOf(err error) int {
	if se, ok := err.(*httpStatusError); ok {
		return se.status
	}
	return 0
}
