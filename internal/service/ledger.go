// Package service provides the business logic layer (use cases).
// LedgerService handles all finance operations: expenses, installments,
// monthly generation, incomes, categories, cards, bills and summaries.
package service

import (
	"time"

	"github.com/synapse-finance/synapse-go/internal/infra/observability"
	"github.com/synapse-finance/synapse-go/internal/port"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var ledgerTracer = otel.Tracer("service/ledger")

const monthLayout = "2006-01"

// LedgerService orchestrates all ledger operations via the document store.
type LedgerService struct {
	store     port.LedgerStore
	blobs     port.BlobStore
	hub       *stream.Hub
	gateCache port.Cache[string]
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewLedgerService creates a new ledger service. gateCache short-circuits the
// monthly generation gate for users whose month is already generated.
func NewLedgerService(store port.LedgerStore, blobs port.BlobStore, hub *stream.Hub, gateCache port.Cache[string], metrics *observability.Metrics, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		store:     store,
		blobs:     blobs,
		hub:       hub,
		gateCache: gateCache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// currentMonth returns the wall-clock month as "YYYY-MM" in UTC.
func (s *LedgerService) currentMonth() string {
	return s.now().UTC().Format(monthLayout)
}
