package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/guriri-express/dispatch/internal/commission"
	jobmetrics "github.com/guriri-express/dispatch/internal/jobs"
	"github.com/guriri-express/dispatch/internal/reports"
)

// Corruption reasons reported on the dispatch_ledger_corrupt_orders gauge.
const (
	ReasonFeeTier = "fee_tier"
	ReasonAmount  = "amount"
	ReasonUnknown = "unknown"
)

// LedgerAuditJob maps stored orders through the commission engine and
// reports the rows it rejects. It only reads.
type LedgerAuditJob struct {
	Repo    reports.Repository
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// AuditResult summarises one audit run.
type AuditResult struct {
	From     time.Time
	To       time.Time
	Audited  int
	Corrupt  int
	ByReason map[string]int
}

// NewLedgerAuditJob initialises the ledger audit handler.
func NewLedgerAuditJob(repo reports.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerAuditJob {
	return &LedgerAuditJob{
		Repo:    repo,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the audit for an Asynq task.
func (j *LedgerAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Repo == nil {
		return errors.New("ledger audit: handler not configured")
	}
	var payload LedgerAuditPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode ledger audit payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	_, err := j.Run(ctx, payload.WindowDays)
	return err
}

// Run audits the orders created in the last windowDays days.
func (j *LedgerAuditJob) Run(ctx context.Context, windowDays int) (result AuditResult, err error) {
	if windowDays <= 0 {
		windowDays = defaultAuditWindowDays
	}
	tracker := j.metrics().Track(TaskLedgerAudit)
	defer func() {
		err = tracker.End(err)
	}()

	to := j.now()
	from := to.AddDate(0, 0, -windowDays)
	logger := j.logger().With(
		slog.Int("window_days", windowDays),
		slog.Time("from", from),
		slog.Time("to", to),
	)
	logger.Info("starting ledger audit")

	var (
		orders    []reports.Order
		merchants map[string]reports.Merchant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = j.Repo.FetchOrders(gctx, reports.OrderQuery{StartDate: from, EndDate: to})
		if err != nil {
			return fmt.Errorf("fetch orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		merchants, err = j.Repo.FetchMerchants(gctx, nil)
		if err != nil {
			return fmt.Errorf("fetch merchants: %w", err)
		}
		return nil
	})
	if err = g.Wait(); err != nil {
		logger.Error("ledger audit failed", slog.Any("error", err))
		return AuditResult{}, fmt.Errorf("ledger audit: %w", err)
	}

	_, failures := reports.MapOrders(orders, merchants)
	result = AuditResult{
		From:     from,
		To:       to,
		Audited:  len(orders),
		Corrupt:  len(failures),
		ByReason: make(map[string]int),
	}
	for _, failure := range failures {
		reason := classify(failure)
		result.ByReason[reason]++
		attrs := []any{slog.String("reason", reason), slog.Any("error", failure)}
		var orderErr *reports.OrderError
		if errors.As(failure, &orderErr) {
			attrs = append(attrs, slog.String("order_id", orderErr.OrderID), slog.String("field", orderErr.Field))
		}
		logger.Warn("order fails settlement", attrs...)
	}
	j.metrics().RecordAudit(result.Audited, result.ByReason)

	logger.Info("ledger audit completed",
		slog.Int("audited", result.Audited),
		slog.Int("corrupt", result.Corrupt),
	)
	return result, nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, commission.ErrInvalidFeeTier):
		return ReasonFeeTier
	case errors.Is(err, commission.ErrInvalidAmount):
		return ReasonAmount
	default:
		return ReasonUnknown
	}
}

func (j *LedgerAuditJob) logger() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerAudit))
	}
	return slog.Default().With(slog.String("job", TaskLedgerAudit))
}

func (j *LedgerAuditJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *LedgerAuditJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

var defaultJobMetrics = jobmetrics.NewMetrics(nil)
