package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/guriri-express/dispatch/internal/jobs"
	"github.com/guriri-express/dispatch/internal/reports"
)

type auditRepo struct {
	orders    []reports.Order
	merchants map[string]reports.Merchant
	err       error
	query     reports.OrderQuery
}

func (r *auditRepo) FetchOrders(_ context.Context, q reports.OrderQuery) ([]reports.Order, error) {
	r.query = q
	if r.err != nil {
		return nil, r.err
	}
	return r.orders, nil
}

func (r *auditRepo) FetchMerchant(_ context.Context, id string) (*reports.Merchant, error) {
	if m, ok := r.merchants[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (r *auditRepo) FetchMerchants(_ context.Context, _ []string) (map[string]reports.Merchant, error) {
	return r.merchants, nil
}

func (r *auditRepo) FetchCourier(context.Context, string) (*reports.Courier, error) {
	return nil, nil
}

func auditOrder(id, clientID, fee string) reports.Order {
	return reports.Order{
		ID:            id,
		ClientID:      clientID,
		Status:        reports.StatusDelivered,
		DeliveryFee:   fee,
		PaymentMethod: reports.PaymentCash,
		CreatedAt:     time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newAuditJob(repo reports.Repository, reg *prometheus.Registry) *LedgerAuditJob {
	job := NewLedgerAuditJob(repo, slog.New(slog.NewTextHandler(io.Discard, nil)), jobmetrics.NewMetrics(reg))
	job.clock = func() time.Time { return time.Date(2025, 3, 20, 3, 0, 0, 0, time.UTC) }
	return job
}

func TestLedgerAuditCountsCorruptOrders(t *testing.T) {
	repo := &auditRepo{
		orders: []reports.Order{
			auditOrder("o1", "plain", "8.00"),
			auditOrder("o2", "sub", "7.00"),
			auditOrder("o3", "plain", "7.00"),
			auditOrder("o4", "plain", "oito"),
		},
		merchants: map[string]reports.Merchant{
			"plain": {ID: "plain", Name: "Padaria", SubscriptionAmount: "0"},
			"sub":   {ID: "sub", Name: "Mercado", SubscriptionAmount: "99.90"},
		},
	}
	reg := prometheus.NewRegistry()
	job := newAuditJob(repo, reg)

	result, err := job.Run(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Audited)
	assert.Equal(t, 2, result.Corrupt)
	assert.Equal(t, map[string]int{ReasonFeeTier: 1, ReasonAmount: 1}, result.ByReason)
	assert.Equal(t, time.Date(2025, 3, 13, 3, 0, 0, 0, time.UTC), repo.query.StartDate)
	assert.Equal(t, time.Date(2025, 3, 20, 3, 0, 0, 0, time.UTC), repo.query.EndDate)

	count, err := testutil.GatherAndCount(reg, "dispatch_ledger_corrupt_orders")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLedgerAuditDefaultsWindow(t *testing.T) {
	repo := &auditRepo{merchants: map[string]reports.Merchant{}}
	job := newAuditJob(repo, prometheus.NewRegistry())

	task, err := NewLedgerAuditTask(LedgerAuditPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, time.Date(2025, 2, 18, 3, 0, 0, 0, time.UTC), repo.query.StartDate)
}

func TestLedgerAuditPropagatesFetchErrors(t *testing.T) {
	boom := errors.New("connection reset")
	job := newAuditJob(&auditRepo{err: boom}, prometheus.NewRegistry())

	_, err := job.Run(context.Background(), 1)
	require.ErrorIs(t, err, boom)
}

func TestLedgerAuditRejectsMalformedPayload(t *testing.T) {
	job := newAuditJob(&auditRepo{}, prometheus.NewRegistry())

	err := job.Handle(context.Background(), asynq.NewTask(TaskLedgerAudit, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	assert.Contains(t, err.Error(), "decode ledger audit payload")
	assert.Contains(t, err.Error(), "unexpected end of JSON input")
}

func TestLedgerAuditRequiresRepository(t *testing.T) {
	var job *LedgerAuditJob
	assert.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskLedgerAudit, nil)))
}
