package perf

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/guriri-express/dispatch/internal/reports"
	"github.com/guriri-express/dispatch/internal/shared"
)

var fees = []string{"7.00", "10.00", "15.00", "8.00"}

type staticRepo struct {
	orders    []reports.Order
	merchants map[string]reports.Merchant
}

func (r staticRepo) FetchOrders(context.Context, reports.OrderQuery) ([]reports.Order, error) {
	return r.orders, nil
}

func (r staticRepo) FetchMerchant(_ context.Context, id string) (*reports.Merchant, error) {
	if m, ok := r.merchants[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (r staticRepo) FetchMerchants(context.Context, []string) (map[string]reports.Merchant, error) {
	return r.merchants, nil
}

func (r staticRepo) FetchCourier(_ context.Context, id string) (*reports.Courier, error) {
	return &reports.Courier{ID: id, Name: "Moto " + id}, nil
}

// generate builds n orders over 50 merchants, half of them subscribers, so a
// share of the fees falls outside the merchant's tier.
func generate(n int) staticRepo {
	merchants := make(map[string]reports.Merchant, 50)
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("c%02d", i)
		amount := "0"
		if i%2 == 0 {
			amount = "99.90"
		}
		merchants[id] = reports.Merchant{ID: id, Name: "Loja " + id, SubscriptionAmount: amount}
	}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := make([]reports.Order, n)
	for i := range orders {
		clientID := fmt.Sprintf("c%02d", i%50)
		courierID := fmt.Sprintf("m%02d", i%20)
		merchandise := "42.50"
		orders[i] = reports.Order{
			ID:               fmt.Sprintf("o%06d", i),
			ClientID:         clientID,
			ClientName:       "Loja " + clientID,
			MotoboyID:        &courierID,
			Status:           reports.StatusDelivered,
			DeliveryFee:      fees[i%len(fees)],
			MerchandiseTotal: &merchandise,
			PaymentMethod:    reports.PaymentPix,
			CreatedAt:        base.Add(time.Duration(i) * time.Minute),
		}
	}
	return staticRepo{orders: orders, merchants: merchants}
}

func newService(repo reports.Repository) *reports.Service {
	return reports.NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCompanyReportLatencyTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("latency target skipped in short mode")
	}
	svc := newService(generate(5000))
	central := shared.Caller{Role: shared.RoleCentral}
	filters := reports.ParseFilters(nil)

	samples := make([]time.Duration, 0, 20)
	for i := 0; i < 20; i++ {
		start := time.Now()
		if _, err := svc.CompanyReport(context.Background(), filters, central); err != nil {
			t.Fatalf("company report: %v", err)
		}
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 2*time.Second {
		t.Fatalf("company report latency regression: p95=%s threshold=2s", p95)
	}
}

func BenchmarkCompanyReport(b *testing.B) {
	svc := newService(generate(5000))
	central := shared.Caller{Role: shared.RoleCentral}
	filters := reports.ParseFilters(nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := svc.CompanyReport(context.Background(), filters, central); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMapOrders(b *testing.B) {
	repo := generate(5000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reports.MapOrders(repo.orders, repo.merchants)
	}
}

func BenchmarkRedactViews(b *testing.B) {
	repo := generate(5000)
	views, _ := reports.MapOrders(repo.orders, repo.merchants)
	caller := shared.Caller{Role: shared.RoleClient, ID: "c10"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := reports.RedactViews(views, caller); err != nil {
			b.Fatal(err)
		}
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
