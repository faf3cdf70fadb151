package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guriri-express/dispatch/internal/shared"
)

const topRankingSize = 10

// Earnings windows for courier summaries.
const (
	weeklyWindow  = 7 * 24 * time.Hour
	monthlyWindow = 30 * 24 * time.Hour
)

// Observer records report executions.
type Observer interface {
	ObserveReport(kind string, elapsed time.Duration, skipped int, err error)
}

// Service builds the financial reports.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// NewService wires a Repository with a logger.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// WithObserver attaches report instrumentation.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// WithClock overrides the clock used for earnings windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// CompanyReport aggregates every order in the window. Central only.
func (s *Service) CompanyReport(ctx context.Context, filters Filters, caller shared.Caller) (report CompanyReport, err error) {
	start := s.now()
	skipped := 0
	defer func() { s.observe("company", start, skipped, err) }()

	if err := caller.Validate(); err != nil {
		return CompanyReport{}, err
	}
	if caller.Role != shared.RoleCentral {
		return CompanyReport{}, shared.ErrAccessDenied
	}

	var (
		orders    []Order
		merchants map[string]Merchant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.repo.FetchOrders(gctx, filters.Query())
		return err
	})
	g.Go(func() error {
		var err error
		merchants, err = s.repo.FetchMerchants(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return CompanyReport{}, fmt.Errorf("company report: %w", err)
	}

	views, skipped := s.mapOrders("company", orders, merchants)
	sortByCreatedDesc(views)

	summary := CompanySummary{TotalOrders: len(views), SkippedOrders: skipped}
	for _, v := range views {
		summary.TotalRevenue += v.Financial.CustomerTotal
		summary.TotalCommission += v.Financial.PlatformCommission
		summary.TotalCourierPayout += v.Financial.CourierPayout
	}
	summary.AverageOrderValue = average(summary.TotalRevenue, len(views))
	for _, m := range merchants {
		if m.IsSubscriber() {
			summary.ActiveSubscribers++
			summary.MonthlyRecurringRevenue += m.Subscription()
		}
	}

	scoped, err := RedactViews(views, caller)
	if err != nil {
		return CompanyReport{}, err
	}
	return CompanyReport{
		Period:             filters.Period(),
		Summary:            summary,
		BreakdownByPayment: paymentBreakdown(views),
		TopClients:         topClients(views),
		TopMotoboys:        topMotoboys(views),
		Orders:             shared.Paginate(scoped, filters.Page, filters.Limit),
	}, nil
}

// ClientReport covers one merchant. Central sees any merchant; a merchant
// only itself; couriers never.
func (s *Service) ClientReport(ctx context.Context, clientID string, filters Filters, caller shared.Caller) (report ClientReport, err error) {
	start := s.now()
	skipped := 0
	defer func() { s.observe("client", start, skipped, err) }()

	if err := caller.Validate(); err != nil {
		return ClientReport{}, err
	}
	switch caller.Role {
	case shared.RoleMotoboy:
		return ClientReport{}, shared.ErrAccessDenied
	case shared.RoleClient:
		if !caller.Owns(clientID) {
			return ClientReport{}, shared.ErrAccessDenied
		}
	}

	q := filters.Query()
	q.ClientID = clientID
	if caller.Role != shared.RoleCentral {
		q.MotoboyID = ""
	}

	var (
		merchant *Merchant
		orders   []Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		merchant, err = s.repo.FetchMerchant(gctx, clientID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.repo.FetchOrders(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return ClientReport{}, fmt.Errorf("client report: %w", err)
	}
	if merchant == nil {
		return ClientReport{}, fmt.Errorf("client %s: %w", clientID, shared.ErrNotFound)
	}

	views, skipped := s.mapOrders("client", orders, map[string]Merchant{merchant.ID: *merchant})
	sortByCreatedDesc(views)

	summary := ClientSummary{TotalOrders: len(views), SkippedOrders: skipped}
	var commission, payout shared.Money
	for _, v := range views {
		if v.Order.Status != StatusDelivered {
			continue
		}
		summary.DeliveredOrders++
		summary.TotalMerchandise += v.Financial.MerchandiseValue
		summary.TotalDeliveryFees += v.Financial.DeliveryValue
		summary.TotalCustomerCharge += v.Financial.CustomerTotal
		commission += v.Financial.PlatformCommission
		payout += v.Financial.CourierPayout
	}
	info := ClientInfo{ID: merchant.ID, Name: merchant.Name}
	if caller.Role == shared.RoleCentral {
		summary.TotalCommission = &commission
		summary.TotalCourierPayout = &payout
		subscriber := merchant.IsSubscriber()
		info.IsSubscriber = &subscriber
	}

	scoped, err := RedactViews(views, caller)
	if err != nil {
		return ClientReport{}, err
	}
	return ClientReport{
		Client:             info,
		Period:             filters.Period(),
		Summary:            summary,
		BreakdownByPayment: paymentBreakdown(views),
		Orders:             shared.Paginate(scoped, filters.Page, filters.Limit),
	}, nil
}

// MotoboyReport covers one courier. Central sees any courier; a courier only
// itself; merchants never.
func (s *Service) MotoboyReport(ctx context.Context, motoboyID string, filters Filters, caller shared.Caller) (report MotoboyReport, err error) {
	start := s.now()
	skipped := 0
	defer func() { s.observe("motoboy", start, skipped, err) }()

	if err := caller.Validate(); err != nil {
		return MotoboyReport{}, err
	}
	switch caller.Role {
	case shared.RoleClient:
		return MotoboyReport{}, shared.ErrAccessDenied
	case shared.RoleMotoboy:
		if !caller.Owns(motoboyID) {
			return MotoboyReport{}, shared.ErrAccessDenied
		}
	}

	q := filters.Query()
	q.MotoboyID = motoboyID
	if caller.Role != shared.RoleCentral {
		q.ClientID = ""
	}

	var (
		courier   *Courier
		orders    []Order
		merchants map[string]Merchant
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courier, err = s.repo.FetchCourier(gctx, motoboyID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.repo.FetchOrders(gctx, q)
		if err != nil {
			return err
		}
		merchants, err = s.orderMerchants(gctx, orders)
		return err
	})
	if err := g.Wait(); err != nil {
		return MotoboyReport{}, fmt.Errorf("motoboy report: %w", err)
	}
	if courier == nil {
		return MotoboyReport{}, fmt.Errorf("motoboy %s: %w", motoboyID, shared.ErrNotFound)
	}

	views, skipped := s.mapOrders("motoboy", orders, merchants)
	sortByCreatedDesc(views)

	now := s.now()
	summary := MotoboySummary{TotalOrders: len(views), SkippedOrders: skipped}
	var revenue, commission shared.Money
	for _, v := range views {
		if v.Order.Status != StatusDelivered {
			continue
		}
		payout := v.Financial.CourierPayout
		summary.TotalDeliveries++
		summary.TotalPayout += payout
		revenue += v.Financial.CustomerTotal
		commission += v.Financial.PlatformCommission

		at := v.Order.CreatedAt
		if v.Order.DeliveredAt != nil {
			at = *v.Order.DeliveredAt
		}
		age := now.Sub(at)
		if age < 0 {
			continue
		}
		if age <= weeklyWindow {
			summary.WeeklyEarnings += payout
		}
		if age <= monthlyWindow {
			summary.MonthlyEarnings += payout
		}
	}
	if caller.Role == shared.RoleCentral {
		summary.TotalRevenue = &revenue
		summary.TotalCommission = &commission
	}

	scoped, err := RedactViews(views, caller)
	if err != nil {
		return MotoboyReport{}, err
	}
	return MotoboyReport{
		Motoboy: MotoboyInfo{ID: courier.ID, Name: courier.Name},
		Period:  filters.Period(),
		Summary: summary,
		Orders:  shared.Paginate(scoped, filters.Page, filters.Limit),
	}, nil
}

// OrdersReport lists orders scoped to the caller. Merchant and courier
// filters are only honoured for central; scoped callers are pinned to
// their own id.
func (s *Service) OrdersReport(ctx context.Context, filters Filters, caller shared.Caller) (report OrdersReport, err error) {
	start := s.now()
	skipped := 0
	defer func() { s.observe("orders", start, skipped, err) }()

	if err := caller.Validate(); err != nil {
		return OrdersReport{}, err
	}

	q := filters.Query()
	switch caller.Role {
	case shared.RoleClient:
		q.ClientID = caller.ID
		q.MotoboyID = ""
	case shared.RoleMotoboy:
		q.MotoboyID = caller.ID
		q.ClientID = ""
	}

	orders, err := s.repo.FetchOrders(ctx, q)
	if err != nil {
		return OrdersReport{}, fmt.Errorf("orders report: %w", err)
	}
	merchants, err := s.orderMerchants(ctx, orders)
	if err != nil {
		return OrdersReport{}, fmt.Errorf("orders report: %w", err)
	}

	views, skipped := s.mapOrders("orders", orders, merchants)
	sortByCreatedDesc(views)

	scoped, err := RedactViews(views, caller)
	if err != nil {
		return OrdersReport{}, err
	}
	return OrdersReport{
		Period:        filters.Period(),
		SkippedOrders: skipped,
		Orders:        shared.Paginate(scoped, filters.Page, filters.Limit),
	}, nil
}

// mapOrders runs the mapper over a batch. Orders failing settlement are
// logged and counted; they never abort the report.
func (s *Service) mapOrders(kind string, orders []Order, merchants map[string]Merchant) ([]OrderView, int) {
	views, failures := MapOrders(orders, merchants)
	for _, err := range failures {
		var oe *OrderError
		if errors.As(err, &oe) {
			s.logger.Warn("order skipped from report",
				slog.String("report", kind),
				slog.String("order_id", oe.OrderID),
				slog.String("field", oe.Field),
				slog.Any("error", oe.Err))
			continue
		}
		s.logger.Warn("order skipped from report", slog.String("report", kind), slog.Any("error", err))
	}
	return views, len(failures)
}

func (s *Service) observe(kind string, start time.Time, skipped int, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveReport(kind, s.now().Sub(start), skipped, err)
}

func sortByCreatedDesc(views []OrderView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Order.CreatedAt.After(views[j].Order.CreatedAt)
	})
}

// orderMerchants loads the merchants referenced by orders. An empty id list
// means the whole directory to the repository, so it is never sent.
func (s *Service) orderMerchants(ctx context.Context, orders []Order) (map[string]Merchant, error) {
	ids := merchantIDs(orders)
	if len(ids) == 0 {
		return map[string]Merchant{}, nil
	}
	return s.repo.FetchMerchants(ctx, ids)
}

func merchantIDs(orders []Order) []string {
	seen := make(map[string]struct{}, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.ClientID]; ok || o.ClientID == "" {
			continue
		}
		seen[o.ClientID] = struct{}{}
		ids = append(ids, o.ClientID)
	}
	return ids
}

// average rounds half away from zero to the centavo.
func average(total shared.Money, count int) shared.Money {
	if count == 0 {
		return 0
	}
	n := shared.Money(count)
	if total < 0 {
		return (total - n/2) / n
	}
	return (total + n/2) / n
}

func paymentBreakdown(views []OrderView) map[string]PaymentTotals {
	out := map[string]PaymentTotals{
		PaymentCash.Label(): {},
		PaymentCard.Label(): {},
		PaymentPix.Label():  {},
	}
	for _, v := range views {
		key := v.Order.PaymentMethod.Label()
		if key == "" {
			continue
		}
		t := out[key]
		t.Orders++
		t.Revenue += v.Financial.CustomerTotal
		out[key] = t
	}
	return out
}

func topClients(views []OrderView) []TopClient {
	index := make(map[string]int)
	ranking := make([]TopClient, 0)
	for _, v := range views {
		i, ok := index[v.Order.ClientID]
		if !ok {
			i = len(ranking)
			index[v.Order.ClientID] = i
			ranking = append(ranking, TopClient{ClientID: v.Order.ClientID, ClientName: v.Order.ClientName})
		}
		ranking[i].TotalOrders++
		ranking[i].TotalRevenue += v.Financial.CustomerTotal
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalOrders > ranking[j].TotalOrders
	})
	if len(ranking) > topRankingSize {
		ranking = ranking[:topRankingSize]
	}
	return ranking
}

func topMotoboys(views []OrderView) []TopMotoboy {
	index := make(map[string]int)
	ranking := make([]TopMotoboy, 0)
	for _, v := range views {
		id := v.Order.CourierID()
		if id == "" {
			continue
		}
		i, ok := index[id]
		if !ok {
			i = len(ranking)
			index[id] = i
			ranking = append(ranking, TopMotoboy{MotoboyID: id, MotoboyName: v.Order.CourierName()})
		}
		ranking[i].TotalOrders++
		ranking[i].TotalPayout += v.Financial.CourierPayout
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].TotalOrders > ranking[j].TotalOrders
	})
	if len(ranking) > topRankingSize {
		ranking = ranking[:topRankingSize]
	}
	return ranking
}
