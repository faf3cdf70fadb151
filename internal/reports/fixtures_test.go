package reports

import (
	"context"
	"sync"
	"time"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func newOrder(id, clientID, fee, merchandise string) Order {
	o := Order{
		ID:            id,
		ClientID:      clientID,
		ClientName:    "Loja " + clientID,
		ClientPhone:   "11999990000",
		Status:        StatusDelivered,
		DeliveryFee:   fee,
		PaymentMethod: PaymentPix,
		CreatedAt:     baseTime,
	}
	if merchandise != "" {
		o.MerchandiseTotal = strPtr(merchandise)
	}
	return o
}

func withCourier(o Order, id string) Order {
	o.MotoboyID = strPtr(id)
	o.MotoboyName = strPtr("Moto " + id)
	return o
}

type fakeRepo struct {
	mu           sync.Mutex
	orders       []Order
	merchants    map[string]Merchant
	couriers     map[string]Courier
	ordersErr    error
	queries      []OrderQuery
	merchantHits int
}

func (f *fakeRepo) FetchOrders(ctx context.Context, q OrderQuery) ([]Order, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.ordersErr != nil {
		return nil, f.ordersErr
	}
	var out []Order
	for _, o := range f.orders {
		if q.ClientID != "" && o.ClientID != q.ClientID {
			continue
		}
		if q.MotoboyID != "" && o.CourierID() != q.MotoboyID {
			continue
		}
		if q.Status != "" && string(o.Status) != q.Status {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) FetchMerchant(ctx context.Context, id string) (*Merchant, error) {
	f.mu.Lock()
	f.merchantHits++
	f.mu.Unlock()
	m, ok := f.merchants[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (f *fakeRepo) FetchMerchants(ctx context.Context, ids []string) (map[string]Merchant, error) {
	f.mu.Lock()
	f.merchantHits++
	f.mu.Unlock()
	out := make(map[string]Merchant)
	if len(ids) == 0 {
		for id, m := range f.merchants {
			out[id] = m
		}
		return out, nil
	}
	for _, id := range ids {
		if m, ok := f.merchants[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (f *fakeRepo) FetchCourier(ctx context.Context, id string) (*Courier, error) {
	c, ok := f.couriers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeRepo) lastQuery() OrderQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[len(f.queries)-1]
}
