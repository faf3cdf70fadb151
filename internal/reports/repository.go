package reports

import (
	"context"
	"time"
)

// OrderQuery narrows the order fetch. Zero values are ignored.
type OrderQuery struct {
	StartDate     time.Time
	EndDate       time.Time
	Status        string
	PaymentMethod string
	ClientID      string
	MotoboyID     string
}

// Repository is the read side the reports depend on.
type Repository interface {
	FetchOrders(ctx context.Context, q OrderQuery) ([]Order, error)
	// FetchMerchant returns nil, nil when the merchant does not exist.
	FetchMerchant(ctx context.Context, id string) (*Merchant, error)
	// FetchMerchants returns every merchant when ids is empty.
	FetchMerchants(ctx context.Context, ids []string) (map[string]Merchant, error)
	// FetchCourier returns nil, nil when the courier does not exist.
	FetchCourier(ctx context.Context, id string) (*Courier, error)
}
