package reports

import (
	"errors"
	"fmt"

	"github.com/guriri-express/dispatch/internal/commission"
	"github.com/guriri-express/dispatch/internal/shared"
)

// MapOrderFinancial attaches the computed settlement to an order. The
// merchant decides the fee tier; a nil merchant is treated as a
// non-subscriber. A missing or unreadable merchandise total counts as zero
// and is flagged through MerchandiseDeclared.
func MapOrderFinancial(order Order, merchant *Merchant) (OrderView, error) {
	isSubscriber := merchant != nil && merchant.IsSubscriber()

	fee, err := shared.ParseMoney(order.DeliveryFee)
	if err != nil {
		return OrderView{}, &OrderError{
			OrderID: order.ID,
			Field:   "deliveryFee",
			Err:     fmt.Errorf("%w: %v", commission.ErrInvalidAmount, err),
		}
	}

	merchandise, declared := parseMerchandise(order.MerchandiseTotal)

	breakdown, err := commission.ComputeTransaction(merchandise, fee, isSubscriber)
	if err != nil {
		field := "deliveryFee"
		if !errors.Is(err, commission.ErrInvalidFeeTier) && merchandise < 0 {
			field = "merchandiseTotal"
		}
		return OrderView{}, &OrderError{OrderID: order.ID, Field: field, Err: err}
	}

	view := OrderView{
		Order:               order,
		Financial:           breakdown,
		MerchandiseDeclared: declared,
	}
	if order.CourierRate != nil {
		if rate, err := shared.ParseMoney(*order.CourierRate); err == nil {
			view.CourierRate = &rate
		}
	}
	return view, nil
}

func parseMerchandise(raw *string) (shared.Money, bool) {
	if raw == nil {
		return 0, false
	}
	value, err := shared.ParseMoney(*raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

// MapOrders maps a batch, resolving each merchant from the directory. Orders
// failing settlement are returned separately so callers can count them.
func MapOrders(orders []Order, merchants map[string]Merchant) ([]OrderView, []error) {
	views := make([]OrderView, 0, len(orders))
	var failures []error
	for _, order := range orders {
		var merchant *Merchant
		if m, ok := merchants[order.ClientID]; ok {
			merchant = &m
		}
		view, err := MapOrderFinancial(order, merchant)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		views = append(views, view)
	}
	return views, failures
}
