package reports

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guriri-express/dispatch/internal/commission"
	"github.com/guriri-express/dispatch/internal/shared"
)

var subscriber = &Merchant{ID: "c1", Name: "Padaria", SubscriptionAmount: "199.90"}

func TestMapOrderFinancial_Subscriber(t *testing.T) {
	view, err := MapOrderFinancial(newOrder("o1", "c1", "10.00", "50.00"), subscriber)
	require.NoError(t, err)

	assert.Equal(t, shared.Reais(50), view.Financial.MerchandiseValue)
	assert.Equal(t, shared.Reais(10), view.Financial.DeliveryValue)
	assert.Equal(t, shared.Reais(7), view.Financial.CourierPayout)
	assert.Equal(t, shared.Reais(3), view.Financial.PlatformCommission)
	assert.Equal(t, shared.Reais(60), view.Financial.CustomerTotal)
	assert.Equal(t, shared.Reais(60), view.Financial.MerchantGross)
	assert.True(t, view.Financial.IsSubscriber)
	assert.True(t, view.MerchandiseDeclared)
	assert.False(t, view.Redacted())
}

func TestMapOrderFinancial_NilMerchantIsNonSubscriber(t *testing.T) {
	view, err := MapOrderFinancial(newOrder("o1", "c1", "8.00", "20"), nil)
	require.NoError(t, err)

	assert.False(t, view.Financial.IsSubscriber)
	assert.Equal(t, shared.Reais(6), view.Financial.CourierPayout)
	assert.Equal(t, shared.Reais(2), view.Financial.PlatformCommission)
}

func TestMapOrderFinancial_ZeroSubscriptionIsNonSubscriber(t *testing.T) {
	merchant := &Merchant{ID: "c1", SubscriptionAmount: "0.00"}

	_, err := MapOrderFinancial(newOrder("o1", "c1", "7.00", "20"), merchant)

	assert.ErrorIs(t, err, commission.ErrInvalidFeeTier)
}

func TestMapOrderFinancial_MissingMerchandiseDefaultsToZero(t *testing.T) {
	order := newOrder("o1", "c1", "10.00", "")

	view, err := MapOrderFinancial(order, subscriber)
	require.NoError(t, err)

	assert.Equal(t, shared.Money(0), view.Financial.MerchandiseValue)
	assert.Equal(t, shared.Reais(10), view.Financial.CustomerTotal)
	assert.False(t, view.MerchandiseDeclared)
}

func TestMapOrderFinancial_FeeOutsideTier(t *testing.T) {
	_, err := MapOrderFinancial(newOrder("o9", "c1", "9.00", "50"), subscriber)
	require.Error(t, err)

	var orderErr *OrderError
	require.True(t, errors.As(err, &orderErr))
	assert.Equal(t, "o9", orderErr.OrderID)
	assert.Equal(t, "deliveryFee", orderErr.Field)
	assert.ErrorIs(t, err, commission.ErrInvalidFeeTier)
	assert.ErrorIs(t, err, ErrUnreportable)
	assert.True(t, IsSettlementError(err))
}

func TestMapOrderFinancial_UnparseableFee(t *testing.T) {
	_, err := MapOrderFinancial(newOrder("o2", "c1", "abc", "50"), subscriber)

	assert.ErrorIs(t, err, commission.ErrInvalidAmount)
	assert.True(t, IsSettlementError(err))
}

func TestMapOrderFinancial_NegativeMerchandise(t *testing.T) {
	_, err := MapOrderFinancial(newOrder("o3", "c1", "10.00", "-5.00"), subscriber)
	require.Error(t, err)

	var orderErr *OrderError
	require.True(t, errors.As(err, &orderErr))
	assert.Equal(t, "merchandiseTotal", orderErr.Field)
	assert.ErrorIs(t, err, commission.ErrInvalidAmount)
}

func TestMapOrderFinancial_ParsesCourierRate(t *testing.T) {
	order := newOrder("o1", "c1", "10.00", "50")
	order.CourierRate = strPtr("7.00")

	view, err := MapOrderFinancial(order, subscriber)
	require.NoError(t, err)
	require.NotNil(t, view.CourierRate)
	assert.Equal(t, shared.Reais(7), *view.CourierRate)
}

func TestMapOrders_SeparatesFailures(t *testing.T) {
	orders := []Order{
		newOrder("ok", "c1", "10.00", "50"),
		newOrder("bad", "c1", "9.00", "50"),
		newOrder("other", "c2", "8.00", "5"),
	}
	merchants := map[string]Merchant{"c1": *subscriber}

	views, failures := MapOrders(orders, merchants)

	require.Len(t, views, 2)
	assert.Equal(t, "ok", views[0].Order.ID)
	assert.Equal(t, "other", views[1].Order.ID)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], commission.ErrInvalidFeeTier)
}
