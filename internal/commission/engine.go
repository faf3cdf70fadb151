// Package commission holds the delivery fee policy: which fees a merchant may
// charge and how each fee splits between courier and platform.
package commission

import (
	"fmt"
	"sort"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Rule is one row of the delivery fee policy.
type Rule struct {
	Fee        shared.Money `json:"fee"`
	Courier    shared.Money `json:"courierPayout"`
	Platform   shared.Money `json:"platformCommission"`
	Subscriber bool         `json:"subscriber"`
}

// Minimum split guarantees for every valid fee.
var (
	MinCourierPayout      = shared.Reais(6)
	MinPlatformCommission = shared.Reais(1)
)

var rules = []Rule{
	{Fee: shared.Reais(7), Courier: shared.Reais(6), Platform: shared.Reais(1), Subscriber: true},
	{Fee: shared.Reais(10), Courier: shared.Reais(7), Platform: shared.Reais(3), Subscriber: true},
	{Fee: shared.Reais(15), Courier: shared.Reais(10), Platform: shared.Reais(5), Subscriber: true},
	{Fee: shared.Reais(8), Courier: shared.Reais(6), Platform: shared.Reais(2), Subscriber: false},
	{Fee: shared.Reais(10), Courier: shared.Reais(7), Platform: shared.Reais(3), Subscriber: false},
	{Fee: shared.Reais(15), Courier: shared.Reais(10), Platform: shared.Reais(5), Subscriber: false},
}

// Breakdown is the computed split of one delivery. It is never persisted.
type Breakdown struct {
	MerchandiseValue   shared.Money `json:"merchandiseValue"`
	DeliveryValue      shared.Money `json:"deliveryValue"`
	CourierPayout      shared.Money `json:"courierPayout"`
	PlatformCommission shared.Money `json:"platformCommission"`
	MerchantGross      shared.Money `json:"merchantGross"`
	CustomerTotal      shared.Money `json:"customerTotal"`
	IsSubscriber       bool         `json:"isSubscriber"`
}

func lookup(fee shared.Money, isSubscriber bool) (Rule, bool) {
	for _, r := range rules {
		if r.Fee == fee && r.Subscriber == isSubscriber {
			return r, true
		}
	}
	return Rule{}, false
}

// AllowedValues returns the fees a merchant in the tier may charge, ascending.
func AllowedValues(isSubscriber bool) []shared.Money {
	out := make([]shared.Money, 0, 3)
	for _, r := range rules {
		if r.Subscriber == isSubscriber {
			out = append(out, r.Fee)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsValidDeliveryValue reports whether fee belongs to the tier.
func IsValidDeliveryValue(fee shared.Money, isSubscriber bool) bool {
	_, ok := lookup(fee, isSubscriber)
	return ok
}

// CourierPayout returns the courier's share of fee.
func CourierPayout(fee shared.Money, isSubscriber bool) (shared.Money, error) {
	r, ok := lookup(fee, isSubscriber)
	if !ok {
		return 0, &FeeError{Fee: fee, Subscriber: isSubscriber}
	}
	return r.Courier, nil
}

// PlatformCommission returns the platform's share of fee.
func PlatformCommission(fee shared.Money, isSubscriber bool) (shared.Money, error) {
	r, ok := lookup(fee, isSubscriber)
	if !ok {
		return 0, &FeeError{Fee: fee, Subscriber: isSubscriber}
	}
	return r.Platform, nil
}

// ComputeTransaction validates the amounts and assembles the full breakdown.
// Payout and commission come from the same rule row, so they always add up
// to the delivery fee.
func ComputeTransaction(merchandise, fee shared.Money, isSubscriber bool) (Breakdown, error) {
	r, ok := lookup(fee, isSubscriber)
	if !ok {
		return Breakdown{}, &FeeError{Fee: fee, Subscriber: isSubscriber}
	}
	if merchandise < 0 {
		return Breakdown{}, fmt.Errorf("%w: merchandise value %s is negative", ErrInvalidAmount, merchandise)
	}
	if fee <= 0 {
		return Breakdown{}, fmt.Errorf("%w: delivery fee %s must be positive", ErrInvalidAmount, fee)
	}
	gross := merchandise + r.Fee
	return Breakdown{
		MerchandiseValue:   merchandise,
		DeliveryValue:      r.Fee,
		CourierPayout:      r.Courier,
		PlatformCommission: r.Platform,
		MerchantGross:      gross,
		CustomerTotal:      gross,
		IsSubscriber:       isSubscriber,
	}, nil
}

// Rules returns a copy of the policy table for audit screens.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// VerifyRules checks every row splits exactly and respects the minimums.
func VerifyRules() error {
	for _, r := range rules {
		if r.Courier+r.Platform != r.Fee {
			return fmt.Errorf("commission: rule %s (%s) splits into %s + %s",
				r.Fee, tierName(r.Subscriber), r.Courier, r.Platform)
		}
		if r.Courier < MinCourierPayout || r.Platform < MinPlatformCommission {
			return fmt.Errorf("commission: rule %s (%s) below minimum split", r.Fee, tierName(r.Subscriber))
		}
	}
	return nil
}
