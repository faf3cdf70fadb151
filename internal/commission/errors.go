package commission

import (
	"errors"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Settlement errors.
var (
	// ErrInvalidFeeTier indicates a delivery fee outside the merchant's tier.
	ErrInvalidFeeTier = errors.New("delivery fee not allowed for tier")
	// ErrInvalidAmount indicates a negative or non-numeric money field.
	ErrInvalidAmount = errors.New("invalid amount")
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FeeError describes a rejected delivery fee.
type FeeError struct {
	Fee        shared.Money
	Subscriber bool
}

func (e *FeeError) Error() string {
	allowed := AllowedValues(e.Subscriber)
	labels := make([]string, 0, len(allowed))
	for _, v := range allowed {
		labels = append(labels, formatBRL(v))
	}
	return brl.Sprintf("delivery fee %s not allowed for %s merchant (allowed: %s)",
		formatBRL(e.Fee), tierName(e.Subscriber), strings.Join(labels, ", "))
}

func (e *FeeError) Unwrap() error {
	return ErrInvalidFeeTier
}

func formatBRL(m shared.Money) string {
	return brl.Sprintf("R$ %.2f", m.Float64())
}

func tierName(subscriber bool) string {
	if subscriber {
		return "subscriber"
	}
	return "non-subscriber"
}
