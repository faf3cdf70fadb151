// Package pricing validates delivery fees at the order write boundary and
// quotes the resulting split.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/guriri-express/dispatch/internal/commission"
	"github.com/guriri-express/dispatch/internal/reports"
	"github.com/guriri-express/dispatch/internal/shared"
)

// ErrInvalidRequest indicates a malformed quote payload.
var ErrInvalidRequest = errors.New("pricing: invalid request")

// MerchantFinder resolves the merchant owning a prospective order.
type MerchantFinder interface {
	FetchMerchant(ctx context.Context, id string) (*reports.Merchant, error)
}

// Service answers fee questions for order creation.
type Service struct {
	merchants MerchantFinder
	validator *validator.Validate
}

// NewService builds the pricing service.
func NewService(merchants MerchantFinder) *Service {
	return &Service{merchants: merchants, validator: validator.New()}
}

// AllowedValues lists the fee tier of a merchant.
func (s *Service) AllowedValues(ctx context.Context, clientID string, caller shared.Caller) (Tier, error) {
	if err := authorize(caller, clientID); err != nil {
		return Tier{}, err
	}
	merchant, err := s.merchant(ctx, clientID)
	if err != nil {
		return Tier{}, err
	}
	subscriber := merchant.IsSubscriber()
	return Tier{
		ClientID:      merchant.ID,
		IsSubscriber:  subscriber,
		AllowedValues: commission.AllowedValues(subscriber),
	}, nil
}

// Quote validates a prospective order and returns its split. Any fee outside
// the merchant's tier fails the whole request.
func (s *Service) Quote(ctx context.Context, req QuoteRequest, caller shared.Caller) (Quote, error) {
	if err := s.validator.Struct(req); err != nil {
		return Quote{}, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}
	if err := authorize(caller, req.ClientID); err != nil {
		return Quote{}, err
	}
	merchant, err := s.merchant(ctx, req.ClientID)
	if err != nil {
		return Quote{}, err
	}

	fee, err := shared.ParseMoney(req.DeliveryFee)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", commission.ErrInvalidAmount, err)
	}
	var merchandise shared.Money
	if req.MerchandiseTotal != "" {
		merchandise, err = shared.ParseMoney(req.MerchandiseTotal)
		if err != nil {
			return Quote{}, fmt.Errorf("%w: %v", commission.ErrInvalidAmount, err)
		}
	}

	b, err := commission.ComputeTransaction(merchandise, fee, merchant.IsSubscriber())
	if err != nil {
		return Quote{}, err
	}
	q := Quote{
		ClientID:         merchant.ID,
		MerchandiseValue: b.MerchandiseValue,
		DeliveryValue:    b.DeliveryValue,
		MerchantGross:    b.MerchantGross,
		CustomerTotal:    b.CustomerTotal,
	}
	if caller.Role == shared.RoleCentral {
		q.CourierPayout = &b.CourierPayout
		q.PlatformCommission = &b.PlatformCommission
	}
	return q, nil
}

func (s *Service) merchant(ctx context.Context, clientID string) (*reports.Merchant, error) {
	merchant, err := s.merchants.FetchMerchant(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("load client %s: %w", clientID, err)
	}
	if merchant == nil {
		return nil, fmt.Errorf("client %s: %w", clientID, shared.ErrNotFound)
	}
	return merchant, nil
}

// authorize lets central quote for anyone and a merchant only for itself.
func authorize(caller shared.Caller, clientID string) error {
	if err := caller.Validate(); err != nil {
		return err
	}
	switch caller.Role {
	case shared.RoleCentral:
		return nil
	case shared.RoleClient:
		if caller.Owns(clientID) {
			return nil
		}
	}
	return shared.ErrAccessDenied
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
