package pricing

import "github.com/guriri-express/dispatch/internal/shared"

// QuoteRequest is the payload checked before an order is created.
type QuoteRequest struct {
	ClientID         string `json:"clientId" validate:"required,max=64"`
	DeliveryFee      string `json:"deliveryFee" validate:"required,numeric"`
	MerchandiseTotal string `json:"merchandiseTotal" validate:"omitempty,numeric"`
}

// Tier lists the fees a merchant may charge.
type Tier struct {
	ClientID      string         `json:"clientId"`
	IsSubscriber  bool           `json:"isSubscriber"`
	AllowedValues []shared.Money `json:"allowedValues"`
}

// Quote is the validated settlement for a prospective order. Courier payout
// and platform commission are only filled for central.
type Quote struct {
	ClientID           string        `json:"clientId"`
	MerchandiseValue   shared.Money  `json:"merchandiseValue"`
	DeliveryValue      shared.Money  `json:"deliveryValue"`
	MerchantGross      shared.Money  `json:"merchantGross"`
	CustomerTotal      shared.Money  `json:"customerTotal"`
	CourierPayout      *shared.Money `json:"courierPayout,omitempty"`
	PlatformCommission *shared.Money `json:"platformCommission,omitempty"`
}
