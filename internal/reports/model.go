// Package reports turns raw delivery orders into role-scoped financial views
// and the report envelopes served to central, merchants and couriers.
package reports

import (
	"time"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Status represents the lifecycle of a delivery order.
type Status string

const (
	StatusPending             Status = "pending"              // Waiting for a courier
	StatusInProgress          Status = "in_progress"          // Courier accepted
	StatusDelivered           Status = "delivered"            // Customer received goods
	StatusCancelled           Status = "cancelled"            // Cancelled delivery
	StatusReassignmentPending Status = "reassignment_pending" // Courier dropped, waiting for another
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDelivered, StatusCancelled, StatusReassignmentPending:
		return true
	default:
		return false
	}
}

// PaymentMethod is how the end customer pays on delivery.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentPix  PaymentMethod = "pix"
)

// Label returns the key used in payment breakdowns.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCash:
		return "Cash"
	case PaymentCard:
		return "Card"
	case PaymentPix:
		return "Pix"
	default:
		return string(p)
	}
}

// Order is the raw delivery record owned by the persistence layer. Money
// fields stay as the decimal strings the store hands out.
type Order struct {
	ID               string        `json:"id"`
	ClientID         string        `json:"clientId"`
	ClientName       string        `json:"clientName"`
	ClientPhone      string        `json:"clientPhone"`
	MotoboyID        *string       `json:"motoboyId"`
	MotoboyName      *string       `json:"motoboyName"`
	Status           Status        `json:"status"`
	DeliveryFee      string        `json:"deliveryFee"`
	MerchandiseTotal *string       `json:"merchandiseTotal"`
	CourierRate      *string       `json:"courierRate"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	ProofURL         *string       `json:"proofUrl"`
	CreatedAt        time.Time     `json:"createdAt"`
	AcceptedAt       *time.Time    `json:"acceptedAt"`
	DeliveredAt      *time.Time    `json:"deliveredAt"`
}

// CourierID returns the assigned courier or "" while unassigned.
func (o Order) CourierID() string {
	if o.MotoboyID == nil {
		return ""
	}
	return *o.MotoboyID
}

// CourierName returns the assigned courier name or "".
func (o Order) CourierName() string {
	if o.MotoboyName == nil {
		return ""
	}
	return *o.MotoboyName
}

// Merchant is the subset of the client record the engine needs.
type Merchant struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	SubscriptionAmount string `json:"subscriptionAmount"`
}

// Subscription returns the recurring amount, zero when unset or malformed.
func (m Merchant) Subscription() shared.Money {
	amount, err := shared.ParseMoney(m.SubscriptionAmount)
	if err != nil || amount < 0 {
		return 0
	}
	return amount
}

// IsSubscriber reports whether the merchant pays a recurring subscription.
func (m Merchant) IsSubscriber() bool {
	return m.Subscription() > 0
}

// Courier is the subset of the motoboy record the engine needs.
type Courier struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
