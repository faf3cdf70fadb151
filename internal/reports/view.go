package reports

import (
	"encoding/json"
	"time"

	"github.com/guriri-express/dispatch/internal/commission"
	"github.com/guriri-express/dispatch/internal/shared"
)

// Field names a key of the serialised order view.
type Field string

// Order view keys.
const (
	FieldID                  Field = "id"
	FieldClientID            Field = "clientId"
	FieldClientName          Field = "clientName"
	FieldClientPhone         Field = "clientPhone"
	FieldMotoboyID           Field = "motoboyId"
	FieldMotoboyName         Field = "motoboyName"
	FieldStatus              Field = "status"
	FieldPaymentMethod       Field = "paymentMethod"
	FieldProofURL            Field = "proofUrl"
	FieldCreatedAt           Field = "createdAt"
	FieldAcceptedAt          Field = "acceptedAt"
	FieldDeliveredAt         Field = "deliveredAt"
	FieldCourierRate         Field = "courierRate"
	FieldMerchandiseValue    Field = "merchandiseValue"
	FieldDeliveryValue       Field = "deliveryValue"
	FieldCourierPayout       Field = "courierPayout"
	FieldPlatformCommission  Field = "platformCommission"
	FieldMerchantGross       Field = "merchantGross"
	FieldCustomerTotal       Field = "customerTotal"
	FieldIsSubscriber        Field = "isSubscriber"
	FieldMerchandiseDeclared Field = "merchandiseDeclared"
)

// OrderView is an order enriched with its settlement. Views start complete;
// the role guard hides fields per audience and the JSON form omits them.
type OrderView struct {
	Order               Order
	Financial           commission.Breakdown
	CourierRate         *shared.Money
	MerchandiseDeclared bool

	hidden map[Field]struct{}
}

// Visible reports whether the field survives redaction.
func (v OrderView) Visible(f Field) bool {
	_, gone := v.hidden[f]
	return !gone
}

// Redacted reports whether any field was removed.
func (v OrderView) Redacted() bool {
	return len(v.hidden) > 0
}

func (v OrderView) without(fields []Field) OrderView {
	hidden := make(map[Field]struct{}, len(v.hidden)+len(fields))
	for f := range v.hidden {
		hidden[f] = struct{}{}
	}
	for _, f := range fields {
		hidden[f] = struct{}{}
	}
	v.hidden = hidden
	return v
}

// Fields returns the visible keys and their values.
func (v OrderView) Fields() map[Field]any {
	o := v.Order
	all := map[Field]any{
		FieldID:                  o.ID,
		FieldClientID:            o.ClientID,
		FieldClientName:          o.ClientName,
		FieldClientPhone:         o.ClientPhone,
		FieldMotoboyID:           o.MotoboyID,
		FieldMotoboyName:         o.MotoboyName,
		FieldStatus:              o.Status,
		FieldPaymentMethod:       o.PaymentMethod,
		FieldProofURL:            o.ProofURL,
		FieldCreatedAt:           o.CreatedAt.UTC().Format(time.RFC3339),
		FieldAcceptedAt:          formatTime(o.AcceptedAt),
		FieldDeliveredAt:         formatTime(o.DeliveredAt),
		FieldCourierRate:         v.CourierRate,
		FieldMerchandiseValue:    v.Financial.MerchandiseValue,
		FieldDeliveryValue:       v.Financial.DeliveryValue,
		FieldCourierPayout:       v.Financial.CourierPayout,
		FieldPlatformCommission:  v.Financial.PlatformCommission,
		FieldMerchantGross:       v.Financial.MerchantGross,
		FieldCustomerTotal:       v.Financial.CustomerTotal,
		FieldIsSubscriber:        v.Financial.IsSubscriber,
		FieldMerchandiseDeclared: v.MerchandiseDeclared,
	}
	for f := range v.hidden {
		delete(all, f)
	}
	return all
}

// MarshalJSON emits only the visible fields.
func (v OrderView) MarshalJSON() ([]byte, error) {
	fields := v.Fields()
	out := make(map[string]any, len(fields))
	for k, val := range fields {
		out[string(k)] = val
	}
	return json.Marshal(out)
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
