package reports

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guriri-express/dispatch/internal/shared"
)

func mappedView(t *testing.T, order Order) OrderView {
	t.Helper()
	view, err := MapOrderFinancial(order, subscriber)
	require.NoError(t, err)
	return view
}

func decodeView(t *testing.T, view OrderView) map[string]any {
	t.Helper()
	raw, err := json.Marshal(view)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestRedact_CentralIsIdentity(t *testing.T) {
	view := mappedView(t, withCourier(newOrder("o1", "c1", "10.00", "50"), "m1"))
	caller := shared.Caller{Role: shared.RoleCentral}

	out, err := Redact(OrderNode{View: view}, caller)
	require.NoError(t, err)

	assert.Equal(t, OrderNode{View: view}, out)
}

func TestRedact_ClientStripsCourierEconomics(t *testing.T) {
	view := mappedView(t, withCourier(newOrder("o1", "c1", "10.00", "50"), "m1"))

	out, err := RedactViews([]OrderView{view}, shared.Caller{Role: shared.RoleClient, ID: "c1"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	fields := decodeView(t, out[0])
	for _, key := range []string{"courierPayout", "platformCommission", "courierRate", "motoboyId", "motoboyName", "isSubscriber"} {
		assert.NotContains(t, fields, key)
	}
	assert.EqualValues(t, 50, fields["merchandiseValue"])
	assert.EqualValues(t, 10, fields["deliveryValue"])
	assert.EqualValues(t, 60, fields["customerTotal"])
	assert.Equal(t, "c1", fields["clientId"])
	assert.Equal(t, "delivered", fields["status"])
}

func TestRedact_ClientDropsForeignOrders(t *testing.T) {
	views := []OrderView{
		mappedView(t, newOrder("mine", "c1", "10.00", "50")),
		mappedView(t, newOrder("theirs", "c2", "10.00", "50")),
	}

	out, err := RedactViews(views, shared.Caller{Role: shared.RoleClient, ID: "c1"})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "mine", out[0].Order.ID)
}

func TestRedact_MotoboyStripsMerchantEconomics(t *testing.T) {
	view := mappedView(t, withCourier(newOrder("o1", "c1", "10.00", "50"), "m1"))

	out, err := RedactViews([]OrderView{view}, shared.Caller{Role: shared.RoleMotoboy, ID: "m1"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	fields := decodeView(t, out[0])
	for _, key := range []string{
		"merchandiseValue", "deliveryValue", "customerTotal", "merchantGross",
		"platformCommission", "isSubscriber", "clientId", "clientName", "clientPhone",
	} {
		assert.NotContains(t, fields, key)
	}
	assert.EqualValues(t, 7, fields["courierPayout"])
	assert.Equal(t, "m1", fields["motoboyId"])
	assert.Equal(t, "o1", fields["id"])
}

func TestRedact_MotoboyDropsUnassignedAndForeignOrders(t *testing.T) {
	views := []OrderView{
		mappedView(t, withCourier(newOrder("mine", "c1", "10.00", "50"), "m1")),
		mappedView(t, withCourier(newOrder("theirs", "c1", "10.00", "50"), "m2")),
		mappedView(t, newOrder("open", "c1", "10.00", "50")),
	}

	out, err := RedactViews(views, shared.Caller{Role: shared.RoleMotoboy, ID: "m1"})
	require.NoError(t, err)

	require.Len(t, out, 1)
	assert.Equal(t, "mine", out[0].Order.ID)
}

func TestRedact_MissingCallerID(t *testing.T) {
	view := mappedView(t, newOrder("o1", "c1", "10.00", "50"))

	_, err := RedactViews([]OrderView{view}, shared.Caller{Role: shared.RoleClient})

	assert.ErrorIs(t, err, shared.ErrMissingCallerID)
}

func TestRedact_TopLevelForeignOrderIsNil(t *testing.T) {
	view := mappedView(t, newOrder("o1", "c2", "10.00", "50"))

	out, err := Redact(OrderNode{View: view}, shared.Caller{Role: shared.RoleClient, ID: "c1"})
	require.NoError(t, err)

	assert.Nil(t, out)
}

func TestRedact_OrderShapedObjects(t *testing.T) {
	payload := ObjectNode{
		"orders": ListNode{
			ObjectNode{
				"id":                 ValueNode{Value: "o1"},
				"clientId":           ValueNode{Value: "c1"},
				"status":             ValueNode{Value: "delivered"},
				"courierPayout":      ValueNode{Value: 7},
				"platformCommission": ValueNode{Value: 3},
				"customerTotal":      ValueNode{Value: 60},
			},
			ObjectNode{
				"id":       ValueNode{Value: "o2"},
				"clientId": ValueNode{Value: "c2"},
				"status":   ValueNode{Value: "delivered"},
			},
		},
		"generatedBy": ValueNode{Value: "central"},
	}

	out, err := Redact(payload, shared.Caller{Role: shared.RoleClient, ID: "c1"})
	require.NoError(t, err)

	obj, ok := out.(ObjectNode)
	require.True(t, ok)
	assert.Equal(t, ValueNode{Value: "central"}, obj["generatedBy"])

	list, ok := obj["orders"].(ListNode)
	require.True(t, ok)
	require.Len(t, list, 1)
	order := list[0].(ObjectNode)
	assert.NotContains(t, order, "courierPayout")
	assert.NotContains(t, order, "platformCommission")
	assert.Equal(t, ValueNode{Value: 60}, order["customerTotal"])
}

func TestRedact_NonOrderObjectsPassThrough(t *testing.T) {
	payload := ObjectNode{"id": ValueNode{Value: "x"}, "status": ValueNode{Value: "ok"}}

	out, err := Redact(payload, shared.Caller{Role: shared.RoleMotoboy, ID: "m1"})
	require.NoError(t, err)

	assert.Equal(t, payload, out)
}

func TestRedact_DoesNotMutateInput(t *testing.T) {
	view := mappedView(t, withCourier(newOrder("o1", "c1", "10.00", "50"), "m1"))

	_, err := RedactViews([]OrderView{view}, shared.Caller{Role: shared.RoleClient, ID: "c1"})
	require.NoError(t, err)

	assert.False(t, view.Redacted())
	assert.True(t, view.Visible(FieldCourierPayout))
}

func TestRedact_NodesMarshal(t *testing.T) {
	view := mappedView(t, newOrder("o1", "c1", "10.00", "50"))
	payload := ObjectNode{"items": ListNode{OrderNode{View: view}}, "count": ValueNode{Value: 1}}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"customerTotal":60`)
	assert.Contains(t, string(raw), `"count":1`)
}
