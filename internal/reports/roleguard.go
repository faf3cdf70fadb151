package reports

import (
	"encoding/json"
	"fmt"

	"github.com/guriri-express/dispatch/internal/shared"
)

// Fields removed per scoped role. Central sees everything.
var (
	clientHiddenFields = []Field{
		FieldCourierPayout,
		FieldPlatformCommission,
		FieldCourierRate,
		FieldMotoboyID,
		FieldMotoboyName,
		FieldIsSubscriber,
	}
	motoboyHiddenFields = []Field{
		FieldMerchandiseValue,
		FieldDeliveryValue,
		FieldCustomerTotal,
		FieldMerchantGross,
		FieldPlatformCommission,
		FieldIsSubscriber,
		FieldMerchandiseDeclared,
		FieldClientID,
		FieldClientName,
		FieldClientPhone,
	}
)

// HiddenFields returns the keys a role never sees.
func HiddenFields(role shared.Role) []Field {
	switch role {
	case shared.RoleClient:
		return append([]Field(nil), clientHiddenFields...)
	case shared.RoleMotoboy:
		return append([]Field(nil), motoboyHiddenFields...)
	default:
		return nil
	}
}

// Node is a response payload the guard can walk.
type Node interface {
	node()
}

// OrderNode carries a mapped order.
type OrderNode struct {
	View OrderView
}

// ListNode is an ordered collection.
type ListNode []Node

// ObjectNode is a keyed object. Objects holding id, clientId and status are
// treated as orders.
type ObjectNode map[string]Node

// ValueNode is any leaf value.
type ValueNode struct {
	Value any
}

func (OrderNode) node()  {}
func (ListNode) node()   {}
func (ObjectNode) node() {}
func (ValueNode) node()  {}

func (n OrderNode) MarshalJSON() ([]byte, error) { return json.Marshal(n.View) }
func (n ValueNode) MarshalJSON() ([]byte, error) { return json.Marshal(n.Value) }

// Redact scopes a payload to the caller. Central gets the payload back as is.
// Orders the caller does not own are dropped: from lists they disappear, as
// object members the key is removed, and at the top level the result is nil.
func Redact(n Node, caller shared.Caller) (Node, error) {
	if err := caller.Validate(); err != nil {
		return nil, err
	}
	if caller.Role == shared.RoleCentral {
		return n, nil
	}
	out, _ := redactNode(n, caller)
	return out, nil
}

func redactNode(n Node, caller shared.Caller) (Node, bool) {
	switch v := n.(type) {
	case nil:
		return nil, true
	case OrderNode:
		view, ok := redactView(v.View, caller)
		if !ok {
			return nil, false
		}
		return OrderNode{View: view}, true
	case ListNode:
		out := make(ListNode, 0, len(v))
		for _, item := range v {
			if kept, ok := redactNode(item, caller); ok {
				out = append(out, kept)
			}
		}
		return out, true
	case ObjectNode:
		if isOrderShaped(v) {
			return redactObject(v, caller)
		}
		out := make(ObjectNode, len(v))
		for key, item := range v {
			if kept, ok := redactNode(item, caller); ok {
				out[key] = kept
			}
		}
		return out, true
	default:
		return n, true
	}
}

func redactView(view OrderView, caller shared.Caller) (OrderView, bool) {
	if !ownsOrder(caller, view.Order.ClientID, view.Order.CourierID()) {
		return OrderView{}, false
	}
	return view.without(HiddenFields(caller.Role)), true
}

func redactObject(obj ObjectNode, caller shared.Caller) (Node, bool) {
	if !ownsOrder(caller, stringValue(obj[string(FieldClientID)]), stringValue(obj[string(FieldMotoboyID)])) {
		return nil, false
	}
	out := make(ObjectNode, len(obj))
	for key, item := range obj {
		out[key] = item
	}
	for _, f := range HiddenFields(caller.Role) {
		delete(out, string(f))
	}
	return out, true
}

func ownsOrder(caller shared.Caller, clientID, motoboyID string) bool {
	switch caller.Role {
	case shared.RoleCentral:
		return true
	case shared.RoleClient:
		return caller.Owns(clientID)
	case shared.RoleMotoboy:
		return caller.Owns(motoboyID)
	default:
		return false
	}
}

func isOrderShaped(obj ObjectNode) bool {
	for _, key := range []Field{FieldID, FieldClientID, FieldStatus} {
		if _, ok := obj[string(key)]; !ok {
			return false
		}
	}
	return true
}

func stringValue(n Node) string {
	v, ok := n.(ValueNode)
	if !ok {
		return ""
	}
	switch s := v.Value.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}

// RedactViews applies the guard to a list of mapped orders.
func RedactViews(views []OrderView, caller shared.Caller) ([]OrderView, error) {
	nodes := make(ListNode, len(views))
	for i, v := range views {
		nodes[i] = OrderNode{View: v}
	}
	out, err := Redact(nodes, caller)
	if err != nil {
		return nil, err
	}
	list, ok := out.(ListNode)
	if !ok {
		return nil, fmt.Errorf("reports: unexpected redaction result %T", out)
	}
	kept := make([]OrderView, 0, len(list))
	for _, n := range list {
		if o, ok := n.(OrderNode); ok {
			kept = append(kept, o.View)
		}
	}
	return kept, nil
}
