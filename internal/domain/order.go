package domain

import (
	"fmt"
	"strings"
	"time"
)

// OrderState enumerates the fulfillment lifecycle.
type OrderState string

const (
	OrderPending          OrderState = "PENDING"
	OrderConfirmed        OrderState = "CONFIRMED"
	OrderPaymentProcessed OrderState = "PAYMENT_PROCESSED"
	OrderPreparing        OrderState = "PREPARING"
	OrderShipped          OrderState = "SHIPPED"
	OrderInTransit        OrderState = "IN_TRANSIT"
	OrderDelivered        OrderState = "DELIVERED"
	OrderCancelled        OrderState = "CANCELLED"
)

// orderTransitions is the full transition table: a linear fulfillment path
// with CANCELLED reachable from every state strictly before SHIPPED.
var orderTransitions = map[OrderState][]OrderState{
	OrderPending:          {OrderConfirmed, OrderCancelled},
	OrderConfirmed:        {OrderPaymentProcessed, OrderCancelled},
	OrderPaymentProcessed: {OrderPreparing, OrderCancelled},
	OrderPreparing:        {OrderShipped, OrderCancelled},
	OrderShipped:          {OrderInTransit, OrderDelivered},
	OrderInTransit:        {OrderDelivered},
	OrderDelivered:        {},
	OrderCancelled:        {},
}

// systemActor tags history entries produced by aggregate operations.
const systemActor = "system"

// defaultPaymentMethod labels the opaque recorded payment; the shop does
// not execute payments itself.
const defaultPaymentMethod = "online"

// StateChange is one append-only history entry of an order transition.
type StateChange struct {
	From   OrderState
	To     OrderState
	At     time.Time
	Reason string
	Actor  string
}

// PaymentSummary records the opaque payment reference for an order.
type PaymentSummary struct {
	Method      string
	Reference   string
	Approved    bool
	ProcessedAt time.Time
}

// ShippingInfo records the carrier hand-off for an order.
type ShippingInfo struct {
	TrackingNumber string
	Carrier        string
	ShippedAt      time.Time
}

// Order is the fulfillment aggregate root. Items and total are fixed at
// creation; the state machine walks the fulfillment path and every
// successful transition appends to the state history.
type Order struct {
	id          OrderID
	orderNumber string
	clientID    ClientID
	items       []OrderItem
	address     ShippingAddress
	createdAt   time.Time
	state       OrderState
	total       Money
	payment     *PaymentSummary
	shipping    *ShippingInfo
	history     []StateChange
}

// NewOrder builds a PENDING order from captured items. The item list must
// not be empty, all items must share the first item's currency and the
// computed total must be positive.
func NewOrder(clientID ClientID, items []OrderItem, address ShippingAddress) (*Order, error) {
	if clientID.IsZero() {
		return nil, NewValidationError("order client id is required")
	}
	if len(items) == 0 {
		return nil, NewBusinessRuleError("order must contain at least one item")
	}
	total := ZeroMoney(items[0].UnitPrice().Currency())
	for _, item := range items {
		sum, err := total.Add(item.Subtotal())
		if err != nil {
			return nil, NewBusinessRuleError("order items must share one currency: %s vs %s",
				total.Currency(), item.UnitPrice().Currency())
		}
		total = sum
	}
	if !total.IsPositive() {
		return nil, NewBusinessRuleError("order total must be positive, got %s", total)
	}
	now := time.Now().UTC()
	id := NewOrderID()
	return &Order{
		id:          id,
		orderNumber: newOrderNumber(id, now),
		clientID:    clientID,
		items:       append([]OrderItem(nil), items...),
		address:     address,
		createdAt:   now,
		state:       OrderPending,
		total:       total,
	}, nil
}

func newOrderNumber(id OrderID, at time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("ORD-%s-%s", at.Format("20060102"), short)
}

// ReconstituteOrder rebuilds a persisted order with full validation,
// including the recomputed total matching the stored one.
func ReconstituteOrder(
	id OrderID,
	orderNumber string,
	clientID ClientID,
	items []OrderItem,
	address ShippingAddress,
	createdAt time.Time,
	state OrderState,
	total Money,
	payment *PaymentSummary,
	shipping *ShippingInfo,
	history []StateChange,
) (*Order, error) {
	if id.IsZero() {
		return nil, NewValidationError("order id is required")
	}
	if strings.TrimSpace(orderNumber) == "" {
		return nil, NewValidationError("order number is required")
	}
	if clientID.IsZero() {
		return nil, NewValidationError("order client id is required")
	}
	if len(items) == 0 {
		return nil, NewBusinessRuleError("order must contain at least one item")
	}
	if _, ok := orderTransitions[state]; !ok {
		return nil, NewValidationError("unknown order state %q", state)
	}
	if !total.IsPositive() {
		return nil, NewBusinessRuleError("order total must be positive, got %s", total)
	}
	o := &Order{
		id:          id,
		orderNumber: orderNumber,
		clientID:    clientID,
		items:       append([]OrderItem(nil), items...),
		address:     address,
		createdAt:   createdAt,
		state:       state,
		total:       total,
		history:     append([]StateChange(nil), history...),
	}
	if payment != nil {
		p := *payment
		o.payment = &p
	}
	if shipping != nil {
		s := *shipping
		o.shipping = &s
	}
	return o, nil
}

func (o *Order) ID() OrderID              { return o.id }
func (o *Order) OrderNumber() string      { return o.orderNumber }
func (o *Order) ClientID() ClientID       { return o.clientID }
func (o *Order) Address() ShippingAddress { return o.address }
func (o *Order) CreatedAt() time.Time     { return o.createdAt }
func (o *Order) State() OrderState        { return o.state }
func (o *Order) Total() Money             { return o.total }

// Items returns a read-only snapshot of the order lines.
func (o *Order) Items() []OrderItem {
	return append([]OrderItem(nil), o.items...)
}

// History returns a read-only snapshot of the state changes.
func (o *Order) History() []StateChange {
	return append([]StateChange(nil), o.history...)
}

// Payment returns a copy of the recorded payment summary, or nil.
func (o *Order) Payment() *PaymentSummary {
	if o.payment == nil {
		return nil
	}
	p := *o.payment
	return &p
}

// Shipping returns a copy of the recorded shipping info, or nil.
func (o *Order) Shipping() *ShippingInfo {
	if o.shipping == nil {
		return nil
	}
	s := *o.shipping
	return &s
}

// Confirm moves a pending order to CONFIRMED.
func (o *Order) Confirm() error {
	return o.transition(OrderConfirmed, "order confirmed")
}

// ProcessPayment records the opaque payment reference and moves the order
// to PAYMENT_PROCESSED. The reference must not be blank.
func (o *Order) ProcessPayment(reference string) error {
	if strings.TrimSpace(reference) == "" {
		return NewBusinessRuleError("payment reference must not be blank")
	}
	if err := o.transition(OrderPaymentProcessed, "payment recorded"); err != nil {
		return err
	}
	o.payment = &PaymentSummary{
		Method:      defaultPaymentMethod,
		Reference:   reference,
		Approved:    true,
		ProcessedAt: time.Now().UTC(),
	}
	return nil
}

// MarkPreparing moves a paid order to PREPARING.
func (o *Order) MarkPreparing() error {
	return o.transition(OrderPreparing, "preparing shipment")
}

// MarkShipped records the carrier hand-off and moves the order to SHIPPED.
func (o *Order) MarkShipped(trackingNumber, carrier string) error {
	if strings.TrimSpace(trackingNumber) == "" {
		return NewBusinessRuleError("tracking number must not be blank")
	}
	if strings.TrimSpace(carrier) == "" {
		return NewBusinessRuleError("carrier must not be blank")
	}
	if err := o.transition(OrderShipped, "handed to carrier "+carrier); err != nil {
		return err
	}
	o.shipping = &ShippingInfo{
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
		ShippedAt:      time.Now().UTC(),
	}
	return nil
}

// MarkInTransit moves a shipped order to IN_TRANSIT.
func (o *Order) MarkInTransit() error {
	return o.transition(OrderInTransit, "in transit")
}

// MarkDelivered closes the order from SHIPPED or IN_TRANSIT.
func (o *Order) MarkDelivered() error {
	return o.transition(OrderDelivered, "delivered")
}

// Cancel aborts the order with the given reason. Orders already handed to
// the carrier can no longer be cancelled.
func (o *Order) Cancel(reason string) error {
	switch o.state {
	case OrderShipped, OrderInTransit, OrderDelivered:
		return NewBusinessRuleError("order %s cannot be cancelled once %s", o.orderNumber, o.state)
	}
	if strings.TrimSpace(reason) == "" {
		reason = "order cancelled"
	}
	return o.transition(OrderCancelled, reason)
}

func (o *Order) transition(to OrderState, reason string) error {
	for _, allowed := range orderTransitions[o.state] {
		if allowed == to {
			o.history = append(o.history, StateChange{
				From:   o.state,
				To:     to,
				At:     time.Now().UTC(),
				Reason: reason,
				Actor:  systemActor,
			})
			o.state = to
			return nil
		}
	}
	return NewIllegalStateError("order %s cannot go from %s to %s", o.orderNumber, o.state, to)
}
