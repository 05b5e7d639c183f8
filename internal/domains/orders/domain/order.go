package domain

import (
	"errors"
	"time"
)

// Status enumerates order progression.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusConfirmed  Status = "confirmed"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
	StatusFailed     Status = "failed"
)

// PaymentStatus tracks the payment leg independently of fulfillment.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// ItemType tags what kind of thing a line item purchases.
type ItemType string

const (
	ItemCourse  ItemType = "course"
	ItemProduct ItemType = "product"
	ItemService ItemType = "service"
)

var (
	ErrEmptyItems          = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("item quantity must be greater than zero")
	ErrInvalidPrice        = errors.New("item unit price must not be negative")
	ErrInvalidItemType     = errors.New("item type is invalid")
	ErrInvalidTransition   = errors.New("order status transition is not allowed")
	ErrNotCancellable      = errors.New("order can no longer be cancelled")
	ErrNotRefundable       = errors.New("order is not in a refundable state")
	ErrTransactionMismatch = errors.New("order already settled with a different transaction")
	ErrNegativeTotal       = errors.New("order total must not be negative")
)

// transitions holds the allowed status moves. Terminal states map to nil.
// refunded is reachable only from paid/completed via Refund.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusPaid, StatusCompleted, StatusFailed, StatusCancelled},
	StatusPaid:       {StatusConfirmed, StatusCompleted, StatusRefunded},
	StatusConfirmed:  {StatusDelivering},
	StatusDelivering: {StatusDelivered},
	StatusDelivered:  {StatusCompleted},
	StatusCompleted:  {StatusRefunded},
	StatusCancelled:  nil,
	StatusRefunded:   nil,
	StatusFailed:     {StatusCancelled},
}

// CanTransitionTo reports whether the move is allowed by the state machine.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsValid reports whether the status is a known state.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// OrderItem is a line owned by its order; RefID points at the purchased
// course, product, or service. UnitPrice is in minor currency units and is a
// snapshot taken at order time. Discount is informational at the order level;
// only the invoice subtracts it per line.
type OrderItem struct {
	Type      ItemType
	RefID     string
	Name      string
	PartnerID string
	Category  string
	UnitPrice int64
	Quantity  int
	Discount  int64
}

// Physical reports whether the item needs fulfillment and shipping.
func (i OrderItem) Physical() bool {
	return i.Type == ItemProduct
}

func (i OrderItem) validate() error {
	switch i.Type {
	case ItemCourse, ItemProduct, ItemService:
	default:
		return ErrInvalidItemType
	}
	if i.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if i.UnitPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// ShippingInfo is present only for orders carrying physical items.
type ShippingInfo struct {
	Recipient string
	Phone     string
	Address   string
	City      string
	Fee       int64
}

// Order is the aggregate root. All money fields are integers in minor
// currency units and satisfy Total == Subtotal - Discount + Tax + ShippingFee.
type Order struct {
	ID          uint64
	OrderNo     string
	UserID      string
	Items       []OrderItem
	Subtotal    int64
	Discount    int64
	ShippingFee int64
	Tax         int64
	Total       int64
	Currency    string

	Status        Status
	PaymentStatus PaymentStatus

	PaymentMethod    string
	PaymentReference string
	TransactionID    string

	Shipping *ShippingInfo
	Notes    []string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time
}

// NewOrder validates items, applies the pricing breakdown plus shipping fee,
// and returns a pending aggregate.
func NewOrder(orderNo, userID string, items []OrderItem, pricing PricingBreakdown, shipping *ShippingInfo) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range items {
		if err := item.validate(); err != nil {
			return nil, err
		}
	}
	var shippingFee int64
	if shipping != nil {
		shippingFee = shipping.Fee
	}
	now := time.Now()
	order := &Order{
		OrderNo:       orderNo,
		UserID:        userID,
		Items:         append([]OrderItem(nil), items...),
		Subtotal:      pricing.Subtotal,
		Discount:      pricing.Discount,
		ShippingFee:   shippingFee,
		Tax:           pricing.Tax,
		Total:         pricing.Total + shippingFee,
		Currency:      "VND",
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Shipping:      shipping,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if order.Total < 0 {
		return nil, ErrNegativeTotal
	}
	return order, nil
}

// TransitionTo enforces the state machine before applying the move.
func (o *Order) TransitionTo(target Status) error {
	if !o.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// AllDigital reports whether no item requires physical fulfillment.
func (o *Order) AllDigital() bool {
	for _, item := range o.Items {
		if item.Physical() {
			return false
		}
	}
	return true
}

// BeginPayment records the gateway handoff. The order must still be pending;
// a payment can be initiated once, retries need a fresh order.
func (o *Order) BeginPayment(method, reference string) error {
	if o.Status != StatusPending {
		return ErrInvalidTransition
	}
	o.Status = StatusProcessing
	o.PaymentStatus = PaymentProcessing
	o.PaymentMethod = method
	o.PaymentReference = reference
	o.UpdatedAt = time.Now()
	return nil
}

// SettlementState classifies a ConfirmPayment outcome for idempotent callers.
type SettlementState int

const (
	// SettlementApplied means this call transitioned the order.
	SettlementApplied SettlementState = iota
	// SettlementDuplicate means the same transaction already settled the order.
	SettlementDuplicate
)

// ConfirmPayment settles the payment leg. Calling it again with the same
// transaction id is a no-op; a terminal order with a different transaction id
// is an anomaly surfaced as ErrTransactionMismatch. Digital-only orders
// auto-complete because they need no fulfillment step.
func (o *Order) ConfirmPayment(transactionID, method string) (SettlementState, error) {
	if o.PaymentStatus == PaymentCompleted {
		if o.TransactionID == transactionID {
			return SettlementDuplicate, nil
		}
		return SettlementDuplicate, ErrTransactionMismatch
	}
	target := StatusPaid
	if o.AllDigital() {
		target = StatusCompleted
	}
	if !o.Status.CanTransitionTo(target) {
		return SettlementApplied, ErrInvalidTransition
	}
	now := time.Now()
	o.Status = target
	o.PaymentStatus = PaymentCompleted
	o.TransactionID = transactionID
	if method != "" {
		o.PaymentMethod = method
	}
	if o.PaidAt == nil {
		o.PaidAt = &now
	}
	if target == StatusCompleted && o.CompletedAt == nil {
		o.CompletedAt = &now
	}
	o.UpdatedAt = now
	return SettlementApplied, nil
}

// MarkPaymentFailed records a gateway-reported failure.
func (o *Order) MarkPaymentFailed(message string) error {
	if err := o.TransitionTo(StatusFailed); err != nil {
		return err
	}
	o.PaymentStatus = PaymentFailed
	if message != "" {
		o.AppendNote(message)
	}
	return nil
}

// Cancel is allowed before money has settled. The reason is appended to
// notes, never overwriting earlier entries.
func (o *Order) Cancel(reason string) error {
	switch o.Status {
	case StatusPaid, StatusCompleted, StatusCancelled, StatusConfirmed, StatusDelivering, StatusDelivered, StatusRefunded:
		return ErrNotCancellable
	}
	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	if reason != "" {
		o.AppendNote("cancelled: " + reason)
	}
	return nil
}

// Refund moves a settled order to refunded.
func (o *Order) Refund() error {
	if o.Status != StatusPaid && o.Status != StatusCompleted {
		return ErrNotRefundable
	}
	o.Status = StatusRefunded
	o.PaymentStatus = PaymentRefunded
	o.UpdatedAt = time.Now()
	return nil
}

// AdvanceFulfillment drives the physical delivery sub-chain
// (confirmed -> delivering -> delivered -> completed) via the guarded map.
func (o *Order) AdvanceFulfillment(target Status) error {
	switch target {
	case StatusConfirmed, StatusDelivering, StatusDelivered, StatusCompleted:
	default:
		return ErrInvalidTransition
	}
	if err := o.TransitionTo(target); err != nil {
		return err
	}
	if target == StatusCompleted && o.CompletedAt == nil {
		now := time.Now()
		o.CompletedAt = &now
	}
	return nil
}

// AppendNote adds an audit note without touching existing ones.
func (o *Order) AppendNote(note string) {
	o.Notes = append(o.Notes, note)
}

// OwnedBy checks order ownership for access control at the edges.
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}
