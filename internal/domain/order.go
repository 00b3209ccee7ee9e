package domain

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// orderTransitions is the reachable-next-states table. Re-entering the current
// state is treated as an idempotent no-op, not a transition.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderRefunded},
	OrderDelivered:  {OrderRefunded},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentPaid:    {PaymentRefunded, PaymentPartiallyRefunded},
	PaymentFailed:  {PaymentPending},
}

// Address is a point-in-time copy stored on the order, never a live reference.
type Address struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItem snapshots product name, SKU and unit price at purchase time so
// later product edits never alter historical orders.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
	ProductID   string  `json:"productId"`
	VariantID   *string `json:"variantId,omitempty"`
	ProductName string  `json:"productName"`
	SKU         string  `json:"sku"`
	Quantity    int     `json:"quantity"`
	UnitPrice   Money   `json:"unitPrice"`
}

// NewOrderItemFromCartItem is the snapshot constructor: the only way an order
// line comes into existence.
func NewOrderItemFromCartItem(id, orderID string, ci CartItem) OrderItem {
	return OrderItem{
		ID:          id,
		OrderID:     orderID,
		ProductID:   ci.ProductID,
		VariantID:   ci.VariantID,
		ProductName: ci.ProductName,
		SKU:         ci.SKU,
		Quantity:    ci.Quantity,
		UnitPrice:   ci.UnitPrice,
	}
}

// TotalPrice is unit price times quantity.
func (i OrderItem) TotalPrice() Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

type Order struct {
	ID            string  `json:"id"`
	Number        string  `json:"number"`
	UserID        string  `json:"userId"`
	SellerID      *string `json:"sellerId,omitempty"`
	MarketplaceID *string `json:"marketplaceId,omitempty"`

	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`

	Currency   string `json:"currency"`
	Subtotal   Money  `json:"subtotal"`
	Tax        Money  `json:"tax"`
	Shipping   Money  `json:"shipping"`
	Discount   Money  `json:"discount"`
	Commission Money  `json:"commission"`
	Total      Money  `json:"total"`

	BillingAddress  Address `json:"billingAddress"`
	ShippingAddress Address `json:"shippingAddress"`

	Items []OrderItem `json:"items,omitempty"`

	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	ShippedAt   *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	SoftDelete
}

// NewOrder builds a pending order with zeroed aggregates.
func NewOrder(id, number, userID, currency string, now time.Time) *Order {
	z := Zero(currency)
	return &Order{
		ID:            id,
		Number:        number,
		UserID:        userID,
		Status:        OrderPending,
		PaymentStatus: PaymentPending,
		Currency:      currency,
		Subtotal:      z,
		Tax:           z,
		Shipping:      z,
		Discount:      z,
		Commission:    z,
		Total:         z,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// SetStatus moves the order to a new status. Setting the current status again
// is a no-op that still bumps UpdatedAt; an unreachable target returns
// ErrInvalidTransition. On first entry into confirmed, shipped, delivered or
// cancelled the matching timestamp is set, and only then.
func (o *Order) SetStatus(status OrderStatus, now time.Time) error {
	if status == o.Status {
		o.UpdatedAt = now
		return nil
	}
	if !statusReachable(orderTransitions[o.Status], status) {
		return ErrInvalidTransition
	}
	o.Status = status
	o.UpdatedAt = now
	switch status {
	case OrderConfirmed:
		setOnce(&o.ConfirmedAt, now)
	case OrderShipped:
		setOnce(&o.ShippedAt, now)
	case OrderDelivered:
		setOnce(&o.DeliveredAt, now)
	case OrderCancelled:
		setOnce(&o.CancelledAt, now)
	}
	return nil
}

// SetPaymentStatus moves the orthogonal payment machine.
func (o *Order) SetPaymentStatus(status PaymentStatus, now time.Time) error {
	if status == o.PaymentStatus {
		o.UpdatedAt = now
		return nil
	}
	if !statusReachable(paymentTransitions[o.PaymentStatus], status) {
		return ErrInvalidTransition
	}
	o.PaymentStatus = status
	o.UpdatedAt = now
	return nil
}

// CanBeCancelled reports whether cancellation is still reachable: only while
// pending, confirmed or processing.
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderPending, OrderConfirmed, OrderProcessing:
		return true
	}
	return false
}

// CalculateTotals derives subtotal and total from the order lines. Commission
// is deducted from the seller's payable, never from the customer-facing total.
func (o *Order) CalculateTotals() {
	subtotal := Zero(o.Currency)
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice())
	}
	o.Subtotal = subtotal
	o.Total = o.Subtotal.Add(o.Tax).Add(o.Shipping).Sub(o.Discount)
}

// CalculateCommission sets the order's commission from the seller's effective
// rate. Silently returns when seller or marketplace is absent; callers that
// need the gap surfaced go through CommissionForOrder instead.
func (o *Order) CalculateCommission(seller *Seller, marketplace *Marketplace) {
	if seller == nil || marketplace == nil || o.SellerID == nil || o.MarketplaceID == nil {
		return
	}
	o.Commission = o.Subtotal.Percent(seller.EffectiveCommissionRate(*marketplace))
}

func statusReachable[T comparable](next []T, target T) bool {
	for _, s := range next {
		if s == target {
			return true
		}
	}
	return false
}

func setOnce(field **time.Time, now time.Time) {
	if *field == nil {
		t := now
		*field = &t
	}
}
