package domain

import "time"

type CartItem struct {
	ID          string    `json:"id"`
	CartID      string    `json:"cartId"`
	ProductID   string    `json:"productId"`
	VariantID   *string   `json:"variantId,omitempty"`
	SellerID    string    `json:"sellerId"`
	ProductName string    `json:"productName"`
	SKU         string    `json:"sku"`
	Quantity    int       `json:"quantity"`
	UnitPrice   Money     `json:"unitPrice"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TotalPrice is unit price times quantity.
func (i CartItem) TotalPrice() Money {
	return i.UnitPrice.MulInt(i.Quantity)
}

// AppliedCoupon records one successful coupon application on a cart, including
// the discount computed against the subtotal at apply time.
type AppliedCoupon struct {
	CouponID  string       `json:"couponId"`
	Code      string       `json:"code"`
	Type      DiscountType `json:"type"`
	Value     string       `json:"value"`
	Discount  Money        `json:"discount"`
	AppliedAt time.Time    `json:"appliedAt"`
}

type Cart struct {
	ID             string          `json:"id"`
	UserID         *string         `json:"userId,omitempty"`
	SessionID      *string         `json:"-"`
	Currency       string          `json:"currency"`
	Items          []*CartItem     `json:"items,omitempty"`
	Subtotal       Money           `json:"subtotal"`
	Tax            Money           `json:"tax"`
	Shipping       Money           `json:"shipping"`
	Discount       Money           `json:"discount"`
	Total          Money           `json:"total"`
	AppliedCoupons []AppliedCoupon `json:"appliedCoupons,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	SoftDelete
}

// NewCart builds an empty cart in the given currency with zeroed aggregates.
func NewCart(id, currency string, now time.Time) *Cart {
	z := Zero(currency)
	return &Cart{
		ID:        id,
		Currency:  currency,
		Subtotal:  z,
		Tax:       z,
		Shipping:  z,
		Discount:  z,
		Total:     z,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem appends a line for (product, variant) or, if one already exists,
// increases its quantity. The unit price is snapshotted from the product and
// variant at add time and never recomputed. Returns ErrInvalidQuantity for
// quantity <= 0 and ErrInsufficientStock when the resulting quantity exceeds
// available stock; the cart is left unmodified on error.
//
// Aggregates are not recomputed here; callers invoke Recalculate after each
// mutation batch.
func (c *Cart) AddItem(itemID string, p Product, v *Variant, quantity int, now time.Time) (*CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	available := p.AvailableStock(v)
	if existing := c.findItem(p.ID, v); existing != nil {
		if existing.Quantity+quantity > available {
			return nil, ErrInsufficientStock
		}
		existing.Quantity += quantity
		c.UpdatedAt = now
		return existing, nil
	}
	if quantity > available {
		return nil, ErrInsufficientStock
	}
	item := &CartItem{
		ID:          itemID,
		CartID:      c.ID,
		ProductID:   p.ID,
		SellerID:    p.SellerID,
		ProductName: p.Name,
		SKU:         p.SKU,
		Quantity:    quantity,
		UnitPrice:   p.UnitPrice(v),
		CreatedAt:   now,
	}
	if v != nil {
		id := v.ID
		item.VariantID = &id
		item.SKU = v.SKU
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = now
	return item, nil
}

// UpdateQuantity sets an item's quantity, re-validating stock against the
// supplied product/variant pair.
func (c *Cart) UpdateQuantity(itemID string, p Product, v *Variant, quantity int, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	item := c.itemByID(itemID)
	if item == nil {
		return ErrNotFound
	}
	if quantity > p.AvailableStock(v) {
		return ErrInsufficientStock
	}
	item.Quantity = quantity
	c.UpdatedAt = now
	return nil
}

// RemoveItem drops the line with the given id.
func (c *Cart) RemoveItem(itemID string, now time.Time) error {
	for i, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = now
			return nil
		}
	}
	return ErrNotFound
}

// Clear removes every line and every applied coupon.
func (c *Cart) Clear(now time.Time) {
	c.Items = nil
	c.AppliedCoupons = nil
	c.UpdatedAt = now
}

// Recalculate recomputes subtotal, discount and total from the current lines
// and applied coupons. It is the only place aggregates are derived; every
// mutation batch must be followed by a call to it.
func (c *Cart) Recalculate() {
	subtotal := Zero(c.Currency)
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.TotalPrice())
	}
	c.Subtotal = subtotal
	discount := Zero(c.Currency)
	for _, ac := range c.AppliedCoupons {
		discount = discount.Add(ac.Discount)
	}
	c.Discount = discount
	c.Total = c.Subtotal.Add(c.Tax).Add(c.EffectiveShipping()).Sub(c.Discount)
}

// HasFreeShipping reports whether a free-shipping coupon is currently applied.
func (c *Cart) HasFreeShipping() bool {
	for _, ac := range c.AppliedCoupons {
		if ac.Type == DiscountFreeShipping {
			return true
		}
	}
	return false
}

// EffectiveShipping is the shipping charge after any free-shipping waiver. The
// stored Shipping amount is never mutated by coupons, so removing the coupon
// restores the original charge.
func (c *Cart) EffectiveShipping() Money {
	if c.HasFreeShipping() {
		return Zero(c.Currency)
	}
	return c.Shipping
}

// ApplyCoupon validates the coupon against this cart and, on success, records
// the application and the computed discount. Rejections (invalid coupon, code
// already applied, subtotal below the coupon minimum) return false and leave
// the cart untouched; this path is deliberately a no-op rather than an error
// so callers can surface a retryable message.
//
// Eligibility beyond the cart's knowledge (once-per-customer history) is the
// caller's job via CouponCode.CanBeUsedBy.
func (c *Cart) ApplyCoupon(coupon *CouponCode, now time.Time) bool {
	if coupon == nil || !coupon.IsValid(now) {
		return false
	}
	for _, ac := range c.AppliedCoupons {
		if ac.Code == coupon.Code {
			return false
		}
	}
	if coupon.MinimumOrderAmount != nil && c.Subtotal.LessThan(*coupon.MinimumOrderAmount) {
		return false
	}
	discount := coupon.DiscountAmount(c.Subtotal)
	c.AppliedCoupons = append(c.AppliedCoupons, AppliedCoupon{
		CouponID:  coupon.ID,
		Code:      coupon.Code,
		Type:      coupon.DiscountType,
		Value:     coupon.DiscountValue.String(),
		Discount:  discount,
		AppliedAt: now,
	})
	c.UpdatedAt = now
	return true
}

// RemoveCoupon filters out the application record for the given code. The
// discount aggregate follows on the next Recalculate.
func (c *Cart) RemoveCoupon(code string, now time.Time) {
	kept := c.AppliedCoupons[:0]
	for _, ac := range c.AppliedCoupons {
		if ac.Code != code {
			kept = append(kept, ac)
		}
	}
	if len(kept) == 0 {
		c.AppliedCoupons = nil
	} else {
		c.AppliedCoupons = kept
	}
	c.UpdatedAt = now
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// TotalItemCount is the sum of line quantities.
func (c *Cart) TotalItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// UniqueProductCount is the number of distinct product lines.
func (c *Cart) UniqueProductCount() int {
	seen := make(map[string]struct{}, len(c.Items))
	for _, item := range c.Items {
		seen[item.ProductID] = struct{}{}
	}
	return len(seen)
}

// SellerGroup is one seller's slice of a cart, used when checkout splits into
// one order per seller.
type SellerGroup struct {
	SellerID string
	Items    []*CartItem
	Subtotal Money
}

// ItemsBySeller groups lines by the seller of their product, with per-seller
// subtotals. Group order follows first appearance in the cart.
func (c *Cart) ItemsBySeller() []SellerGroup {
	index := make(map[string]int)
	var groups []SellerGroup
	for _, item := range c.Items {
		i, ok := index[item.SellerID]
		if !ok {
			i = len(groups)
			index[item.SellerID] = i
			groups = append(groups, SellerGroup{SellerID: item.SellerID, Subtotal: Zero(c.Currency)})
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Subtotal = groups[i].Subtotal.Add(item.TotalPrice())
	}
	return groups
}

// IsExpired reports whether the cart has been inactive longer than window.
func (c *Cart) IsExpired(now time.Time, window time.Duration) bool {
	return now.Sub(c.UpdatedAt) > window
}

func (c *Cart) findItem(productID string, v *Variant) *CartItem {
	for _, item := range c.Items {
		if item.ProductID != productID {
			continue
		}
		switch {
		case v == nil && item.VariantID == nil:
			return item
		case v != nil && item.VariantID != nil && *item.VariantID == v.ID:
			return item
		}
	}
	return nil
}

func (c *Cart) itemByID(id string) *CartItem {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}
