package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"sellerId"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Price       Money     `json:"price"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	SoftDelete
}

// Variant is a purchasable sub-configuration of a product with its own price
// adjustment and stock.
type Variant struct {
	ID              string `json:"id"`
	ProductID       string `json:"productId"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	PriceAdjustment Money  `json:"priceAdjustment"`
	Stock           int    `json:"stock"`
}

// UnitPrice is the price a cart item snapshots at add time: the product price
// plus the variant adjustment when a variant is chosen.
func (p Product) UnitPrice(v *Variant) Money {
	if v == nil {
		return p.Price
	}
	return p.Price.Add(v.PriceAdjustment)
}

// AvailableStock is the stock limit the cart validates against: the larger of
// the product's stock and the chosen variant's own stock.
func (p Product) AvailableStock(v *Variant) int {
	if v == nil {
		return p.Stock
	}
	if v.Stock > p.Stock {
		return v.Stock
	}
	return p.Stock
}
