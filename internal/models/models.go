package models

import "time"

// Shop is a storefront a customer can order from. Coordinates are WGS84
// decimal degrees.
type Shop struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	OwnerID   string  `json:"owner_id"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Image     string  `json:"image,omitempty"`
}

// Item is a catalog entry belonging to exactly one shop. Stock is the only
// field mutated after creation outside of owner edits.
type Item struct {
	ID     string  `json:"id"`
	ShopID string  `json:"shop_id"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Stock  int     `json:"stock"`
	Image  string  `json:"image,omitempty"`
}

// CartEntry is a point-in-time copy of item fields plus a quantity, not a
// live reference. Price and name in a committed order reflect the moment of
// purchase regardless of later catalog edits.
type CartEntry struct {
	ItemID   string  `json:"item_id"`
	ShopID   string  `json:"shop_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns price times quantity for this entry.
func (e CartEntry) LineTotal() float64 {
	return e.Price * float64(e.Quantity)
}

// Order is the durable receipt written by a successful checkout. It is
// created exactly once per commit and never modified afterwards.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	ShopID     string      `json:"shop_id"`
	Items      []CartEntry `json:"items"`
	Total      float64     `json:"total"`
	CreatedAt  time.Time   `json:"created_at"`
}

// CartTotal sums line totals over a cart.
func CartTotal(entries []CartEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.LineTotal()
	}
	return total
}
