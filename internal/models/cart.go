package models

type Cart struct {
	UserID string     `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// CartItem is a snapshot of a product taken when it was added to the
// cart. Price and weight are frozen into the order at checkout, so a
// later catalog edit never changes an order already placed.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Weight    float64 `json:"weight"` // kilograms per unit
	ImageURL  string  `json:"image_url"`
}
