package models

// CartItem is a cart line: product reference and quantity
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Cart maps user to cart lines
type Cart struct {
	UserID uint64
	Items  []CartItem
}
