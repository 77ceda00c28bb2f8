package models

import "time"

// OrderItem is a line item snapshot taken at order creation time.
// Name and Price are decoupled from live product data and never updated.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// Order is order entity
type Order struct {
	ID                string
	UserID            uint64
	Items             []OrderItem
	Amount            float64
	Status            Status
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
	CancelledAt       *time.Time
	CancelReason      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderFilter narrows order listing
type OrderFilter struct {
	// UserID filters by owner; zero value means all users
	UserID uint64
	// Status filters by status; empty means any
	Status Status
	Page   int
	Limit  int
}

// Offset returns row offset of the filter page
func (f OrderFilter) Offset() int {
	page := f.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * f.Limit
}

// Checkout is data the client needs to open the gateway payment UI
type Checkout struct {
	OrderID         string
	RazorpayOrderID string
	// Amount is in minor currency units (paise)
	Amount   int64
	Currency string
	Key      string
}
