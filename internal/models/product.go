package models

import "time"

// Product is catalog product entity
type Product struct {
	ID        string
	Name      string
	Price     float64
	CreatedAt time.Time
}
