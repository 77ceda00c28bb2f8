package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/WebUp-555/ecommerce-api/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	selectCartQuery = `
						SELECT items FROM carts
						WHERE user_id = $1
`
	clearCartQuery = `
						UPDATE carts
						SET items = '[]'::jsonb, updated_at = now()
						WHERE user_id = $1
`
)

// CartRepository provides access to cart storage
type CartRepository struct {
	db *postgres.DB
}

// NewCartRepository creates new CartRepository instance
func NewCartRepository(db *postgres.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetCart returns cart items of user. Missing cart is reported as ErrDataNotFound.
func (cr *CartRepository) GetCart(ctx context.Context, userID uint64) ([]models.CartItem, error) {
	var raw []byte
	err := cr.db.QueryRow(ctx, selectCartQuery, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	var items []models.CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// ClearCart sets cart items of user to empty
func (cr *CartRepository) ClearCart(ctx context.Context, userID uint64) error {
	_, err := cr.db.Exec(ctx, clearCartQuery, userID)
	return err
}
