package repository

import (
	"context"
	"errors"

	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/WebUp-555/ecommerce-api/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	selectProductByIDQuery = `
						SELECT id, name, price, created_at FROM products
						WHERE id = $1
`
)

// ProductRepository provides access to product storage
type ProductRepository struct {
	db *postgres.DB
}

// NewProductRepository creates new ProductRepository instance
func NewProductRepository(db *postgres.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetProduct returns product by id
func (pr *ProductRepository) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product := models.Product{}
	err := pr.db.QueryRow(ctx, selectProductByIDQuery, id).Scan(
		&product.ID, &product.Name, &product.Price, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &product, nil
}
