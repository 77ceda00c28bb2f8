package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/WebUp-555/ecommerce-api/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const pgErrUniqueViolationCode = "23505"

const (
	orderColumns = `id, user_id, items, amount, status, razorpay_order_id, razorpay_payment_id,
						razorpay_signature, cancelled_at, cancel_reason, created_at, updated_at`

	insertOrderQuery = `
						INSERT INTO orders (id, user_id, items, amount, status, razorpay_order_id)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING created_at, updated_at
`
	selectOrderByIDQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE id = $1
`
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE id = $2 AND status = $3
`
	updateOrderPaymentQuery = `
						UPDATE orders
						SET status = $1, razorpay_payment_id = $2, razorpay_signature = $3, updated_at = now()
						WHERE id = $4 AND status = $5
`
	cancelOrderQuery = `
						UPDATE orders
						SET status = $1, cancelled_at = $2, cancel_reason = $3, updated_at = now()
						WHERE id = $4 AND status = ANY($5)
`
	deleteOrderQuery = `
						DELETE FROM orders
						WHERE id = $1 AND status = ANY($2)
`
	expirePendingOrdersQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE status = $2 AND created_at < $3
`
)

// OrderRepository provides access to order storage
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order to database
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	err = or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.UserID, items, order.Amount, order.Status, order.RazorpayOrderID,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return order, nil
}

// ListOrders returns filtered page of orders, newest first, and the total count
func (or *OrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	where := "WHERE true"
	args := []any{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int64
	if err := or.db.QueryRow(ctx, "SELECT count(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, len(args)-1, len(args))

	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateOrderStatus moves order from one status to another.
// The update is conditional on the current status so that concurrent
// attempts are serialized by the store; a lost race returns ErrConflictData.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, from, to models.Status) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, to, id, from)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// UpdateOrderPayment marks pending order paid and records gateway payment id and signature
func (or *OrderRepository) UpdateOrderPayment(ctx context.Context, id, paymentID, signature string) error {
	cmd, err := or.db.Exec(ctx, updateOrderPaymentQuery,
		models.StatusPaid, paymentID, signature, id, models.StatusPendingPayment)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// CancelOrder cancels order recording timestamp and reason.
// Only cancellable statuses are touched.
func (or *OrderRepository) CancelOrder(ctx context.Context, id, reason string, at time.Time) error {
	statuses := []string{
		models.StatusPendingPayment.String(),
		models.StatusPaid.String(),
		models.StatusProcessing.String(),
	}

	cmd, err := or.db.Exec(ctx, cancelOrderQuery, models.StatusCancelled, at, reason, id, statuses)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// DeleteOrder hard-deletes order while it is still unpaid or failed
func (or *OrderRepository) DeleteOrder(ctx context.Context, id string) error {
	statuses := []string{
		models.StatusPendingPayment.String(),
		models.StatusFailed.String(),
	}

	cmd, err := or.db.Exec(ctx, deleteOrderQuery, id, statuses)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrConflictData
	}

	return nil
}

// ExpirePendingOrders fails pending orders created before deadline
func (or *OrderRepository) ExpirePendingOrders(ctx context.Context, deadline time.Time) (int64, error) {
	cmd, err := or.db.Exec(ctx, expirePendingOrdersQuery,
		models.StatusFailed, models.StatusPendingPayment, deadline)
	if err != nil {
		return 0, err
	}

	return cmd.RowsAffected(), nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var items []byte

	err := row.Scan(&order.ID, &order.UserID, &items, &order.Amount, &order.Status,
		&order.RazorpayOrderID, &order.RazorpayPaymentID, &order.RazorpaySignature,
		&order.CancelledAt, &order.CancelReason, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}

	return &order, nil
}
