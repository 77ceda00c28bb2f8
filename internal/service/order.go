package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/WebUp-555/ecommerce-api/internal/logger"
	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/WebUp-555/ecommerce-api/internal/razorpay"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	orderCurrency = "INR"

	defaultPageLimit = 10
	maxPageLimit     = 100

	cancelledByUser  = "cancelled by user"
	cancelledByAdmin = "cancelled by admin"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// ListOrders returns filtered page of orders and the total count
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	// UpdateOrderStatus moves order from one status to another
	UpdateOrderStatus(ctx context.Context, id string, from, to models.Status) error
	// UpdateOrderPayment marks pending order paid and records payment id and signature
	UpdateOrderPayment(ctx context.Context, id, paymentID, signature string) error
	// CancelOrder cancels order recording timestamp and reason
	CancelOrder(ctx context.Context, id, reason string, at time.Time) error
	// DeleteOrder hard-deletes unpaid or failed order
	DeleteOrder(ctx context.Context, id string) error
	// ExpirePendingOrders fails pending orders created before deadline
	ExpirePendingOrders(ctx context.Context, deadline time.Time) (int64, error)
}

// CartRepository is interface for interacting with cart-related data
type CartRepository interface {
	// GetCart returns cart items of user
	GetCart(ctx context.Context, userID uint64) ([]models.CartItem, error)
	// ClearCart sets cart items of user to empty
	ClearCart(ctx context.Context, userID uint64) error
}

// ProductRepository is interface for interacting with product-related data
type ProductRepository interface {
	// GetProduct returns product by id
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// PaymentGateway opens payment sessions with the hosted gateway
type PaymentGateway interface {
	// CreateOrder opens payment session for amount in minor units
	// and returns the gateway order id
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
}

// ConfirmPaymentParams is client-reported payment completion
type ConfirmPaymentParams struct {
	OrderID           string
	RazorpayOrderID   string
	RazorpayPaymentID string
	RazorpaySignature string
}

// OrderService orchestrates order creation and payment confirmation
type OrderService struct {
	orders    OrderRepository
	carts     CartRepository
	products  ProductRepository
	gateway   PaymentGateway
	keyID     string
	keySecret string
}

// NewOrderService creates new OrderService instance
func NewOrderService(orders OrderRepository, carts CartRepository, products ProductRepository,
	gateway PaymentGateway, keyID, keySecret string) *OrderService {
	return &OrderService{
		orders:    orders,
		carts:     carts,
		products:  products,
		gateway:   gateway,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

// Checkout creates a pending order from the user cart and opens a gateway
// payment session for it. Item name and price are snapshot at this moment;
// later product edits do not alter the order. The order row is inserted only
// after the gateway session is open, so a gateway failure persists nothing.
func (os *OrderService) Checkout(ctx context.Context, userID uint64) (*models.Checkout, error) {
	items, err := os.carts.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return nil, models.ErrEmptyCart
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	var amount float64
	orderItems := make([]models.OrderItem, 0, len(items))

	for _, item := range items {
		product, err := os.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				return nil, models.ErrProductMissing
			}
			return nil, err
		}

		if item.Quantity <= 0 {
			return nil, models.ErrInvalidAmount
		}

		amount += product.Price * float64(item.Quantity)

		orderItems = append(orderItems, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  item.Quantity,
		})
	}

	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	// gateway works in minor units (paise)
	amountMinor := int64(math.Round(amount * 100))
	receipt := "rcpt_" + uuid.NewString()

	gatewayOrderID, err := os.gateway.CreateOrder(ctx, amountMinor, orderCurrency, receipt)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           orderItems,
		Amount:          amount,
		Status:          models.StatusPendingPayment,
		RazorpayOrderID: gatewayOrderID,
	}

	if _, err := os.orders.CreateOrder(ctx, order); err != nil {
		// abandoned session expires on the gateway side
		return nil, err
	}

	return &models.Checkout{
		OrderID:         order.ID,
		RazorpayOrderID: gatewayOrderID,
		Amount:          amountMinor,
		Currency:        orderCurrency,
		Key:             os.keyID,
	}, nil
}

// ConfirmPayment verifies a client-reported payment completion.
// On a valid signature the order moves to paid and the cart is cleared;
// on an invalid one the order moves to failed. The paid update is
// conditional on the order still being pending, which serializes
// concurrent confirmation attempts.
func (os *OrderService) ConfirmPayment(ctx context.Context, userID uint64, params ConfirmPaymentParams) (*models.Order, error) {
	order, err := os.getOwnedOrder(ctx, userID, params.OrderID)
	if err != nil {
		return nil, err
	}

	// reject cross-order replay before touching anything
	if order.RazorpayOrderID != params.RazorpayOrderID {
		return nil, models.ErrOrderMismatch
	}

	// repeated confirmation of an already paid order is a no-op
	if order.Status == models.StatusPaid && order.RazorpayPaymentID == params.RazorpayPaymentID {
		return order, nil
	}

	if order.Status != models.StatusPendingPayment {
		return nil, models.NewInvalidTransitionError(order.Status, models.StatusPaid)
	}

	if !razorpay.VerifySignature(params.RazorpayOrderID, params.RazorpayPaymentID, params.RazorpaySignature, os.keySecret) {
		if err := os.orders.UpdateOrderStatus(ctx, order.ID, models.StatusPendingPayment, models.StatusFailed); err != nil {
			if !errors.Is(err, models.ErrConflictData) {
				return nil, err
			}
			// someone else already moved the order; the verdict stands
			logger.Log.Warn("lost race marking order failed", zap.String("order_id", order.ID))
		}
		return nil, models.ErrPaymentVerificationFailed
	}

	if err := os.orders.UpdateOrderPayment(ctx, order.ID, params.RazorpayPaymentID, params.RazorpaySignature); err != nil {
		if errors.Is(err, models.ErrConflictData) {
			// a concurrent confirm may have won with the same payment
			current, getErr := os.orders.GetOrderByID(ctx, order.ID)
			if getErr == nil && current.Status == models.StatusPaid && current.RazorpayPaymentID == params.RazorpayPaymentID {
				return current, nil
			}
		}
		return nil, err
	}

	order.Status = models.StatusPaid
	order.RazorpayPaymentID = params.RazorpayPaymentID
	order.RazorpaySignature = params.RazorpaySignature

	// best-effort side effect: payment is already confirmed, a failure
	// here is surfaced for reconciliation, not rolled back
	if err := os.carts.ClearCart(ctx, userID); err != nil {
		logger.Log.Error("clear cart after confirmed payment",
			zap.Uint64("user_id", userID),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	return order, nil
}

// ListUserOrders returns page of orders of user
func (os *OrderService) ListUserOrders(ctx context.Context, userID uint64, filter models.OrderFilter) ([]models.Order, int64, error) {
	filter.UserID = userID
	return os.orders.ListOrders(ctx, normalizeFilter(filter))
}

// GetUserOrder returns order of user by id
func (os *OrderService) GetUserOrder(ctx context.Context, userID uint64, orderID string) (*models.Order, error) {
	return os.getOwnedOrder(ctx, userID, orderID)
}

// CancelUserOrder cancels order of user
func (os *OrderService) CancelUserOrder(ctx context.Context, userID uint64, orderID, reason string) (*models.Order, error) {
	order, err := os.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = cancelledByUser
	}

	return os.cancel(ctx, order, reason)
}

// ListOrders returns page of all orders
func (os *OrderService) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	return os.orders.ListOrders(ctx, normalizeFilter(filter))
}

// GetOrder returns any order by id
func (os *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return os.orders.GetOrderByID(ctx, orderID)
}

// UpdateStatus transitions order to target status, validated against
// the allowed-transition table. Cancellation goes through CancelOrder
// so that timestamp and reason are always recorded.
func (os *OrderService) UpdateStatus(ctx context.Context, orderID string, target models.Status) (*models.Order, error) {
	if !target.Valid() {
		return nil, models.ErrInvalidStatus
	}

	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransition(target) {
		return nil, models.NewInvalidTransitionError(order.Status, target)
	}

	if target == models.StatusCancelled {
		return os.cancel(ctx, order, cancelledByAdmin)
	}

	if err := os.orders.UpdateOrderStatus(ctx, order.ID, order.Status, target); err != nil {
		return nil, err
	}

	return os.orders.GetOrderByID(ctx, order.ID)
}

// CancelOrder cancels any order
func (os *OrderService) CancelOrder(ctx context.Context, orderID, reason string) (*models.Order, error) {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = cancelledByAdmin
	}

	return os.cancel(ctx, order, reason)
}

// DeleteOrder hard-deletes order that is still unpaid or failed
func (os *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.Status.Deletable() {
		return models.ErrOrderNotDeletable
	}

	return os.orders.DeleteOrder(ctx, order.ID)
}

// ExpirePendingOrders fails pending orders older than ttl
func (os *OrderService) ExpirePendingOrders(ctx context.Context, ttl time.Duration) error {
	expired, err := os.orders.ExpirePendingOrders(ctx, time.Now().Add(-ttl))
	if err != nil {
		return err
	}

	if expired > 0 {
		logger.Log.Info("expired stale pending orders", zap.Int64("count", expired))
	}

	return nil
}

func (os *OrderService) cancel(ctx context.Context, order *models.Order, reason string) (*models.Order, error) {
	if !order.Status.Cancellable() {
		return nil, models.ErrOrderNotCancellable
	}

	if err := os.orders.CancelOrder(ctx, order.ID, reason, time.Now()); err != nil {
		return nil, err
	}

	return os.orders.GetOrderByID(ctx, order.ID)
}

// getOwnedOrder returns order only if it belongs to user;
// a foreign order is indistinguishable from a missing one
func (os *OrderService) getOwnedOrder(ctx context.Context, userID uint64, orderID string) (*models.Order, error) {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != userID {
		return nil, models.ErrDataNotFound
	}

	return order, nil
}

func normalizeFilter(f models.OrderFilter) models.OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageLimit
	}
	if f.Limit > maxPageLimit {
		f.Limit = maxPageLimit
	}
	return f
}
