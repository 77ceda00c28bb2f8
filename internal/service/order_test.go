package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeySecret = "s3cr3t"

func sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// fakeOrders is an in-memory OrderRepository. Conditional updates behave
// like the SQL ones: a status guard that does not match reports ErrConflictData.
type fakeOrders struct {
	orders    map[string]*models.Order
	createErr error
}

func newFakeOrders(seed ...*models.Order) *fakeOrders {
	f := &fakeOrders{orders: map[string]*models.Order{}}
	for _, order := range seed {
		cp := *order
		f.orders[order.ID] = &cp
	}
	return f
}

func (f *fakeOrders) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	cp := *order
	f.orders[order.ID] = &cp
	return order, nil
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	cp := *order
	return &cp, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, filter models.OrderFilter) ([]models.Order, int64, error) {
	orders := []models.Order{}
	for _, order := range f.orders {
		if filter.UserID != 0 && order.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		orders = append(orders, *order)
	}
	return orders, int64(len(orders)), nil
}

func (f *fakeOrders) UpdateOrderStatus(_ context.Context, id string, from, to models.Status) error {
	order, ok := f.orders[id]
	if !ok || order.Status != from {
		return models.ErrConflictData
	}
	order.Status = to
	return nil
}

func (f *fakeOrders) UpdateOrderPayment(_ context.Context, id, paymentID, signature string) error {
	order, ok := f.orders[id]
	if !ok || order.Status != models.StatusPendingPayment {
		return models.ErrConflictData
	}
	order.Status = models.StatusPaid
	order.RazorpayPaymentID = paymentID
	order.RazorpaySignature = signature
	return nil
}

func (f *fakeOrders) CancelOrder(_ context.Context, id, reason string, at time.Time) error {
	order, ok := f.orders[id]
	if !ok || !order.Status.Cancellable() {
		return models.ErrConflictData
	}
	order.Status = models.StatusCancelled
	order.CancelledAt = &at
	order.CancelReason = reason
	return nil
}

func (f *fakeOrders) DeleteOrder(_ context.Context, id string) error {
	order, ok := f.orders[id]
	if !ok || !order.Status.Deletable() {
		return models.ErrConflictData
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrders) ExpirePendingOrders(_ context.Context, deadline time.Time) (int64, error) {
	var expired int64
	for _, order := range f.orders {
		if order.Status == models.StatusPendingPayment && order.CreatedAt.Before(deadline) {
			order.Status = models.StatusFailed
			expired++
		}
	}
	return expired, nil
}

type fakeCarts struct {
	items      []models.CartItem
	missing    bool
	clearErr   error
	clearCalls int
}

func (f *fakeCarts) GetCart(_ context.Context, _ uint64) ([]models.CartItem, error) {
	if f.missing {
		return nil, models.ErrDataNotFound
	}
	return f.items, nil
}

func (f *fakeCarts) ClearCart(_ context.Context, _ uint64) error {
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.items = []models.CartItem{}
	return nil
}

type fakeProducts struct {
	products map[string]models.Product
}

func (f *fakeProducts) GetProduct(_ context.Context, id string) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return &product, nil
}

type fakeGateway struct {
	orderID  string
	err      error
	calls    int
	amount   int64
	currency string
	receipt  string
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (string, error) {
	f.calls++
	f.amount = amount
	f.currency = currency
	f.receipt = receipt
	if f.err != nil {
		return "", f.err
	}
	return f.orderID, nil
}

func testProducts() *fakeProducts {
	return &fakeProducts{products: map[string]models.Product{
		"p1": {ID: "p1", Name: "keyboard", Price: 100},
		"p2": {ID: "p2", Name: "mouse", Price: 50},
	}}
}

func pendingOrder(id string, userID uint64) *models.Order {
	return &models.Order{
		ID:              id,
		UserID:          userID,
		Items:           []models.OrderItem{{ProductID: "p1", Name: "keyboard", Price: 100, Quantity: 2}},
		Amount:          250,
		Status:          models.StatusPendingPayment,
		RazorpayOrderID: "order_abc",
		CreatedAt:       time.Now(),
	}
}

func TestOrderService_Checkout(t *testing.T) {
	orders := newFakeOrders()
	carts := &fakeCarts{items: []models.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}}
	gateway := &fakeGateway{orderID: "order_abc"}

	svc := NewOrderService(orders, carts, testProducts(), gateway, "key_id", testKeySecret)

	checkout, err := svc.Checkout(context.Background(), 1)
	require.NoError(t, err)

	// 100*2 + 50*1 in rupees, gateway gets paise
	assert.Equal(t, int64(25000), checkout.Amount)
	assert.Equal(t, int64(25000), gateway.amount)
	assert.Equal(t, "INR", checkout.Currency)
	assert.Equal(t, "order_abc", checkout.RazorpayOrderID)
	assert.Equal(t, "key_id", checkout.Key)
	assert.True(t, strings.HasPrefix(gateway.receipt, "rcpt_"))

	order, err := orders.GetOrderByID(context.Background(), checkout.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, order.Status)
	assert.Equal(t, uint64(1), order.UserID)
	assert.Equal(t, float64(250), order.Amount)
	assert.Equal(t, "order_abc", order.RazorpayOrderID)
	assert.Equal(t, []models.OrderItem{
		{ProductID: "p1", Name: "keyboard", Price: 100, Quantity: 2},
		{ProductID: "p2", Name: "mouse", Price: 50, Quantity: 1},
	}, order.Items)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	tests := []struct {
		name  string
		carts *fakeCarts
	}{
		{name: "no_cart", carts: &fakeCarts{missing: true}},
		{name: "empty_items", carts: &fakeCarts{items: []models.CartItem{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{orderID: "order_abc"}
			svc := NewOrderService(newFakeOrders(), tt.carts, testProducts(), gateway, "key_id", testKeySecret)

			_, err := svc.Checkout(context.Background(), 1)
			assert.ErrorIs(t, err, models.ErrEmptyCart)
			assert.Zero(t, gateway.calls)
		})
	}
}

func TestOrderService_Checkout_ProductMissing(t *testing.T) {
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "deleted", Quantity: 1}}}
	gateway := &fakeGateway{orderID: "order_abc"}

	svc := NewOrderService(newFakeOrders(), carts, testProducts(), gateway, "key_id", testKeySecret)

	_, err := svc.Checkout(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrProductMissing)
	assert.Zero(t, gateway.calls)
}

func TestOrderService_Checkout_InvalidAmount(t *testing.T) {
	products := &fakeProducts{products: map[string]models.Product{
		"free": {ID: "free", Name: "sample", Price: 0},
	}}

	tests := []struct {
		name  string
		items []models.CartItem
	}{
		{name: "zero_quantity", items: []models.CartItem{{ProductID: "free", Quantity: 0}}},
		{name: "zero_total", items: []models.CartItem{{ProductID: "free", Quantity: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := &fakeGateway{orderID: "order_abc"}
			svc := NewOrderService(newFakeOrders(), &fakeCarts{items: tt.items}, products, gateway, "key_id", testKeySecret)

			_, err := svc.Checkout(context.Background(), 1)
			assert.ErrorIs(t, err, models.ErrInvalidAmount)
			assert.Zero(t, gateway.calls)
		})
	}
}

func TestOrderService_Checkout_GatewayError(t *testing.T) {
	orders := newFakeOrders()
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "p1", Quantity: 1}}}
	gateway := &fakeGateway{err: models.ErrPaymentGateway}

	svc := NewOrderService(orders, carts, testProducts(), gateway, "key_id", testKeySecret)

	_, err := svc.Checkout(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrPaymentGateway)

	// gateway failed before persistence, nothing must be stored
	assert.Empty(t, orders.orders)
}

func TestOrderService_Checkout_StorageError(t *testing.T) {
	orders := newFakeOrders()
	orders.createErr = errors.New("insert failed")
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "p1", Quantity: 1}}}

	svc := NewOrderService(orders, carts, testProducts(), &fakeGateway{orderID: "order_abc"}, "key_id", testKeySecret)

	_, err := svc.Checkout(context.Background(), 1)
	assert.Error(t, err)
}

func TestOrderService_ConfirmPayment_Valid(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "p1", Quantity: 2}}}

	svc := NewOrderService(orders, carts, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	order, err := svc.ConfirmPayment(context.Background(), 1, ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: sign("order_abc", "pay_123", testKeySecret),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPaid, order.Status)
	assert.Equal(t, "pay_123", order.RazorpayPaymentID)

	stored, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
	assert.Equal(t, "pay_123", stored.RazorpayPaymentID)

	assert.Equal(t, 1, carts.clearCalls)
	assert.Empty(t, carts.items)
}

func TestOrderService_ConfirmPayment_InvalidSignature(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "p1", Quantity: 2}}}

	svc := NewOrderService(orders, carts, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	_, err := svc.ConfirmPayment(context.Background(), 1, ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: "bogus",
	})
	assert.ErrorIs(t, err, models.ErrPaymentVerificationFailed)

	stored, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Empty(t, stored.RazorpayPaymentID)

	// cart stays intact on a failed verification
	assert.Zero(t, carts.clearCalls)
	assert.Len(t, carts.items, 1)
}

func TestOrderService_ConfirmPayment_OrderMismatch(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "p1", Quantity: 2}}}

	svc := NewOrderService(orders, carts, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	_, err := svc.ConfirmPayment(context.Background(), 1, ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_other",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: sign("order_other", "pay_123", testKeySecret),
	})
	assert.ErrorIs(t, err, models.ErrOrderMismatch)

	// mismatch is rejected before verification, status must not change
	stored, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, stored.Status)
	assert.Zero(t, carts.clearCalls)
}

func TestOrderService_ConfirmPayment_NotOwned(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	_, err := svc.ConfirmPayment(context.Background(), 2, ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: sign("order_abc", "pay_123", testKeySecret),
	})
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestOrderService_ConfirmPayment_Twice(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))
	carts := &fakeCarts{items: []models.CartItem{{ProductID: "p1", Quantity: 2}}}

	svc := NewOrderService(orders, carts, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	params := ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: sign("order_abc", "pay_123", testKeySecret),
	}

	_, err := svc.ConfirmPayment(context.Background(), 1, params)
	require.NoError(t, err)

	order, err := svc.ConfirmPayment(context.Background(), 1, params)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)

	// second confirmation is a no-op, the cart is not cleared again
	assert.Equal(t, 1, carts.clearCalls)
}

func TestOrderService_ConfirmPayment_NotPending(t *testing.T) {
	cancelled := pendingOrder("o1", 1)
	cancelled.Status = models.StatusCancelled
	orders := newFakeOrders(cancelled)

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	_, err := svc.ConfirmPayment(context.Background(), 1, ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: sign("order_abc", "pay_123", testKeySecret),
	})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestOrderService_ConfirmPayment_CartClearFailure(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))
	carts := &fakeCarts{
		items:    []models.CartItem{{ProductID: "p1", Quantity: 2}},
		clearErr: errors.New("cart store down"),
	}

	svc := NewOrderService(orders, carts, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	// payment is already confirmed, a cart clearing failure must not undo it
	order, err := svc.ConfirmPayment(context.Background(), 1, ConfirmPaymentParams{
		OrderID:           "o1",
		RazorpayOrderID:   "order_abc",
		RazorpayPaymentID: "pay_123",
		RazorpaySignature: sign("order_abc", "pay_123", testKeySecret),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, order.Status)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		from       models.Status
		target     models.Status
		wantErr    error
		wantStatus models.Status
	}{
		{name: "paid_to_processing", from: models.StatusPaid, target: models.StatusProcessing, wantStatus: models.StatusProcessing},
		{name: "processing_to_shipped", from: models.StatusProcessing, target: models.StatusShipped, wantStatus: models.StatusShipped},
		{name: "shipped_to_delivered", from: models.StatusShipped, target: models.StatusDelivered, wantStatus: models.StatusDelivered},
		{name: "delivered_to_cancelled_rejected", from: models.StatusDelivered, target: models.StatusCancelled, wantErr: models.ErrInvalidTransition, wantStatus: models.StatusDelivered},
		{name: "pending_to_shipped_rejected", from: models.StatusPendingPayment, target: models.StatusShipped, wantErr: models.ErrInvalidTransition, wantStatus: models.StatusPendingPayment},
		{name: "failed_is_terminal", from: models.StatusFailed, target: models.StatusPendingPayment, wantErr: models.ErrInvalidTransition, wantStatus: models.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := pendingOrder("o1", 1)
			order.Status = tt.from
			orders := newFakeOrders(order)

			svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

			_, err := svc.UpdateStatus(context.Background(), "o1", tt.target)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}

			stored, getErr := orders.GetOrderByID(context.Background(), "o1")
			require.NoError(t, getErr)
			assert.Equal(t, tt.wantStatus, stored.Status)
		})
	}
}

func TestOrderService_UpdateStatus_CancelRecordsReason(t *testing.T) {
	order := pendingOrder("o1", 1)
	order.Status = models.StatusPaid
	orders := newFakeOrders(order)

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	updated, err := svc.UpdateStatus(context.Background(), "o1", models.StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.Equal(t, "cancelled by admin", updated.CancelReason)
	assert.NotNil(t, updated.CancelledAt)
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	_, err := svc.UpdateStatus(context.Background(), "o1", models.Status("ACCEPTED"))
	assert.ErrorIs(t, err, models.ErrInvalidStatus)
}

func TestOrderService_CancelUserOrder(t *testing.T) {
	orders := newFakeOrders(pendingOrder("o1", 1))

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	order, err := svc.CancelUserOrder(context.Background(), 1, "o1", "")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.Equal(t, "cancelled by user", order.CancelReason)
	assert.NotNil(t, order.CancelledAt)
}

func TestOrderService_CancelUserOrder_NotCancellable(t *testing.T) {
	shipped := pendingOrder("o1", 1)
	shipped.Status = models.StatusShipped
	orders := newFakeOrders(shipped)

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	_, err := svc.CancelUserOrder(context.Background(), 1, "o1", "changed my mind")
	assert.ErrorIs(t, err, models.ErrOrderNotCancellable)

	stored, getErr := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, getErr)
	assert.Equal(t, models.StatusShipped, stored.Status)
}

func TestOrderService_DeleteOrder(t *testing.T) {
	failed := pendingOrder("o1", 1)
	failed.Status = models.StatusFailed
	paid := pendingOrder("o2", 1)
	paid.Status = models.StatusPaid
	orders := newFakeOrders(failed, paid)

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	require.NoError(t, svc.DeleteOrder(context.Background(), "o1"))
	_, err := orders.GetOrderByID(context.Background(), "o1")
	assert.ErrorIs(t, err, models.ErrDataNotFound)

	err = svc.DeleteOrder(context.Background(), "o2")
	assert.ErrorIs(t, err, models.ErrOrderNotDeletable)

	err = svc.DeleteOrder(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestOrderService_ListUserOrders_ScopedToUser(t *testing.T) {
	mine := pendingOrder("o1", 1)
	other := pendingOrder("o2", 2)
	orders := newFakeOrders(mine, other)

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	got, total, err := svc.ListUserOrders(context.Background(), 1, models.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, got, 1)
	assert.Equal(t, "o1", got[0].ID)
}

func TestOrderService_ExpirePendingOrders(t *testing.T) {
	stale := pendingOrder("o1", 1)
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	fresh := pendingOrder("o2", 1)
	orders := newFakeOrders(stale, fresh)

	svc := NewOrderService(orders, &fakeCarts{}, testProducts(), &fakeGateway{}, "key_id", testKeySecret)

	require.NoError(t, svc.ExpirePendingOrders(context.Background(), time.Hour))

	expired, err := orders.GetOrderByID(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, expired.Status)

	kept, err := orders.GetOrderByID(context.Background(), "o2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, kept.Status)
}
