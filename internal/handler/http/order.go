package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/WebUp-555/ecommerce-api/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderService interface {
	// Checkout creates a pending order from the user cart and opens
	// a gateway payment session for it
	Checkout(ctx context.Context, userID uint64) (*models.Checkout, error)
	// ConfirmPayment verifies a client-reported payment completion
	ConfirmPayment(ctx context.Context, userID uint64, params service.ConfirmPaymentParams) (*models.Order, error)
	// ListUserOrders returns page of orders of user
	ListUserOrders(ctx context.Context, userID uint64, filter models.OrderFilter) ([]models.Order, int64, error)
	// GetUserOrder returns order of user by id
	GetUserOrder(ctx context.Context, userID uint64, orderID string) (*models.Order, error)
	// CancelUserOrder cancels order of user
	CancelUserOrder(ctx context.Context, userID uint64, orderID, reason string) (*models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type checkoutResponse struct {
	OrderID         string `json:"orderId"`
	RazorpayOrderID string `json:"razorpayOrderId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Key             string `json:"key"`
}

// Checkout creates order from user cart
// 200 — order created, payment session is open;
// 400 — cart is empty or amount is invalid;
// 401 — user is not authenticated;
// 502 — payment gateway failure;
// 500 — internal server error.
func (oh *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		checkout, err := oh.svc.Checkout(r.Context(), payload.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrEmptyCart):
				http.Error(w, "cart is empty", http.StatusBadRequest)
			case errors.Is(err, models.ErrInvalidAmount):
				http.Error(w, "invalid amount", http.StatusBadRequest)
			case errors.Is(err, models.ErrProductMissing):
				http.Error(w, "product not found in cart", http.StatusNotFound)
			case errors.Is(err, models.ErrPaymentGateway):
				http.Error(w, "payment gateway error", http.StatusBadGateway)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, checkoutResponse{
			OrderID:         checkout.OrderID,
			RazorpayOrderID: checkout.RazorpayOrderID,
			Amount:          checkout.Amount,
			Currency:        checkout.Currency,
			Key:             checkout.Key,
		})
	}
}

type verifyPaymentRequest struct {
	OrderID           string `json:"orderId"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// VerifyPayment confirms client-reported payment
// 200 — payment verified, order is paid;
// 400 — missing fields, order mismatch or verification failure;
// 401 — user is not authenticated;
// 404 — order not found;
// 500 — internal server error.
func (oh *OrderHandler) VerifyPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req verifyPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if req.OrderID == "" || req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
			http.Error(w, "missing payment fields", http.StatusBadRequest)
			return
		}

		order, err := oh.svc.ConfirmPayment(r.Context(), payload.UserID, service.ConfirmPaymentParams{
			OrderID:           req.OrderID,
			RazorpayOrderID:   req.RazorpayOrderID,
			RazorpayPaymentID: req.RazorpayPaymentID,
			RazorpaySignature: req.RazorpaySignature,
		})
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrOrderMismatch):
				http.Error(w, "gateway order id mismatch", http.StatusBadRequest)
			case errors.Is(err, models.ErrPaymentVerificationFailed):
				http.Error(w, "payment verification failed", http.StatusBadRequest)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// ListMyOrders returns page of user orders with optional status filter
// 200 — successful request processing;
// 400 — invalid status filter;
// 401 — user is not authenticated;
// 500 — internal server error.
func (oh *OrderHandler) ListMyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filter, err := parseOrderFilter(r)
		if err != nil {
			http.Error(w, "invalid status value", http.StatusBadRequest)
			return
		}

		orders, total, err := oh.svc.ListUserOrders(r.Context(), payload.UserID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, newListOrdersResponse(orders, total, normalizedFilter(filter)))
	}
}

// GetMyOrder returns user order by id
// 200 — successful request processing;
// 401 — user is not authenticated;
// 404 — order not found or owned by another user;
// 500 — internal server error.
func (oh *OrderHandler) GetMyOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		order, err := oh.svc.GetUserOrder(r.Context(), payload.UserID, chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

type cancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CancelMyOrder cancels user order
// 200 — order cancelled;
// 400 — order is not cancellable;
// 401 — user is not authenticated;
// 404 — order not found or owned by another user;
// 500 — internal server error.
func (oh *OrderHandler) CancelMyOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req cancelOrderRequest
		if r.Body != nil {
			// body is optional
			_ = json.NewDecoder(r.Body).Decode(&req)
			defer r.Body.Close()
		}

		order, err := oh.svc.CancelUserOrder(r.Context(), payload.UserID, chi.URLParam(r, "id"), req.Reason)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrOrderNotCancellable):
				http.Error(w, "order cannot be cancelled", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "order was modified concurrently", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, newOrderResponse(order))
	}
}

// parseOrderFilter extracts page, limit and optional status from query params
func parseOrderFilter(r *http.Request) (models.OrderFilter, error) {
	filter := models.OrderFilter{}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		filter.Limit = limit
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status, err := models.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}

	return filter, nil
}

// normalizedFilter mirrors service-side page defaults for the response envelope
func normalizedFilter(f models.OrderFilter) models.OrderFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}
