package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/WebUp-555/ecommerce-api/internal/models"
	"github.com/go-chi/chi/v5"
)

type AdminOrderService interface {
	// ListOrders returns page of all orders
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, int64, error)
	// GetOrder returns any order by id
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	// UpdateStatus transitions order to target status
	UpdateStatus(ctx context.Context, orderID string, target models.Status) (*models.Order, error)
	// CancelOrder cancels any order
	CancelOrder(ctx context.Context, orderID, reason string) (*models.Order, error)
	// DeleteOrder hard-deletes unpaid or failed order
	DeleteOrder(ctx context.Context, orderID string) error
}

// AdminOrderHandler represents HTTP handler for admin order management
type AdminOrderHandler struct {
	svc AdminOrderService
}

// NewAdminOrderHandler creates new AdminOrderHandler instance
func NewAdminOrderHandler(svc AdminOrderService) *AdminOrderHandler {
	return &AdminOrderHandler{svc: svc}
}

// ListOrders returns page of all orders with optional status filter
// 200 — successful request processing;
// 400 — invalid status filter;
// 401 — user is not authenticated;
// 403 — user is not an admin;
// 500 — internal server error.
func (ah *AdminOrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseOrderFilter(r)
		if err != nil {
			http.Error(w, "invalid status value", http.StatusBadRequest)
			return
		}

		orders, total, err := ah.svc.ListOrders(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, newListOrdersResponse(orders, total, normalizedFilter(filter)))
	}
}

// GetOrder returns any order by id
// 200 — successful request processing;
// 401 — user is not authenticated;
// 403 — user is not an admin;
// 404 — order not found;
// 500 — internal server error.
func (ah *AdminOrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := ah.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
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

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus updates order status with transition validation
// 200 — status updated;
// 400 — unknown status value or transition is not allowed;
// 401 — user is not authenticated;
// 403 — user is not an admin;
// 404 — order not found;
// 409 — order was modified concurrently;
// 500 — internal server error.
func (ah *AdminOrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		status, err := models.ParseStatus(req.Status)
		if err != nil {
			http.Error(w, "invalid status value", http.StatusBadRequest)
			return
		}

		order, err := ah.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, err.Error(), http.StatusBadRequest)
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

// CancelOrder cancels any order
// 200 — order cancelled;
// 400 — order is not cancellable;
// 401 — user is not authenticated;
// 403 — user is not an admin;
// 404 — order not found;
// 500 — internal server error.
func (ah *AdminOrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cancelOrderRequest
		if r.Body != nil {
			// body is optional
			_ = json.NewDecoder(r.Body).Decode(&req)
			defer r.Body.Close()
		}

		order, err := ah.svc.CancelOrder(r.Context(), chi.URLParam(r, "id"), req.Reason)
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

// DeleteOrder hard-deletes order that is still unpaid or failed
// 200 — order deleted;
// 400 — order is not deletable;
// 401 — user is not authenticated;
// 403 — user is not an admin;
// 404 — order not found;
// 500 — internal server error.
func (ah *AdminOrderHandler) DeleteOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := ah.svc.DeleteOrder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			switch {
			case errors.Is(err, models.ErrDataNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrOrderNotDeletable):
				http.Error(w, "only unpaid or failed orders can be deleted", http.StatusBadRequest)
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "order was modified concurrently", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusOK)
	}
}
