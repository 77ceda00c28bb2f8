package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/WebUp-555/ecommerce-api/internal/middleware"
	"github.com/WebUp-555/ecommerce-api/internal/models"
)

type orderItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type orderResponse struct {
	ID                string              `json:"id"`
	Status            string              `json:"status"`
	Amount            float64             `json:"amount"`
	Items             []orderItemResponse `json:"items"`
	RazorpayOrderID   string              `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string              `json:"razorpay_payment_id,omitempty"`
	CancelledAt       string              `json:"cancelled_at,omitempty"`
	CancelReason      string              `json:"cancel_reason,omitempty"`
	CreatedAt         string              `json:"created_at"`
	UpdatedAt         string              `json:"updated_at"`
}

type listOrdersResponse struct {
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
	Orders []orderResponse `json:"orders"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}

	resp := orderResponse{
		ID:                order.ID,
		Status:            order.Status.String(),
		Amount:            order.Amount,
		Items:             items,
		RazorpayOrderID:   order.RazorpayOrderID,
		RazorpayPaymentID: order.RazorpayPaymentID,
		CancelReason:      order.CancelReason,
		CreatedAt:         order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         order.UpdatedAt.Format(time.RFC3339),
	}
	if order.CancelledAt != nil {
		resp.CancelledAt = order.CancelledAt.Format(time.RFC3339)
	}

	return resp
}

func newListOrdersResponse(orders []models.Order, total int64, filter models.OrderFilter) listOrdersResponse {
	resp := listOrdersResponse{
		Total:  total,
		Page:   filter.Page,
		Limit:  filter.Limit,
		Orders: make([]orderResponse, 0, len(orders)),
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, newOrderResponse(&orders[i]))
	}
	return resp
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return
	}
}

// getAuthPayload extracts authorization token payload from context
func getAuthPayload(ctx context.Context) (*models.TokenPayload, bool) {
	return middleware.AuthPayload(ctx)
}
