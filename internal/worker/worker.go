package worker

import (
	"context"
	"time"

	"github.com/WebUp-555/ecommerce-api/internal/logger"
)

type OrderService interface {
	ExpirePendingOrders(ctx context.Context, ttl time.Duration) error
}

// OrderExpirer is worker that fails abandoned unpaid orders
type OrderExpirer struct {
	svc OrderService
	ttl time.Duration
}

// NewOrderExpirer creates new order expirer
func NewOrderExpirer(svc OrderService, ttl time.Duration) *OrderExpirer {
	return &OrderExpirer{svc: svc, ttl: ttl}
}

// Run expires stale pending orders until ctx is done.
// A zero ttl disables the worker.
func (oe *OrderExpirer) Run(ctx context.Context) {
	if oe.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("order expirer is done")
			return
		case <-ticker.C:
			if err := oe.svc.ExpirePendingOrders(ctx, oe.ttl); err != nil {
				logger.Log.Error("error expiring pending orders")
			}
		}
	}
}
