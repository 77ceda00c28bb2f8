package models

import "fmt"

// Status is order status
type Status string

// order status flow:
// pending_payment -> paid -> processing -> shipped -> delivered
// pending_payment, paid and processing can be cancelled
// delivered, cancelled and failed are terminal
const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusDelivered      Status = "delivered"
	StatusCancelled      Status = "cancelled"
	StatusFailed         Status = "failed"
)

// transitions is the single allowed-transition table.
// Every code path that mutates order status must consult it.
var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid, StatusFailed, StatusCancelled},
	StatusPaid:           {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
	StatusFailed:         {},
}

// cancellableStatuses are statuses from which an order may be cancelled
var cancellableStatuses = []Status{StatusPendingPayment, StatusPaid, StatusProcessing}

// deletableStatuses are statuses in which an order may be hard-deleted
var deletableStatuses = []Status{StatusPendingPayment, StatusFailed}

// ParseStatus converts string to Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// String returns status as string
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a member of the status set
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no transition leaves s
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether s -> to is allowed
func (s Status) CanTransition(to Status) bool {
	for _, t := range transitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an order in s may be cancelled
func (s Status) Cancellable() bool {
	for _, t := range cancellableStatuses {
		if t == s {
			return true
		}
	}
	return false
}

// Deletable reports whether an order in s may be hard-deleted
func (s Status) Deletable() bool {
	for _, t := range deletableStatuses {
		if t == s {
			return true
		}
	}
	return false
}

// Statuses returns all order statuses
func Statuses() []Status {
	return []Status{
		StatusPendingPayment,
		StatusPaid,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusFailed,
	}
}
