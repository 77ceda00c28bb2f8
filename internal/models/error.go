package models

import (
	"errors"
	"fmt"
)

var (
	ErrConflictData              = errors.New("data conflicts with existing data")
	ErrDataNotFound              = errors.New("data not found")
	ErrInternalError             = errors.New("internal error")
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrInvalidAmount             = errors.New("invalid order amount")
	ErrProductMissing            = errors.New("product not found in cart")
	ErrOrderMismatch             = errors.New("gateway order id mismatch")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	ErrPaymentGateway            = errors.New("payment gateway error")
	ErrInvalidStatus             = errors.New("invalid order status")
	ErrInvalidTransition         = errors.New("invalid status transition")
	ErrOrderNotCancellable       = errors.New("order cannot be cancelled")
	ErrOrderNotDeletable         = errors.New("only unpaid or failed orders can be deleted")
)

// InvalidTransitionError reports a rejected status transition
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

// Is makes the error match ErrInvalidTransition
func (e InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// NewInvalidTransitionError creates error for rejected from -> to transition
func NewInvalidTransitionError(from, to Status) error {
	return InvalidTransitionError{From: from, To: to}
}
