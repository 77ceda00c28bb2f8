package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowed is the expected transition table, spelled out independently
// of the production table so drift in either direction fails the test.
var allowed = map[Status]map[Status]bool{
	StatusPendingPayment: {StatusPaid: true, StatusFailed: true, StatusCancelled: true},
	StatusPaid:           {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing:     {StatusShipped: true, StatusCancelled: true},
	StatusShipped:        {StatusDelivered: true},
	StatusDelivered:      {},
	StatusCancelled:      {},
	StatusFailed:         {},
}

func TestStatus_CanTransition_FullTable(t *testing.T) {
	for _, from := range Statuses() {
		for _, to := range Statuses() {
			got := from.CanTransition(to)
			want := allowed[from][to]
			assert.Equalf(t, want, got, "transition %s -> %s", from, to)
		}
	}
}

func TestStatus_Terminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusDelivered: true,
		StatusCancelled: true,
		StatusFailed:    true,
	}

	for _, s := range Statuses() {
		assert.Equalf(t, terminal[s], s.Terminal(), "terminal %s", s)
	}
}

func TestStatus_Cancellable(t *testing.T) {
	cancellable := map[Status]bool{
		StatusPendingPayment: true,
		StatusPaid:           true,
		StatusProcessing:     true,
	}

	for _, s := range Statuses() {
		assert.Equalf(t, cancellable[s], s.Cancellable(), "cancellable %s", s)
	}
}

func TestStatus_Deletable(t *testing.T) {
	deletable := map[Status]bool{
		StatusPendingPayment: true,
		StatusFailed:         true,
	}

	for _, s := range Statuses() {
		assert.Equalf(t, deletable[s], s.Deletable(), "deletable %s", s)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses() {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	for _, s := range []string{"", "PAID", "Pending_Payment", "accepted", "CREATED", "unknown"} {
		_, err := ParseStatus(s)
		assert.ErrorIsf(t, err, ErrInvalidStatus, "status %q", s)
	}
}

func TestInvalidTransitionError(t *testing.T) {
	err := NewInvalidTransitionError(StatusDelivered, StatusCancelled)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "cannot change status from delivered to cancelled", err.Error())

	var transitionErr InvalidTransitionError
	require.True(t, errors.As(err, &transitionErr))
	assert.Equal(t, StatusDelivered, transitionErr.From)
	assert.Equal(t, StatusCancelled, transitionErr.To)
}
