package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"AWAITING_PAYMENT", StatusAwaitingPayment},
		{"PAID", StatusPaid},
		{" SHIPPING ", StatusShipping},
		{"Chờ thanh toán", StatusAwaitingPayment},
		{"Đã thanh toán", StatusPaid},
		{"Đã giao thành công", StatusDelivered},
		{"Đã giao", StatusDelivered},
		{"Hoàn thành", StatusDelivered},
		{"Đã trả hàng", StatusReturned},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStatusUnknown(t *testing.T) {
	_, err := ParseStatus("TELEPORTED")
	assert.Error(t, err)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"awaiting to paid", StatusAwaitingPayment, StatusPaid, true},
		{"paid to preparing", StatusPaid, StatusPreparing, true},
		{"preparing to shipping", StatusPreparing, StatusShipping, true},
		{"shipping to delivered", StatusShipping, StatusDelivered, true},
		{"delivered to returned", StatusDelivered, StatusReturned, true},

		{"no skipping ahead", StatusAwaitingPayment, StatusShipping, false},
		{"no going back", StatusShipping, StatusPaid, false},
		{"delivered is final except return", StatusDelivered, StatusShipping, false},
		{"cancelled is final", StatusCancelled, StatusPaid, false},
		{"cancelled cannot be returned", StatusCancelled, StatusReturned, false},
		{"returned is final", StatusReturned, StatusDelivered, false},

		{"cancel while awaiting", StatusAwaitingPayment, StatusCancelled, true},
		{"cancel while shipping", StatusShipping, StatusCancelled, true},
		{"return while paid", StatusPaid, StatusReturned, true},

		{"same state is a no-op", StatusPaid, StatusPaid, true},
		{"unknown target", StatusPaid, Status("LOST"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusReturned.Terminal())
	assert.False(t, StatusAwaitingPayment.Terminal())
	assert.False(t, StatusShipping.Terminal())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Đang giao hàng", StatusShipping.Label())
	// Unknown values fall back to the raw token instead of an empty label.
	assert.Equal(t, "LOST", Status("LOST").Label())
}
