package order

import (
	"fmt"
	"strings"
)

// Status is the closed set of order states. The database stores the canonical
// token; the Vietnamese labels are display vocabulary rendered at the edges.
type Status string

const (
	StatusAwaitingPayment Status = "AWAITING_PAYMENT"
	StatusPaid            Status = "PAID"
	StatusPreparing       Status = "PREPARING"
	StatusShipping        Status = "SHIPPING"
	StatusDelivered       Status = "DELIVERED"
	StatusCancelled       Status = "CANCELLED"
	StatusReturned        Status = "RETURNED"
)

var statusLabels = map[Status]string{
	StatusAwaitingPayment: "Chờ thanh toán",
	StatusPaid:            "Đã thanh toán",
	StatusPreparing:       "Đang chuẩn bị hàng",
	StatusShipping:        "Đang giao hàng",
	StatusDelivered:       "Đã giao thành công",
	StatusCancelled:       "Đã hủy",
	StatusReturned:        "Trả hàng",
}

// Legacy data and operators use a few spellings for the same state; they all
// normalize to one canonical status.
var statusAliases = map[string]Status{
	"Đã giao":    StatusDelivered,
	"Hoàn thành": StatusDelivered,
	"Đã trả hàng": StatusReturned,
}

// Label returns the Vietnamese display label.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Known reports whether s is one of the defined states.
func (s Status) Known() bool {
	_, ok := statusLabels[s]
	return ok
}

// Terminal states admit no forward movement; only Delivered may still flow
// into Returned.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled || s == StatusReturned
}

// ParseStatus accepts a canonical token or a Vietnamese label (including
// delivered-state synonyms), trimming incidental whitespace.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)

	if s := Status(raw); s.Known() {
		return s, nil
	}
	for s, label := range statusLabels {
		if raw == label {
			return s, nil
		}
	}
	if s, ok := statusAliases[raw]; ok {
		return s, nil
	}

	return "", fmt.Errorf("unknown order status %q", raw)
}

// transitions is the allowed forward flow. Cancellation and return from any
// non-terminal state are handled in CanTransitionTo rather than listed per
// state.
var transitions = map[Status]map[Status]bool{
	StatusAwaitingPayment: {StatusPaid: true},
	StatusPaid:            {StatusPreparing: true},
	StatusPreparing:       {StatusShipping: true},
	StatusShipping:        {StatusDelivered: true},
	StatusDelivered:       {StatusReturned: true},
}

// CanTransitionTo reports whether the move is in the transition table.
// Administrators can bypass this gate with an explicit force flag; the bypass
// lives in the service layer so it stays a visible escape hatch.
func (s Status) CanTransitionTo(to Status) bool {
	if !to.Known() {
		return false
	}
	if s == to {
		return true
	}
	if (to == StatusCancelled || to == StatusReturned) && !s.Terminal() {
		return true
	}
	return transitions[s][to]
}
