package relay

import "errors"

// Dispatch rejection errors. Each maps to a stable reason code callers
// can branch on.
var (
	ErrUnknownRelay      = errors.New("unknown relay")
	ErrAlreadyActive     = errors.New("relay already active")
	ErrCapacityExhausted = errors.New("max concurrent triggers reached")
)

// Stable reason codes surfaced to HTTP clients and telemetry.
const (
	ReasonUnknownRelay      = "unknown_relay"
	ReasonAlreadyActive     = "already_active"
	ReasonCapacityExhausted = "capacity_exhausted"
)

// ReasonCode returns the stable reason code for a dispatch rejection.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrUnknownRelay):
		return ReasonUnknownRelay
	case errors.Is(err, ErrAlreadyActive):
		return ReasonAlreadyActive
	case errors.Is(err, ErrCapacityExhausted):
		return ReasonCapacityExhausted
	default:
		return "internal_error"
	}
}
