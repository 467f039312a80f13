package models

// BookingState selects a subset of bookings for list views.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// BookingStates lists every accepted state in declaration order.
var BookingStates = []BookingState{
	StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected,
}

// TimeLayout is the wire format of every timestamp: local time, no offset.
const TimeLayout = "2006-01-02T15:04:05"

// UserIDHeader identifies the acting user on every request.
const UserIDHeader = "X-Sharer-User-Id"

const (
	// NotificationQueueSize is the capacity of the in-memory notification channel
	NotificationQueueSize = 128

	// UserRateLimitRequests is the default number of writes per window per user
	UserRateLimitRequests = 60

	// UserRateLimitWindow is the default quota window in seconds
	UserRateLimitWindow = 60
)
