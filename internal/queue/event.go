// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published after a booking commits, from both
// the direct API flow and the chat assistant.  It carries enough for
// downstream consumers to log, notify, or feed analytics without
// querying the primary database.
type BookingCreatedEvent struct {
	Reference      string `json:"reference"`
	UserID         uint64 `json:"user_id,omitempty"` // zero for guest chat bookings
	MuseumID       uint64 `json:"museum_id"`
	TotalCostCents uint32 `json:"total_cost_cents"`
	Source         string `json:"source"` // api or chat
	ValidUntil     string `json:"valid_until"`
	CreatedAt      string `json:"created_at"`
}
