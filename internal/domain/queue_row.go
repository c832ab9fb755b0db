package domain

import (
	"fmt"
	"strconv"
	"time"
)

// EventType identifies what happened upstream. The composer maps each type
// to user-facing text; unknown types get a generic fallback.
type EventType string

const (
	EventOrderCreated   EventType = "order_created"
	EventOrderAssigned  EventType = "order_assigned"
	EventDriverNearby   EventType = "driver_nearby"
	EventOrderReady     EventType = "order_ready"
	EventOrderCancelled EventType = "order_cancelled"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventOrderCreated, EventOrderAssigned, EventDriverNearby,
		EventOrderReady, EventOrderCancelled:
		return true
	}
	return false
}

// RecipientType is the indirect-audience hint used when a queue row carries
// no direct user id. Resolution strategies are registered per type.
type RecipientType string

const (
	RecipientRestaurant RecipientType = "restaurant"
)

// Status tracks the lifecycle of a queue row.
// Transitions are pending→sent or pending→failed; both are terminal.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// QueueRow is one persisted notification intent. Rows are written by the
// order/business services and consumed exactly once by the dispatch worker.
// JSON tags match the column names emitted by the insert trigger's
// row_to_json payload.
type QueueRow struct {
	ID              int64          `json:"id"`
	EventType       EventType      `json:"event_type"`
	RecipientUserID *string        `json:"recipient_user_id,omitempty"`
	RecipientType   *RecipientType `json:"recipient_type,omitempty"`
	Payload         map[string]any `json:"payload"`
	Status          Status         `json:"status"`
	Attempted       int            `json:"attempted"`
	LastAttempt     *time.Time     `json:"last_attempt,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// OrderID returns the payload's order identifier as a string, or "" when
// absent. JSON numbers are rendered without an exponent so a bigint id
// round-trips as the client expects.
func (r *QueueRow) OrderID() string {
	v, ok := r.Payload["order_id"]
	if !ok || v == nil {
		return ""
	}
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

// PayloadString returns the payload value under key as a string, or ""
// when the key is missing or not a string.
func (r *QueueRow) PayloadString(key string) string {
	s, _ := r.Payload[key].(string)
	return s
}

// DeviceToken is one installed-app push registration. Tokens are created by
// the registration flow; the worker only ever flips enabled to false.
type DeviceToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// DeliveryQuote is the result of the geospatial cost computation proxied by
// the delivery endpoint.
type DeliveryQuote struct {
	DistanceM  float64 `json:"distance_m"`
	DistanceKm float64 `json:"distance_km"`
	ChargedKm  float64 `json:"charged_km"`
	Cost       float64 `json:"cost"`
}
