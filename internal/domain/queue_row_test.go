package domain_test

import (
	"testing"

	"github.com/plateful/delivery-notifier/internal/domain"
)

func TestQueueRow_OrderID(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		want    string
	}{
		{"string id", map[string]any{"order_id": "ord-17"}, "ord-17"},
		{"json number", map[string]any{"order_id": float64(1042)}, "1042"},
		{"large number stays plain", map[string]any{"order_id": float64(9000000001)}, "9000000001"},
		{"absent", map[string]any{}, ""},
		{"explicit null", map[string]any{"order_id": nil}, ""},
		{"nil payload", nil, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			row := domain.QueueRow{Payload: tc.payload}
			if got := row.OrderID(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestQueueRow_PayloadString(t *testing.T) {
	row := domain.QueueRow{Payload: map[string]any{
		"restaurant_id": "a2b9",
		"count":         float64(3),
	}}

	if got := row.PayloadString("restaurant_id"); got != "a2b9" {
		t.Fatalf("expected a2b9, got %q", got)
	}
	if got := row.PayloadString("count"); got != "" {
		t.Fatalf("expected empty string for non-string value, got %q", got)
	}
	if got := row.PayloadString("missing"); got != "" {
		t.Fatalf("expected empty string for missing key, got %q", got)
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if domain.StatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
	if !domain.StatusSent.IsTerminal() {
		t.Fatal("sent must be terminal")
	}
	if !domain.StatusFailed.IsTerminal() {
		t.Fatal("failed must be terminal")
	}
}

func TestEventType_IsValid(t *testing.T) {
	for _, e := range []domain.EventType{
		domain.EventOrderCreated,
		domain.EventOrderAssigned,
		domain.EventDriverNearby,
		domain.EventOrderReady,
		domain.EventOrderCancelled,
	} {
		if !e.IsValid() {
			t.Fatalf("expected %s to be valid", e)
		}
	}
	if domain.EventType("order_teleported").IsValid() {
		t.Fatal("unknown event type must not be valid")
	}
}
