package message

import (
	"github.com/plateful/delivery-notifier/internal/domain"
)

// Message is the user-facing content of one push plus the machine-readable
// data payload the client app uses for routing.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Compose maps an event type and payload to notification content.
// It is a pure function: identical inputs always produce identical output,
// and unknown event types fall back to a generic update message.
// Adding a new event type means adding a case here and nothing else.
func Compose(row *domain.QueueRow) Message {
	title := "Update"
	body := "You have a new notification"

	switch row.EventType {
	case domain.EventOrderCreated:
		title = "طلب جديد"
		body = "تم استلام طلب جديد. رقم: " + row.OrderID()
	case domain.EventOrderAssigned:
		title = "طلب جديد - تم تعيينك"
		body = "تم تعيينك لتوصيل طلب جديد."
	case domain.EventDriverNearby:
		title = "السائق قريب"
		body = "سائقك سيصل خلال دقائق."
	case domain.EventOrderReady:
		title = "الطلب جاهز"
		body = "طلبك جاهز للاستلام."
	case domain.EventOrderCancelled:
		title = "تم إلغاء الطلب"
		body = "تم إلغاء طلبك."
	}

	return Message{
		Title: title,
		Body:  body,
		// order_id is always present (empty string when absent) so the
		// client can route taps without inspecting the event type first.
		Data: map[string]string{"order_id": row.OrderID()},
	}
}
