package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"github.com/plateful/delivery-notifier/internal/message"
)

// multicastClient is the slice of *messaging.Client the dispatcher needs.
// Narrowing to one method lets tests inject a fake transport.
type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMDispatcher delivers notifications through Firebase Cloud Messaging.
// One multicast call is issued per Send regardless of token count; FCM
// fans the message out and reports per-token outcomes in input order.
type FCMDispatcher struct {
	client multicastClient
}

func NewFCMDispatcher(client *messaging.Client) *FCMDispatcher {
	return &FCMDispatcher{client: client}
}

// Send issues a single high-priority multicast to the given tokens.
// Empty token lists short-circuit to a zero Result without contacting
// the transport.
func (d *FCMDispatcher) Send(ctx context.Context, tokens []string, msg message.Message) (*Result, error) {
	if len(tokens) == 0 {
		return &Result{}, nil
	}

	// High-priority delivery on both platforms: order and driver updates
	// are latency-sensitive and must wake the device.
	mm := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
		},
	}

	br, err := d.client.SendEachForMulticast(ctx, mm)
	if err != nil {
		return nil, fmt.Errorf("fcm multicast send: %w", err)
	}

	res := &Result{
		SuccessCount: br.SuccessCount,
		FailureCount: br.FailureCount,
		Responses:    make([]TokenResult, len(br.Responses)),
	}
	for i, r := range br.Responses {
		res.Responses[i] = TokenResult{Success: r.Success, Err: r.Error}
	}
	return res, nil
}

// compile-time check that FCMDispatcher implements Dispatcher
var _ Dispatcher = (*FCMDispatcher)(nil)
