package push

import (
	"context"

	"github.com/plateful/delivery-notifier/internal/message"
)

// TokenResult is the delivery outcome for a single device token.
// Results preserve the input token order so callers can correlate a failure
// back to the token at the same position.
type TokenResult struct {
	Success bool
	Err     error
}

// Result aggregates one multicast send.
type Result struct {
	SuccessCount int
	FailureCount int
	Responses    []TokenResult
}

// Dispatcher abstracts the push transport.
// A transport-level error (auth, network) is returned as err; individual
// token rejections are reported inside Result, not as errors.
// Mocking this interface in tests gives full control over transport
// behaviour without real FCM calls.
type Dispatcher interface {
	Send(ctx context.Context, tokens []string, msg message.Message) (*Result, error)
}
