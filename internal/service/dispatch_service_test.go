package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/message"
	"github.com/plateful/delivery-notifier/internal/push"
	"github.com/plateful/delivery-notifier/internal/ratelimiter"
	"github.com/plateful/delivery-notifier/internal/repository"
	"github.com/plateful/delivery-notifier/internal/resolver"
	"github.com/plateful/delivery-notifier/internal/service"
)

// fakeDispatcher simulates the push transport. Per-token outcomes are keyed
// by token value so the test does not depend on resolution order.
type fakeDispatcher struct {
	failTokens map[string]bool
	sendErr    error

	calls      int
	lastTokens []string
	lastMsg    message.Message
}

func (f *fakeDispatcher) Send(_ context.Context, tokens []string, msg message.Message) (*push.Result, error) {
	f.calls++
	f.lastTokens = tokens
	f.lastMsg = msg

	if f.sendErr != nil {
		return nil, f.sendErr
	}

	res := &push.Result{Responses: make([]push.TokenResult, len(tokens))}
	for i, tok := range tokens {
		if f.failTokens[tok] {
			res.Responses[i] = push.TokenResult{Success: false, Err: errors.New("registration-token-not-registered")}
			res.FailureCount++
		} else {
			res.Responses[i] = push.TokenResult{Success: true}
			res.SuccessCount++
		}
	}
	return res, nil
}

type fixture struct {
	svc         *service.DispatchService
	queueRepo   *repository.MockQueueRepository
	tokenRepo   *repository.MockDeviceTokenRepository
	restaurants *repository.MockRestaurantRepository
	dispatcher  *fakeDispatcher
}

func newFixture() *fixture {
	queueRepo := repository.NewMockQueueRepository()
	tokenRepo := repository.NewMockDeviceTokenRepository()
	restaurants := repository.NewMockRestaurantRepository()
	dispatcher := &fakeDispatcher{failTokens: map[string]bool{}}
	res := resolver.New(tokenRepo, restaurants, zap.NewNop())
	svc := service.NewDispatchService(
		queueRepo, tokenRepo, res, dispatcher,
		ratelimiter.New(1000), zap.NewNop(), service.MetricHooks{},
	)
	return &fixture{
		svc:         svc,
		queueRepo:   queueRepo,
		tokenRepo:   tokenRepo,
		restaurants: restaurants,
		dispatcher:  dispatcher,
	}
}

func strPtr(s string) *string { return &s }

func typePtr(t domain.RecipientType) *domain.RecipientType { return &t }

func pendingRow(id int64) *domain.QueueRow {
	return &domain.QueueRow{
		ID:        id,
		EventType: domain.EventOrderCreated,
		Status:    domain.StatusPending,
		Payload:   map[string]any{"order_id": float64(id)},
	}
}

func TestProcess_DirectUserAllSuccess(t *testing.T) {
	f := newFixture()
	f.tokenRepo.Register("tok-a", "user-1")
	f.tokenRepo.Register("tok-b", "user-1")

	row := pendingRow(1)
	row.RecipientUserID = strPtr("user-1")
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(1)
	if got.Status != domain.StatusSent {
		t.Fatalf("expected status=sent, got %s", got.Status)
	}
	if got.Attempted != 1 {
		t.Fatalf("expected attempted=1, got %d", got.Attempted)
	}
	if got.LastAttempt == nil {
		t.Fatal("expected last_attempt to be set")
	}
	if f.dispatcher.calls != 1 {
		t.Fatalf("expected exactly one multicast call, got %d", f.dispatcher.calls)
	}
	if !f.tokenRepo.Enabled("tok-a") || !f.tokenRepo.Enabled("tok-b") {
		t.Fatal("successful tokens must remain enabled")
	}
}

func TestProcess_RestaurantAllTokensRejected(t *testing.T) {
	f := newFixture()
	f.restaurants.SetOwner("rest-1", "owner-1")
	f.tokenRepo.Register("tok-owner", "owner-1")
	f.dispatcher.failTokens["tok-owner"] = true

	row := pendingRow(2)
	row.RecipientType = typePtr(domain.RecipientRestaurant)
	row.Payload["restaurant_id"] = "rest-1"
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(2)
	// Zero successes means the push reached nobody, so the row is failed
	// even though the transport call itself succeeded.
	if got.Status != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", got.Status)
	}
	if got.Attempted != 1 {
		t.Fatalf("expected attempted=1, got %d", got.Attempted)
	}
	if f.tokenRepo.Enabled("tok-owner") {
		t.Fatal("rejected token must be disabled")
	}
}

func TestProcess_PartialFailureStillSent(t *testing.T) {
	f := newFixture()
	f.tokenRepo.Register("tok-good", "user-1")
	f.tokenRepo.Register("tok-bad", "user-1")
	f.dispatcher.failTokens["tok-bad"] = true

	row := pendingRow(3)
	row.RecipientUserID = strPtr("user-1")
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(3)
	if got.Status != domain.StatusSent {
		t.Fatalf("expected status=sent on partial success, got %s", got.Status)
	}
	if f.tokenRepo.Enabled("tok-bad") {
		t.Fatal("rejected token must be disabled")
	}
	if !f.tokenRepo.Enabled("tok-good") {
		t.Fatal("delivered token must remain enabled")
	}
}

func TestProcess_NoRecipientsNeverDispatches(t *testing.T) {
	f := newFixture()

	row := pendingRow(4)
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(4)
	if got.Status != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", got.Status)
	}
	if got.Attempted != 1 {
		t.Fatalf("expected attempted=1, got %d", got.Attempted)
	}
	if f.dispatcher.calls != 0 {
		t.Fatalf("dispatcher must not be called with no recipients, got %d calls", f.dispatcher.calls)
	}
}

func TestProcess_TransportFault(t *testing.T) {
	f := newFixture()
	f.tokenRepo.Register("tok-a", "user-1")
	f.dispatcher.sendErr = errors.New("fcm: connection reset")

	row := pendingRow(5)
	row.RecipientUserID = strPtr("user-1")
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(5)
	if got.Status != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", got.Status)
	}
	if got.Attempted != 1 {
		t.Fatalf("expected attempted=1, got %d", got.Attempted)
	}
	// No per-token results exist on a transport fault, so nothing is pruned.
	if !f.tokenRepo.Enabled("tok-a") {
		t.Fatal("token must not be disabled on a transport-level fault")
	}
}

func TestProcess_ResolverFault(t *testing.T) {
	f := newFixture()
	f.tokenRepo.TokensErr = errors.New("db down")

	row := pendingRow(6)
	row.RecipientUserID = strPtr("user-1")
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(6)
	if got.Status != domain.StatusFailed {
		t.Fatalf("expected status=failed, got %s", got.Status)
	}
	if f.dispatcher.calls != 0 {
		t.Fatal("dispatcher must not be called when resolution faults")
	}
}

func TestProcess_DisableFailureDoesNotBlockOtherPrunes(t *testing.T) {
	f := newFixture()
	f.tokenRepo.Register("tok-1", "user-1")
	f.tokenRepo.Register("tok-2", "user-1")
	f.tokenRepo.Register("tok-3", "user-1")
	f.dispatcher.failTokens["tok-1"] = true
	f.dispatcher.failTokens["tok-2"] = true
	f.tokenRepo.DisableErrFor = map[string]error{"tok-1": errors.New("deadlock")}

	row := pendingRow(7)
	row.RecipientUserID = strPtr("user-1")
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(7)
	if got.Status != domain.StatusSent {
		t.Fatalf("expected status=sent, got %s", got.Status)
	}
	if f.tokenRepo.Enabled("tok-2") {
		t.Fatal("the second rejected token must still be disabled")
	}
	if !f.tokenRepo.Enabled("tok-3") {
		t.Fatal("the delivered token must remain enabled")
	}
}

func TestProcess_ReconcileWriteFailureIsAbsorbed(t *testing.T) {
	f := newFixture()
	f.tokenRepo.Register("tok-a", "user-1")
	f.queueRepo.MarkSentErr = errors.New("write timeout")

	row := pendingRow(8)
	row.RecipientUserID = strPtr("user-1")
	f.queueRepo.Put(row)

	// Must not panic or propagate; the fault is logged at the row boundary.
	f.svc.Process(context.Background(), row)
}

func TestProcess_AttemptedCountsFromRowSnapshot(t *testing.T) {
	f := newFixture()
	f.tokenRepo.Register("tok-a", "user-1")

	row := pendingRow(9)
	row.RecipientUserID = strPtr("user-1")
	row.Attempted = 2
	f.queueRepo.Put(row)

	f.svc.Process(context.Background(), row)

	got := f.queueRepo.Get(9)
	if got.Attempted != 3 {
		t.Fatalf("expected attempted=3, got %d", got.Attempted)
	}
}
