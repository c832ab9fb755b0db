package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/plateful/delivery-notifier/internal/domain"
	"github.com/plateful/delivery-notifier/internal/message"
	"github.com/plateful/delivery-notifier/internal/push"
	"github.com/plateful/delivery-notifier/internal/ratelimiter"
	"github.com/plateful/delivery-notifier/internal/repository"
	"github.com/plateful/delivery-notifier/internal/resolver"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the service constructor signature clean.
type MetricHooks struct {
	OnSent          func(event domain.EventType, latency time.Duration)
	OnFailed        func(event domain.EventType)
	OnTokenDisabled func()
}

func (h *MetricHooks) fillNoops() {
	if h.OnSent == nil {
		h.OnSent = func(domain.EventType, time.Duration) {}
	}
	if h.OnFailed == nil {
		h.OnFailed = func(domain.EventType) {}
	}
	if h.OnTokenDisabled == nil {
		h.OnTokenDisabled = func() {}
	}
}

// DispatchService runs the per-row pipeline: resolve recipients, compose
// content, send one multicast, and reconcile the outcome back into the
// queue row and token table.
//
// Every fault is absorbed here; nothing propagates to the control loop.
// A processed row always ends in a terminal status with attempted
// incremented exactly once.
type DispatchService struct {
	queueRepo  repository.QueueRepository
	tokenRepo  repository.DeviceTokenRepository
	resolver   *resolver.Resolver
	dispatcher push.Dispatcher
	limiter    *ratelimiter.SendLimiter
	logger     *zap.Logger
	hooks      MetricHooks

	// now is swappable in tests for deterministic last_attempt values.
	now func() time.Time
}

func NewDispatchService(
	queueRepo repository.QueueRepository,
	tokenRepo repository.DeviceTokenRepository,
	res *resolver.Resolver,
	dispatcher push.Dispatcher,
	limiter *ratelimiter.SendLimiter,
	logger *zap.Logger,
	hooks MetricHooks,
) *DispatchService {
	hooks.fillNoops()
	return &DispatchService{
		queueRepo:  queueRepo,
		tokenRepo:  tokenRepo,
		resolver:   res,
		dispatcher: dispatcher,
		limiter:    limiter,
		logger:     logger,
		hooks:      hooks,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Process handles one queue row end to end.
func (s *DispatchService) Process(ctx context.Context, row *domain.QueueRow) {
	start := s.now()
	log := s.logger.With(
		zap.Int64("row_id", row.ID),
		zap.String("event_type", string(row.EventType)),
	)

	tokens, err := s.resolver.Resolve(ctx, row)
	if err != nil {
		log.Error("recipient resolution failed", zap.Error(err))
		s.fail(ctx, row, log)
		return
	}

	// No recipients is a valid terminal outcome: the row ends failed and
	// the transport is never contacted.
	if len(tokens) == 0 {
		log.Info("no enabled tokens for row, marking failed")
		s.fail(ctx, row, log)
		return
	}

	msg := message.Compose(row)

	if err := s.limiter.Wait(ctx); err != nil {
		// ctx cancelled while waiting — worker is shutting down.
		return
	}

	res, err := s.dispatcher.Send(ctx, tokens, msg)
	if err != nil {
		// Transport-level fault: no per-token results exist, so no tokens
		// are disabled.
		log.Warn("multicast send failed", zap.Error(err))
		s.fail(ctx, row, log)
		return
	}

	s.reconcile(ctx, row, tokens, res, log)
	if res.SuccessCount > 0 {
		s.hooks.OnSent(row.EventType, s.now().Sub(start))
	} else {
		s.hooks.OnFailed(row.EventType)
	}
}

// reconcile writes the terminal status and prunes rejected tokens.
// Sent requires at least one successful delivery; a multicast in which every
// token was rejected is a failure even though the transport call itself
// succeeded.
func (s *DispatchService) reconcile(
	ctx context.Context,
	row *domain.QueueRow,
	tokens []string,
	res *push.Result,
	log *zap.Logger,
) {
	now := s.now()
	if res.SuccessCount > 0 {
		if err := s.queueRepo.MarkSent(ctx, row.ID, row.Attempted+1, now); err != nil {
			log.Error("failed to mark row sent", zap.Error(err))
		}
	} else {
		if err := s.queueRepo.MarkFailed(ctx, row.ID, row.Attempted+1, now); err != nil {
			log.Error("failed to mark row failed", zap.Error(err))
		}
	}

	if res.FailureCount == 0 {
		return
	}

	// Per-token results preserve input order; position i corresponds to
	// tokens[i]. Disabling is best-effort — one bad write must not block
	// the remaining prunes.
	for i, tr := range res.Responses {
		if tr.Success || i >= len(tokens) {
			continue
		}
		if err := s.tokenRepo.Disable(ctx, tokens[i]); err != nil {
			log.Warn("failed to disable rejected token", zap.Error(err))
			continue
		}
		s.hooks.OnTokenDisabled()
		log.Info("disabled rejected token", zap.Error(tr.Err))
	}
}

// fail marks the row terminally failed with the attempt bookkeeping.
func (s *DispatchService) fail(ctx context.Context, row *domain.QueueRow, log *zap.Logger) {
	if err := s.queueRepo.MarkFailed(ctx, row.ID, row.Attempted+1, s.now()); err != nil {
		log.Error("failed to mark row failed", zap.Error(err))
	}
	s.hooks.OnFailed(row.EventType)
}
