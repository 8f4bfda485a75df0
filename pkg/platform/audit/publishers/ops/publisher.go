// Package ops emits operational audit events fire-and-forget: events are
// sampled, never block the caller on a failing sink, and never fail the
// operation being audited.
package ops

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "formview/pkg/platform/audit"
	"formview/pkg/requestcontext"
)

// Publisher writes ops events to a store behind a sampler and a circuit
// breaker.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
	sampler *Sampler
	breaker *CircuitBreaker
	timeout time.Duration
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithSampler(s *Sampler) Option {
	return func(p *Publisher) { p.sampler = s }
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) { p.breaker = cb }
}

// WithTimeout bounds each store write.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) { p.timeout = d }
}

func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:   store,
		logger:  slog.Default(),
		sampler: NewSampler(1),
		breaker: NewCircuitBreaker(5, time.Minute),
		timeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Track enriches event from ctx and writes it. Failures are logged and
// counted, never returned.
func (p *Publisher) Track(ctx context.Context, event audit.Event) {
	if p == nil || p.store == nil {
		return
	}
	if !p.sampler.Keep(event.Action) {
		p.inc(func(m *Metrics) { m.Sampled.Inc() })
		return
	}
	if !p.breaker.Allow() {
		p.inc(func(m *Metrics) { m.CircuitBreakerDropped.Inc() })
		return
	}

	enrich(ctx, &event)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.store.Append(writeCtx, event); err != nil {
		open := p.breaker.RecordFailure()
		p.inc(func(m *Metrics) {
			m.PersistFailures.Inc()
			m.setCircuitState(open)
		})
		p.logger.WarnContext(ctx, "failed to persist ops audit event",
			"action", event.Action,
			"error", err,
			"circuit_open", open,
			"request_id", event.RequestID,
		)
		return
	}
	p.breaker.RecordSuccess()
	p.inc(func(m *Metrics) {
		m.Tracked.Inc()
		m.setCircuitState(false)
	})
}

func (p *Publisher) inc(fn func(*Metrics)) {
	if p.metrics != nil {
		fn(p.metrics)
	}
}

func enrich(ctx context.Context, event *audit.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.UserID == "" {
		event.UserID = requestcontext.UserID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Client == "" {
		event.Client = audit.DescribeClient(requestcontext.UserAgent(ctx))
	}
}
