// Package saga runs multi-step writes against stores that offer no cross-row transaction.
// Each completed step registers its inverse; on failure the inverses run newest first.
package saga

import (
	"context"
	"errors"
	"time"

	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability"
	"github.com/The4Loops/ShahuMumbai-Project-sub000/internal/observability/logctx"
)

// Compensation undoes one applied step. It must be idempotent.
type Compensation struct {
	Step string
	Undo func(ctx context.Context) error
}

// Saga collects compensations for a single request.
type Saga struct {
	name     string
	log      observability.Logger
	counter  observability.Counter
	timeout  time.Duration
	undo     []Compensation
	rolledUp bool
}

// Option customises a Saga.
type Option func(*Saga)

// WithCounter records one saga_compensations_total sample per compensation.
func WithCounter(c observability.Counter) Option {
	return func(s *Saga) {
		if c != nil {
			s.counter = c
		}
	}
}

// WithTimeout bounds each compensation independently of the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *Saga) {
		if d > 0 {
			s.timeout = d
		}
	}
}

const defaultCompensationTimeout = 5 * time.Second

func New(name string, logger observability.Logger, opts ...Option) *Saga {
	if logger == nil {
		logger = observability.NopLogger()
	}
	s := &Saga{
		name:    name,
		log:     logger,
		counter: observability.NopCounter(),
		timeout: defaultCompensationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Done registers the inverse of a step that has just succeeded.
func (s *Saga) Done(step string, undo func(ctx context.Context) error) {
	s.undo = append(s.undo, Compensation{Step: step, Undo: undo})
}

// Len reports how many compensations are pending.
func (s *Saga) Len() int { return len(s.undo) }

// Rollback runs every registered compensation in reverse order. A failing compensation is
// logged and counted, and the remaining ones still run. The joined failures are returned.
// The caller's cancellation does not stop a rollback already under way.
func (s *Saga) Rollback(ctx context.Context, cause error) error {
	if s.rolledUp {
		return nil
	}
	s.rolledUp = true

	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("saga", s.name),
		observability.Err(cause),
	)
	base := context.WithoutCancel(ctx)

	var errs []error
	for i := len(s.undo) - 1; i >= 0; i-- {
		c := s.undo[i]
		stepCtx, cancel := context.WithTimeout(base, s.timeout)
		err := c.Undo(stepCtx)
		cancel()

		if err != nil {
			s.counter.Add(1, observability.L("step", c.Step), observability.L("outcome", "error"))
			logger.Error("saga_compensation_failed",
				observability.F("step", c.Step),
				observability.F("compensation_error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		s.counter.Add(1, observability.L("step", c.Step), observability.L("outcome", "success"))
		logger.Warn("saga_compensated", observability.F("step", c.Step))
	}
	s.undo = nil
	return errors.Join(errs...)
}
