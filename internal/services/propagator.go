// Package services – Propagator
//
// Propagator owns every derived counter in the schema. Each public method is
// one propagation event: the fact write and every dependent recomputation run
// in a single transaction, so a reader sees either the state before the event
// or the state after it.
//
// Row locks are taken in the order answers → question → users → tags, ids
// ascending within a level. Transient conflicts (SQLite BUSY, PostgreSQL
// serialization failures and deadlocks, MySQL deadlocks) roll the
// transaction back and the whole event is replayed with exponential backoff.
//
// Observability: every event gets an OpenTelemetry span, a Prometheus
// outcome counter and a latency observation.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

const (
	defaultMaxRetries   = 5
	defaultRetryInitial = 5 * time.Millisecond
	defaultRetryMax     = 250 * time.Millisecond
)

// Propagator runs propagation events against DB.
type Propagator struct {
	DB *gorm.DB

	// Log defaults to the global zerolog logger when nil.
	Log *zerolog.Logger

	// MaxRetries bounds how many times a conflicting transaction is replayed.
	// Zero means defaultMaxRetries; negative disables retries.
	MaxRetries int

	// RetryInitial is the first backoff interval. Zero means 5ms.
	RetryInitial time.Duration
}

// NewPropagator returns a Propagator with the given retry bound.
func NewPropagator(db *gorm.DB, logger *zerolog.Logger, maxRetries int) *Propagator {
	return &Propagator{DB: db, Log: logger, MaxRetries: maxRetries}
}

func (p *Propagator) logger() *zerolog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return &log.Logger
}

func (p *Propagator) retryPolicy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = defaultRetryInitial
	if p.RetryInitial > 0 {
		b.InitialInterval = p.RetryInitial
	}
	b.MaxInterval = defaultRetryMax
	b.MaxElapsedTime = 0

	retries := p.MaxRetries
	switch {
	case retries == 0:
		retries = defaultMaxRetries
	case retries < 0:
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// run executes fn as one propagation event named op. fn receives the
// transaction handle and must use it for every statement.
func (p *Propagator) run(ctx context.Context, op string, attrs []attribute.KeyValue, fn func(ctx context.Context, tx *gorm.DB) error) error {
	tr := otel.Tracer("services/Propagator")
	ctx, span := tr.Start(ctx, op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, tx)
		})
		switch {
		case err == nil:
			return nil
		case isDomainError(err):
			return backoff.Permanent(err)
		case repo.IsRetryable(err):
			txRetries.WithLabelValues(op).Inc()
			p.logger().Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("transient conflict, retrying")
			return err
		default:
			return backoff.Permanent(err)
		}
	}, p.retryPolicy(ctx))

	if err != nil && !isDomainError(err) {
		err = storageError(op, err)
	}

	propagationEvents.WithLabelValues(op, outcomeLabel(err)).Inc()
	propagationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("tx.attempts", attempt))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcomeLabel(err))
		ev := p.logger().Debug()
		if errors.Is(err, ErrPersistence) {
			ev = p.logger().Error()
		}
		ev.Err(err).Str("op", op).Int("attempts", attempt).Msg("propagation event failed")
		return err
	}
	p.logger().Debug().Str("op", op).Int("attempts", attempt).Dur("took", time.Since(start)).Msg("propagation event committed")
	return nil
}

// storageError wraps a non-domain failure into the typed error the caller sees.
func storageError(op string, err error) error {
	if repo.IsDuplicate(err) {
		return &DuplicateError{Op: op, Err: err}
	}
	return &PersistenceError{Op: op, Err: err}
}

// lockPlan names the rows an event will touch. lock acquires them in the
// fixed order answers → question → users → tags.
type lockPlan struct {
	answers  []string
	question string
	users    []string
	tags     []string
}

func (lp lockPlan) lock(ctx context.Context, tx *gorm.DB) error {
	if _, err := repo.LockAnswers(ctx, tx, lp.answers...); err != nil {
		return err
	}
	if lp.question != "" {
		if _, err := repo.LockQuestion(ctx, tx, lp.question); err != nil {
			if repo.IsNotFound(err) {
				return &NotFoundError{Entity: EntityQuestion, ID: lp.question}
			}
			return err
		}
	}
	if _, err := repo.LockUsers(ctx, tx, lp.users...); err != nil {
		return err
	}
	if _, err := repo.LockTags(ctx, tx, lp.tags...); err != nil {
		return err
	}
	return nil
}

// absorb adds answers first seen by a locking re-read, together with their
// authors, to the plan. The answers are already locked by that read; newly
// seen authors are locked here, after the rest of the user level.
func (lp *lockPlan) absorb(ctx context.Context, tx *gorm.DB, fresh []domain.Answer) error {
	known := make(map[string]bool, len(lp.answers)+len(lp.users))
	for _, id := range lp.answers {
		known["a:"+id] = true
	}
	for _, id := range lp.users {
		known["u:"+id] = true
	}
	var late []string
	for _, a := range fresh {
		if !known["a:"+a.ID] {
			known["a:"+a.ID] = true
			lp.answers = append(lp.answers, a.ID)
		}
		if !known["u:"+a.AuthorID] {
			known["u:"+a.AuthorID] = true
			lp.users = append(lp.users, a.AuthorID)
			late = append(late, a.AuthorID)
		}
	}
	if len(late) == 0 {
		return nil
	}
	_, err := repo.LockUsers(ctx, tx, late...)
	return err
}
