package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// The read query returns stored aggregates as committed by the last event.
// It never recomputes; use Verifier for that.

// UserStats returns the stored counters of a user.
func (p *Propagator) UserStats(ctx context.Context, id string) (*domain.UserStats, error) {
	ctx, span := otel.Tracer("services/Propagator").Start(ctx, "UserStats",
		trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	st, err := repo.GetUserStats(ctx, p.DB, id)
	return st, readError("user_stats", EntityUser, id, err)
}

// QuestionStats returns the stored counters of a question.
func (p *Propagator) QuestionStats(ctx context.Context, id string) (*domain.QuestionStats, error) {
	ctx, span := otel.Tracer("services/Propagator").Start(ctx, "QuestionStats",
		trace.WithAttributes(attribute.String("question.id", id)))
	defer span.End()
	st, err := repo.GetQuestionStats(ctx, p.DB, id)
	return st, readError("question_stats", EntityQuestion, id, err)
}

// AnswerStats returns the stored counters of an answer.
func (p *Propagator) AnswerStats(ctx context.Context, id string) (*domain.AnswerStats, error) {
	ctx, span := otel.Tracer("services/Propagator").Start(ctx, "AnswerStats",
		trace.WithAttributes(attribute.String("answer.id", id)))
	defer span.End()
	st, err := repo.GetAnswerStats(ctx, p.DB, id)
	return st, readError("answer_stats", EntityAnswer, id, err)
}

// TagStats returns the stored usage counter of a tag.
func (p *Propagator) TagStats(ctx context.Context, id string) (*domain.TagStats, error) {
	ctx, span := otel.Tracer("services/Propagator").Start(ctx, "TagStats",
		trace.WithAttributes(attribute.String("tag.id", id)))
	defer span.End()
	st, err := repo.GetTagStats(ctx, p.DB, id)
	return st, readError("tag_stats", EntityTag, id, err)
}

func readError(op, entity, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case repo.IsNotFound(err):
		return &NotFoundError{Entity: entity, ID: id}
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}
