package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// CreateAnswer inserts a new answer with zeroed counters and recomputes the
// question's answer_count and the author's answers_count.
//
// Errors: NotFoundError for a missing question or author,
// QuestionClosedError when the question is closed.
func (p *Propagator) CreateAnswer(ctx context.Context, questionID, authorID, content string) (*domain.Answer, error) {
	if err := check(answerInput{QuestionID: questionID, AuthorID: authorID, Content: content}); err != nil {
		return nil, err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.String("user.id", authorID),
	}
	var out *domain.Answer
	err := p.run(ctx, "create_answer", attrs, func(ctx context.Context, tx *gorm.DB) error {
		q, err := repo.LockQuestion(ctx, tx, questionID)
		if err != nil {
			if repo.IsNotFound(err) {
				return &NotFoundError{Entity: EntityQuestion, ID: questionID}
			}
			return err
		}
		if q.IsClosed {
			return &QuestionClosedError{QuestionID: questionID}
		}
		if err := lockUsersExist(ctx, tx, authorID); err != nil {
			return err
		}

		a, err := repo.CreateAnswer(ctx, tx, questionID, authorID, content)
		if err != nil {
			return err
		}
		if err := recomputeQuestion(ctx, tx, questionID); err != nil {
			return err
		}
		if err := recomputeUsers(ctx, tx, authorID); err != nil {
			return err
		}

		rel := related{question: questionID, answer: a.ID}
		if err := notify(ctx, tx, q.AuthorID, authorID, domain.NotificationAnswerToQuestion,
			"New answer to your question", "Someone answered \""+q.Title+"\".", rel); err != nil {
			return err
		}
		if err := notifyMentions(ctx, tx, authorID, content, "an answer", rel); err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAnswer removes an answer together with its votes, comments and the
// notifications that point at them. If it was the accepted answer the
// question's acceptance is cleared. The question's answer_count and
// vote_score and the author's answers_count and reputation are recomputed.
func (p *Propagator) DeleteAnswer(ctx context.Context, answerID string) error {
	if err := check(answerRefInput{AnswerID: answerID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{attribute.String("answer.id", answerID)}
	return p.run(ctx, "delete_answer", attrs, func(ctx context.Context, tx *gorm.DB) error {
		a, err := lockAnswer(ctx, tx, answerID)
		if err != nil {
			return err
		}
		if err := (lockPlan{question: a.QuestionID, users: []string{a.AuthorID}}).lock(ctx, tx); err != nil {
			return err
		}
		if err := deleteAnswerFacts(ctx, tx, []string{a.ID}); err != nil {
			return err
		}
		if err := recomputeQuestion(ctx, tx, a.QuestionID); err != nil {
			return err
		}
		return recomputeUsers(ctx, tx, a.AuthorID)
	})
}

// deleteAnswerFacts removes the given answers and everything owned by them.
// Children go first so foreign keys never dangle.
func deleteAnswerFacts(ctx context.Context, tx *gorm.DB, answerIDs []string) error {
	if len(answerIDs) == 0 {
		return nil
	}
	commentIDs, err := repo.CommentIDsByAnswers(ctx, tx, answerIDs...)
	if err != nil {
		return err
	}
	if err := repo.DeleteNotificationsForContent(ctx, tx, nil, answerIDs, commentIDs); err != nil {
		return err
	}
	if err := repo.DeleteCommentsByAnswers(ctx, tx, answerIDs...); err != nil {
		return err
	}
	if err := repo.DeleteVotesByAnswers(ctx, tx, answerIDs...); err != nil {
		return err
	}
	for _, id := range answerIDs {
		if err := repo.DeleteAnswer(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}
