package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// CastOrChangeVote records userID's vote on answerID, replacing any earlier
// polarity, and recomputes the answer's score, its question's score and the
// answer author's reputation.
//
// Errors: SelfVoteError when userID authored the answer (checked before any
// write), NotFoundError when the answer or voter is missing.
func (p *Propagator) CastOrChangeVote(ctx context.Context, userID, answerID string, isUpvote bool) error {
	if err := check(voteInput{UserID: userID, AnswerID: answerID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("user.id", userID),
		attribute.String("answer.id", answerID),
		attribute.Bool("vote.up", isUpvote),
	}
	return p.run(ctx, "cast_vote", attrs, func(ctx context.Context, tx *gorm.DB) error {
		a, err := lockAnswer(ctx, tx, answerID)
		if err != nil {
			return err
		}
		if a.AuthorID == userID {
			return &SelfVoteError{UserID: userID, AnswerID: answerID}
		}
		if err := (lockPlan{question: a.QuestionID}).lock(ctx, tx); err != nil {
			return err
		}
		if err := lockUsersExist(ctx, tx, userID, a.AuthorID); err != nil {
			return err
		}

		prev, err := repo.GetVote(ctx, tx, userID, answerID)
		if err != nil {
			return err
		}
		if err := repo.UpsertVote(ctx, tx, userID, answerID, isUpvote); err != nil {
			return err
		}
		if err := recomputeVoteChain(ctx, tx, a); err != nil {
			return err
		}

		if prev == nil || prev.IsUpvote != isUpvote {
			msg := "Your answer received an upvote."
			if !isUpvote {
				msg = "Your answer received a downvote."
			}
			return notify(ctx, tx, a.AuthorID, userID, domain.NotificationVoteReceived,
				"Your answer received a vote", msg,
				related{question: a.QuestionID, answer: a.ID})
		}
		return nil
	})
}

// RemoveVote deletes userID's vote on answerID if one exists and recomputes
// the same aggregates as CastOrChangeVote. Removing an absent vote is not an
// error.
func (p *Propagator) RemoveVote(ctx context.Context, userID, answerID string) error {
	if err := check(voteInput{UserID: userID, AnswerID: answerID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("user.id", userID),
		attribute.String("answer.id", answerID),
	}
	return p.run(ctx, "remove_vote", attrs, func(ctx context.Context, tx *gorm.DB) error {
		a, err := lockAnswer(ctx, tx, answerID)
		if err != nil {
			return err
		}
		if err := (lockPlan{question: a.QuestionID, users: []string{a.AuthorID}}).lock(ctx, tx); err != nil {
			return err
		}
		if _, err := repo.DeleteVote(ctx, tx, userID, answerID); err != nil {
			return err
		}
		return recomputeVoteChain(ctx, tx, a)
	})
}

// recomputeVoteChain refreshes answer → question → author after a vote change.
func recomputeVoteChain(ctx context.Context, tx *gorm.DB, a *domain.Answer) error {
	if err := recomputeAnswer(ctx, tx, a.ID); err != nil {
		return err
	}
	if err := recomputeQuestion(ctx, tx, a.QuestionID); err != nil {
		return err
	}
	return recomputeUsers(ctx, tx, a.AuthorID)
}

// lockAnswer locks one answer and maps absence to NotFoundError.
func lockAnswer(ctx context.Context, tx *gorm.DB, id string) (*domain.Answer, error) {
	rows, err := repo.LockAnswers(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NotFoundError{Entity: EntityAnswer, ID: id}
	}
	return &rows[0], nil
}

// lockUsersExist locks the given users and fails with NotFoundError for the
// first id that has no row.
func lockUsersExist(ctx context.Context, tx *gorm.DB, ids ...string) error {
	rows, err := repo.LockUsers(ctx, tx, ids...)
	if err != nil {
		return err
	}
	found := make(map[string]struct{}, len(rows))
	for _, u := range rows {
		found[u.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return &NotFoundError{Entity: EntityUser, ID: id}
		}
	}
	return nil
}
