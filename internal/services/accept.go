package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// AcceptAnswer marks answerID as the accepted answer of questionID, clearing
// any previous acceptance, and recomputes the question's acceptance columns
// and the reputation of every affected answer author. Accepting the already
// accepted answer changes nothing.
//
// Checks run in order: question exists, requester is the question author,
// answer belongs to the question, question is open.
func (p *Propagator) AcceptAnswer(ctx context.Context, questionID, answerID, requesterID string) error {
	if err := check(acceptInput{QuestionID: questionID, AnswerID: answerID, RequesterID: requesterID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.String("answer.id", answerID),
		attribute.String("user.id", requesterID),
	}
	return p.run(ctx, "accept_answer", attrs, func(ctx context.Context, tx *gorm.DB) error {
		q, err := authorizeAcceptance(ctx, tx, questionID, requesterID, "accept answers")
		if err != nil {
			return err
		}
		target, err := repo.GetAnswer(ctx, tx, answerID)
		if err != nil {
			if repo.IsNotFound(err) {
				return &NotFoundError{Entity: EntityAnswer, ID: answerID}
			}
			return err
		}
		if target.QuestionID != questionID {
			return &NotFoundError{Entity: EntityAnswer, ID: answerID}
		}
		if q.IsClosed {
			return &QuestionClosedError{QuestionID: questionID}
		}

		prev, err := repo.ListAcceptedAnswers(ctx, tx, questionID)
		if err != nil {
			return err
		}
		answerIDs := []string{target.ID}
		authors := []string{target.AuthorID}
		for _, a := range prev {
			answerIDs = append(answerIDs, a.ID)
			authors = append(authors, a.AuthorID)
		}
		plan := lockPlan{answers: answerIDs, question: questionID, users: authors}
		if err := plan.lock(ctx, tx); err != nil {
			return err
		}
		// The question lock serialises acceptance changes; re-read under it.
		cur, err := repo.LockAcceptedAnswers(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if err := plan.absorb(ctx, tx, cur); err != nil {
			return err
		}

		if _, err := repo.ClearAcceptedAnswers(ctx, tx, questionID, target.ID); err != nil {
			return err
		}
		newlyAccepted := true
		for _, a := range cur {
			if a.ID == target.ID {
				newlyAccepted = false
			}
		}
		if newlyAccepted {
			if err := repo.SetAnswerAccepted(ctx, tx, target.ID, true); err != nil {
				return err
			}
		}
		if err := recomputeQuestion(ctx, tx, questionID); err != nil {
			return err
		}
		if err := recomputeUsers(ctx, tx, plan.users...); err != nil {
			return err
		}

		if newlyAccepted {
			return notify(ctx, tx, target.AuthorID, requesterID, domain.NotificationAnswerAccepted,
				"Your answer was accepted", "Your answer to \""+q.Title+"\" was accepted.",
				related{question: questionID, answer: target.ID})
		}
		return nil
	})
}

// UnacceptAnswer clears the accepted answer of questionID. It is a no-op
// when nothing is accepted.
func (p *Propagator) UnacceptAnswer(ctx context.Context, questionID, requesterID string) error {
	if err := check(ownedQuestionInput{QuestionID: questionID, RequesterID: requesterID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.String("user.id", requesterID),
	}
	return p.run(ctx, "unaccept_answer", attrs, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := authorizeAcceptance(ctx, tx, questionID, requesterID, "unaccept answers"); err != nil {
			return err
		}
		prev, err := repo.ListAcceptedAnswers(ctx, tx, questionID)
		if err != nil {
			return err
		}
		var answerIDs, authors []string
		for _, a := range prev {
			answerIDs = append(answerIDs, a.ID)
			authors = append(authors, a.AuthorID)
		}
		plan := lockPlan{answers: answerIDs, question: questionID, users: authors}
		if err := plan.lock(ctx, tx); err != nil {
			return err
		}
		cur, err := repo.LockAcceptedAnswers(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if err := plan.absorb(ctx, tx, cur); err != nil {
			return err
		}
		locked, err := repo.GetQuestion(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if len(plan.answers) == 0 && !locked.HasAcceptedAnswer {
			return nil
		}
		if locked.IsClosed {
			return &QuestionClosedError{QuestionID: questionID}
		}

		if _, err := repo.ClearAcceptedAnswers(ctx, tx, questionID, ""); err != nil {
			return err
		}
		if err := recomputeQuestion(ctx, tx, questionID); err != nil {
			return err
		}
		return recomputeUsers(ctx, tx, plan.users...)
	})
}

// authorizeAcceptance loads the question and checks that requesterID owns it.
func authorizeAcceptance(ctx context.Context, tx *gorm.DB, questionID, requesterID, action string) (*domain.Question, error) {
	q, err := repo.GetQuestion(ctx, tx, questionID)
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, &NotFoundError{Entity: EntityQuestion, ID: questionID}
		}
		return nil, err
	}
	if q.AuthorID != requesterID {
		return nil, &AuthorizationError{UserID: requesterID, Action: action}
	}
	return q, nil
}
