package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// CreateQuestion inserts a question, links its tags (duplicates after
// normalisation collapse to one link) and recomputes the author's
// questions_count and every tag's usage_count.
func (p *Propagator) CreateQuestion(ctx context.Context, authorID, title, description string, tagNames []string) (*domain.Question, error) {
	if err := check(questionInput{AuthorID: authorID, Title: title, Description: description}); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tagNames))
	seen := map[string]struct{}{}
	for _, raw := range tagNames {
		name := NormalizeTagName(raw)
		if _, ok := seen[name]; ok {
			continue
		}
		if err := check(tagNameInput{Name: name}); err != nil {
			return nil, err
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	attrs := []attribute.KeyValue{
		attribute.String("user.id", authorID),
		attribute.Int("tags", len(names)),
	}
	var out *domain.Question
	err := p.run(ctx, "create_question", attrs, func(ctx context.Context, tx *gorm.DB) error {
		if err := lockUsersExist(ctx, tx, authorID); err != nil {
			return err
		}
		q, err := repo.CreateQuestion(ctx, tx, authorID, title, description)
		if err != nil {
			return err
		}
		tagIDs := make([]string, 0, len(names))
		for _, name := range names {
			tag, err := linkTag(ctx, tx, q.ID, name)
			if err != nil {
				return err
			}
			tagIDs = append(tagIDs, tag.ID)
		}
		if err := recomputeUsers(ctx, tx, authorID); err != nil {
			return err
		}
		if err := recomputeTags(ctx, tx, tagIDs...); err != nil {
			return err
		}
		if err := notifyMentions(ctx, tx, authorID, description, "a question", related{question: q.ID}); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteQuestion removes a question with all its answers, their votes and
// comments, its tag links and related notifications. Only the author may
// delete. Tag usage, the author's questions_count and each answer author's
// answers_count and reputation are recomputed.
func (p *Propagator) DeleteQuestion(ctx context.Context, questionID, requesterID string) error {
	if err := check(ownedQuestionInput{QuestionID: questionID, RequesterID: requesterID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.String("user.id", requesterID),
	}
	return p.run(ctx, "delete_question", attrs, func(ctx context.Context, tx *gorm.DB) error {
		q, err := repo.GetQuestion(ctx, tx, questionID)
		if err != nil {
			if repo.IsNotFound(err) {
				return &NotFoundError{Entity: EntityQuestion, ID: questionID}
			}
			return err
		}
		if q.AuthorID != requesterID {
			return &AuthorizationError{UserID: requesterID, Action: "delete this question"}
		}

		answers, err := repo.ListAnswersByQuestion(ctx, tx, questionID)
		if err != nil {
			return err
		}
		tagIDs, err := repo.TagIDsForQuestion(ctx, tx, questionID)
		if err != nil {
			return err
		}
		answerIDs := make([]string, 0, len(answers))
		users := []string{q.AuthorID}
		for _, a := range answers {
			answerIDs = append(answerIDs, a.ID)
			users = append(users, a.AuthorID)
		}
		plan := lockPlan{answers: answerIDs, question: questionID, users: users, tags: tagIDs}
		if err := plan.lock(ctx, tx); err != nil {
			return err
		}
		// Answers committed before the question lock was granted.
		cur, err := repo.LockQuestionAnswers(ctx, tx, questionID)
		if err != nil {
			return err
		}
		if err := plan.absorb(ctx, tx, cur); err != nil {
			return err
		}

		if err := deleteAnswerFacts(ctx, tx, plan.answers); err != nil {
			return err
		}
		if err := repo.DeleteNotificationsForContent(ctx, tx, []string{questionID}, nil, nil); err != nil {
			return err
		}
		if err := repo.DeleteQuestionTags(ctx, tx, questionID); err != nil {
			return err
		}
		if err := repo.DeleteQuestion(ctx, tx, questionID); err != nil {
			return err
		}
		if err := recomputeUsers(ctx, tx, plan.users...); err != nil {
			return err
		}
		return recomputeTags(ctx, tx, tagIDs...)
	})
}

// CloseQuestion sets or clears the closed flag. Only the author may do so.
// Closed questions reject new answers and acceptance changes.
func (p *Propagator) CloseQuestion(ctx context.Context, questionID, requesterID string, closed bool) error {
	if err := check(ownedQuestionInput{QuestionID: questionID, RequesterID: requesterID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.Bool("closed", closed),
	}
	return p.run(ctx, "close_question", attrs, func(ctx context.Context, tx *gorm.DB) error {
		q, err := repo.LockQuestion(ctx, tx, questionID)
		if err != nil {
			if repo.IsNotFound(err) {
				return &NotFoundError{Entity: EntityQuestion, ID: questionID}
			}
			return err
		}
		if q.AuthorID != requesterID {
			return &AuthorizationError{UserID: requesterID, Action: "close this question"}
		}
		if q.IsClosed == closed {
			return nil
		}
		return repo.SetQuestionClosed(ctx, tx, questionID, closed)
	})
}
