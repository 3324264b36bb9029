package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// AddComment inserts a comment on answerID and recomputes the answer's
// comment_count.
func (p *Propagator) AddComment(ctx context.Context, answerID, authorID, content string) (*domain.Comment, error) {
	if err := check(commentInput{AnswerID: answerID, AuthorID: authorID, Content: content}); err != nil {
		return nil, err
	}
	attrs := []attribute.KeyValue{
		attribute.String("answer.id", answerID),
		attribute.String("user.id", authorID),
	}
	var out *domain.Comment
	err := p.run(ctx, "add_comment", attrs, func(ctx context.Context, tx *gorm.DB) error {
		a, err := lockAnswer(ctx, tx, answerID)
		if err != nil {
			return err
		}
		if err := lockUsersExist(ctx, tx, authorID); err != nil {
			return err
		}
		c, err := repo.CreateComment(ctx, tx, answerID, authorID, content)
		if err != nil {
			return err
		}
		if err := recomputeAnswer(ctx, tx, answerID); err != nil {
			return err
		}

		rel := related{question: a.QuestionID, answer: a.ID, comment: c.ID}
		if err := notify(ctx, tx, a.AuthorID, authorID, domain.NotificationCommentOnAnswer,
			"New comment on your answer", "Someone commented on your answer.", rel); err != nil {
			return err
		}
		if err := notifyMentions(ctx, tx, authorID, content, "a comment", rel); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteComment removes a comment and recomputes its answer's comment_count.
// Only the comment author may delete it.
func (p *Propagator) DeleteComment(ctx context.Context, commentID, requesterID string) error {
	if err := check(ownedCommentInput{CommentID: commentID, RequesterID: requesterID}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("comment.id", commentID),
		attribute.String("user.id", requesterID),
	}
	return p.run(ctx, "delete_comment", attrs, func(ctx context.Context, tx *gorm.DB) error {
		c, err := repo.GetComment(ctx, tx, commentID)
		if err != nil {
			if repo.IsNotFound(err) {
				return &NotFoundError{Entity: EntityComment, ID: commentID}
			}
			return err
		}
		if c.AuthorID != requesterID {
			return &AuthorizationError{UserID: requesterID, Action: "delete this comment"}
		}
		if _, err := lockAnswer(ctx, tx, c.AnswerID); err != nil {
			return err
		}
		if err := repo.DeleteNotificationsForContent(ctx, tx, nil, nil, []string{c.ID}); err != nil {
			return err
		}
		if err := repo.DeleteComment(ctx, tx, c.ID); err != nil {
			return err
		}
		return recomputeAnswer(ctx, tx, c.AnswerID)
	})
}
