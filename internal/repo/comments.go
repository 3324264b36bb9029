package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// CreateComment inserts a comment on answerID.
func CreateComment(ctx context.Context, db *gorm.DB, answerID, authorID, content string) (*domain.Comment, error) {
	now := time.Now().UTC()
	c := &domain.Comment{
		ID:        uuid.NewString(),
		AnswerID:  answerID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := omitAssociations(db.WithContext(ctx)).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetComment fetches a comment by id, or ErrNotFound.
func GetComment(ctx context.Context, db *gorm.DB, id string) (*domain.Comment, error) {
	var c domain.Comment
	if err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteComment removes one comment.
func DeleteComment(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Comment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CommentIDsByAnswers returns the ids of every comment on the given answers.
func CommentIDsByAnswers(ctx context.Context, db *gorm.DB, answerIDs ...string) ([]string, error) {
	if len(answerIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("answer_id IN ?", answerIDs).
		Pluck("id", &ids).Error
	return ids, err
}

// DeleteCommentsByAnswers removes every comment on the given answers.
func DeleteCommentsByAnswers(ctx context.Context, db *gorm.DB, answerIDs ...string) error {
	if len(answerIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Where("answer_id IN ?", answerIDs).Delete(&domain.Comment{}).Error
}

// ListComments returns every comment ordered by id.
func ListComments(ctx context.Context, db *gorm.DB) ([]domain.Comment, error) {
	var out []domain.Comment
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}
