// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Question
// model.
//
// Functions:
//
//   - CreateQuestion(ctx, db, authorID, title, description) -> *domain.Question, error
//     Inserts a question with zeroed aggregates.
//
//   - GetQuestion(ctx, db, id) -> *domain.Question, error
//     Fetches a question, or ErrNotFound if missing.
//
//   - SetQuestionClosed(ctx, db, id, closed) -> error
//     Updates the is_closed fact column.
//
//   - DeleteQuestion(ctx, db, id) -> error
//     Hard-deletes the question row. Children must be removed first.
//
//   - UpdateQuestionAggregates(ctx, db, id, voteScore, answerCount, acceptedID) -> error
//     Overwrites the derived columns; has_accepted_answer follows acceptedID.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// CreateQuestion inserts a new Question authored by authorID.
func CreateQuestion(ctx context.Context, db *gorm.DB, authorID, title, description string) (*domain.Question, error) {
	now := time.Now().UTC()
	q := &domain.Question{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := omitAssociations(db.WithContext(ctx)).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

// GetQuestion fetches a question by id. If the record does not exist, it
// returns ErrNotFound.
func GetQuestion(ctx context.Context, db *gorm.DB, id string) (*domain.Question, error) {
	var q domain.Question
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQuestions returns every question ordered by id.
func ListQuestions(ctx context.Context, db *gorm.DB) ([]domain.Question, error) {
	var out []domain.Question
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// SetQuestionClosed updates the closed flag. Returns ErrNotFound if no row
// matches.
func SetQuestionClosed(ctx context.Context, db *gorm.DB, id string, closed bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_closed": closed, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteQuestion removes the question row.
func DeleteQuestion(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Question{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateQuestionAggregates overwrites the derived columns of a question.
// has_accepted_answer is written as acceptedID != nil so the two columns
// never disagree.
func UpdateQuestionAggregates(ctx context.Context, db *gorm.DB, id string, voteScore, answerCount int, acceptedID *string) error {
	res := db.WithContext(ctx).
		Model(&domain.Question{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"vote_score":          voteScore,
			"answer_count":        answerCount,
			"has_accepted_answer": acceptedID != nil,
			"accepted_answer_id":  acceptedID,
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
