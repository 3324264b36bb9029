// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Answer
// model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// CreateAnswer inserts a new, unaccepted Answer with zeroed aggregates.
func CreateAnswer(ctx context.Context, db *gorm.DB, questionID, authorID, content string) (*domain.Answer, error) {
	now := time.Now().UTC()
	a := &domain.Answer{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		AuthorID:   authorID,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := omitAssociations(db.WithContext(ctx)).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// GetAnswer fetches an answer by id, or ErrNotFound.
func GetAnswer(ctx context.Context, db *gorm.DB, id string) (*domain.Answer, error) {
	var a domain.Answer
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAnswersByQuestion returns the answers of questionID ordered by
// creation time ascending.
func ListAnswersByQuestion(ctx context.Context, db *gorm.DB, questionID string) ([]domain.Answer, error) {
	var out []domain.Answer
	err := db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListAcceptedAnswers returns the accepted answers of questionID.
func ListAcceptedAnswers(ctx context.Context, db *gorm.DB, questionID string) ([]domain.Answer, error) {
	var out []domain.Answer
	err := db.WithContext(ctx).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListAnswers returns every answer ordered by id.
func ListAnswers(ctx context.Context, db *gorm.DB) ([]domain.Answer, error) {
	var out []domain.Answer
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// SetAnswerAccepted writes the is_accepted fact for one answer.
func SetAnswerAccepted(ctx context.Context, db *gorm.DB, id string, accepted bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_accepted": accepted, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearAcceptedAnswers unsets is_accepted on every accepted answer of
// questionID except keepID (pass "" to clear all).
func ClearAcceptedAnswers(ctx context.Context, db *gorm.DB, questionID, keepID string) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("question_id = ? AND is_accepted = ?", questionID, true)
	if keepID != "" {
		q = q.Where("id <> ?", keepID)
	}
	res := q.Updates(map[string]any{"is_accepted": false, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// DeleteAnswer removes the answer row.
func DeleteAnswer(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Answer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateAnswerAggregates overwrites the derived counters of an answer.
func UpdateAnswerAggregates(ctx context.Context, db *gorm.DB, id string, voteScore, commentCount int) error {
	res := db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"vote_score":    voteScore,
			"comment_count": commentCount,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
