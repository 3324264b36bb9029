// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Vote
// model. (user_id, answer_id) is the natural key; a repeated vote replaces
// the stored polarity in place.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// GetVote returns the vote of userID on answerID, or (nil, nil) if the user
// has not voted.
func GetVote(ctx context.Context, db *gorm.DB, userID, answerID string) (*domain.Vote, error) {
	var v domain.Vote
	res := db.WithContext(ctx).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		Limit(1).
		Find(&v)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &v, nil
}

// UpsertVote inserts a vote or, when (user_id, answer_id) already exists,
// overwrites its polarity.
func UpsertVote(ctx context.Context, db *gorm.DB, userID, answerID string, isUpvote bool) error {
	now := time.Now().UTC()
	v := &domain.Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		AnswerID:  answerID,
		IsUpvote:  isUpvote,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return omitAssociations(db.WithContext(ctx)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "answer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_upvote", "updated_at"}),
		}).
		Create(v).Error
}

// DeleteVote removes the vote of userID on answerID and reports whether a
// row existed.
func DeleteVote(ctx context.Context, db *gorm.DB, userID, answerID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND answer_id = ?", userID, answerID).
		Delete(&domain.Vote{})
	return res.RowsAffected > 0, res.Error
}

// DeleteVotesByAnswers removes every vote cast on the given answers.
func DeleteVotesByAnswers(ctx context.Context, db *gorm.DB, answerIDs ...string) error {
	if len(answerIDs) == 0 {
		return nil
	}
	return db.WithContext(ctx).Where("answer_id IN ?", answerIDs).Delete(&domain.Vote{}).Error
}

// ListVotes returns every vote ordered by id.
func ListVotes(ctx context.Context, db *gorm.DB) ([]domain.Vote, error) {
	var out []domain.Vote
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}
