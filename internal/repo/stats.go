// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file reads the stored aggregate columns into the
// snapshot types served by the read query and the diagnostics endpoints.
// These functions return what is persisted, not a recomputation.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// GetUserStats returns the stored counters of a user, or ErrNotFound.
func GetUserStats(ctx context.Context, db *gorm.DB, id string) (*domain.UserStats, error) {
	u, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &domain.UserStats{
		UserID:          u.ID,
		ReputationScore: u.ReputationScore,
		QuestionsCount:  u.QuestionsCount,
		AnswersCount:    u.AnswersCount,
	}, nil
}

// GetQuestionStats returns the stored counters of a question, or ErrNotFound.
func GetQuestionStats(ctx context.Context, db *gorm.DB, id string) (*domain.QuestionStats, error) {
	q, err := GetQuestion(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &domain.QuestionStats{
		QuestionID:        q.ID,
		VoteScore:         q.VoteScore,
		AnswerCount:       q.AnswerCount,
		HasAcceptedAnswer: q.HasAcceptedAnswer,
		AcceptedAnswerID:  q.AcceptedAnswerID,
	}, nil
}

// GetAnswerStats returns the stored counters of an answer, or ErrNotFound.
func GetAnswerStats(ctx context.Context, db *gorm.DB, id string) (*domain.AnswerStats, error) {
	a, err := GetAnswer(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &domain.AnswerStats{
		AnswerID:     a.ID,
		QuestionID:   a.QuestionID,
		VoteScore:    a.VoteScore,
		CommentCount: a.CommentCount,
		IsAccepted:   a.IsAccepted,
	}, nil
}

// GetTagStats returns the stored usage counter of a tag, or ErrNotFound.
func GetTagStats(ctx context.Context, db *gorm.DB, id string) (*domain.TagStats, error) {
	t, err := GetTag(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &domain.TagStats{TagID: t.ID, Name: t.Name, UsageCount: t.UsageCount}, nil
}
