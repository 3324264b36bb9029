// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregation queries behind every
// derived counter. Each function is a pure read over fact tables (votes,
// answers, comments, questions, question_tags); none of them consult a
// stored aggregate, so the result is correct regardless of the order in
// which callers recompute.
//
// Functions accept a *gorm.DB so they can run inside the caller's
// transaction and observe its uncommitted fact writes.
package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// Reputation weights.
const (
	ReputationPerUpvote   = 10
	ReputationPerDownvote = -2
	ReputationPerAccepted = 15
)

// AnswerVoteScore returns +1 per upvote and -1 per downvote on answerID,
// or 0 when the answer has no votes.
func AnswerVoteScore(ctx context.Context, db *gorm.DB, answerID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(CASE WHEN is_upvote THEN 1 ELSE -1 END), 0)
		   FROM votes WHERE answer_id = ?`, answerID).Scan(&n).Error
	return int(n), err
}

// QuestionVoteScore returns the sum of AnswerVoteScore over every answer of
// questionID, computed directly from the votes joined to those answers.
func QuestionVoteScore(ctx context.Context, db *gorm.DB, questionID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(CASE WHEN v.is_upvote THEN 1 ELSE -1 END), 0)
		   FROM votes v JOIN answers a ON a.id = v.answer_id
		  WHERE a.question_id = ?`, questionID).Scan(&n).Error
	return int(n), err
}

// QuestionAnswerCount returns the number of answers attached to questionID.
func QuestionAnswerCount(ctx context.Context, db *gorm.DB, questionID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Answer{}).Where("question_id = ?", questionID).Count(&n).Error
	return int(n), err
}

// AcceptedAnswerID returns the id of the accepted answer of questionID, or
// nil when none is accepted. If the fact table holds several accepted rows
// (a broken invariant), the oldest one wins so the result is deterministic.
func AcceptedAnswerID(ctx context.Context, db *gorm.DB, questionID string) (*string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&domain.Answer{}).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Order("created_at ASC, id ASC").
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return &ids[0], nil
}

// The weights are inlined as literals; PostgreSQL cannot infer a numeric
// type for placeholders inside CASE branches.
var reputationFromVotesSQL = fmt.Sprintf(
	`SELECT COALESCE(SUM(CASE WHEN v.is_upvote THEN %d ELSE %d END), 0)
	   FROM votes v JOIN answers a ON a.id = v.answer_id
	  WHERE a.author_id = ?`, ReputationPerUpvote, ReputationPerDownvote)

// UserReputation returns 10·(upvotes received) − 2·(downvotes received) +
// 15·(accepted answers) over all answers authored by userID. There is no
// floor; the result may be negative.
func UserReputation(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var fromVotes int64
	err := db.WithContext(ctx).Raw(reputationFromVotesSQL, userID).Scan(&fromVotes).Error
	if err != nil {
		return 0, err
	}
	var accepted int64
	err = db.WithContext(ctx).Model(&domain.Answer{}).
		Where("author_id = ? AND is_accepted = ?", userID, true).
		Count(&accepted).Error
	if err != nil {
		return 0, err
	}
	return int(fromVotes) + ReputationPerAccepted*int(accepted), nil
}

// UserQuestionCount returns the number of questions authored by userID.
func UserQuestionCount(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Question{}).Where("author_id = ?", userID).Count(&n).Error
	return int(n), err
}

// UserAnswerCount returns the number of answers authored by userID.
func UserAnswerCount(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Answer{}).Where("author_id = ?", userID).Count(&n).Error
	return int(n), err
}

// AnswerCommentCount returns the number of comments on answerID.
func AnswerCommentCount(ctx context.Context, db *gorm.DB, answerID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Comment{}).Where("answer_id = ?", answerID).Count(&n).Error
	return int(n), err
}

// TagUsageCount returns the number of question_tags rows referencing tagID.
func TagUsageCount(ctx context.Context, db *gorm.DB, tagID string) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.QuestionTag{}).Where("tag_id = ?", tagID).Count(&n).Error
	return int(n), err
}
