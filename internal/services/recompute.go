package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// The recompute helpers rebuild every derived column of one row from the fact
// tables and overwrite it. They never read a stored aggregate, so calling
// them in any order, or more than once, yields the same result.

func recomputeAnswer(ctx context.Context, tx *gorm.DB, answerID string) error {
	score, err := repo.AnswerVoteScore(ctx, tx, answerID)
	if err != nil {
		return err
	}
	comments, err := repo.AnswerCommentCount(ctx, tx, answerID)
	if err != nil {
		return err
	}
	return repo.UpdateAnswerAggregates(ctx, tx, answerID, score, comments)
}

func recomputeQuestion(ctx context.Context, tx *gorm.DB, questionID string) error {
	score, err := repo.QuestionVoteScore(ctx, tx, questionID)
	if err != nil {
		return err
	}
	count, err := repo.QuestionAnswerCount(ctx, tx, questionID)
	if err != nil {
		return err
	}
	accepted, err := repo.AcceptedAnswerID(ctx, tx, questionID)
	if err != nil {
		return err
	}
	return repo.UpdateQuestionAggregates(ctx, tx, questionID, score, count, accepted)
}

func recomputeUsers(ctx context.Context, tx *gorm.DB, userIDs ...string) error {
	for _, id := range uniqueIDs(userIDs) {
		rep, err := repo.UserReputation(ctx, tx, id)
		if err != nil {
			return err
		}
		questions, err := repo.UserQuestionCount(ctx, tx, id)
		if err != nil {
			return err
		}
		answers, err := repo.UserAnswerCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := repo.UpdateUserAggregates(ctx, tx, id, rep, questions, answers); err != nil {
			return err
		}
	}
	return nil
}

func recomputeTags(ctx context.Context, tx *gorm.DB, tagIDs ...string) error {
	for _, id := range uniqueIDs(tagIDs) {
		n, err := repo.TagUsageCount(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := repo.UpdateTagUsage(ctx, tx, id, n); err != nil {
			return err
		}
	}
	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
