// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides row-lock helpers used by the
// propagator to serialise recomputation of overlapping aggregates.
//
// Lock order is fixed: answers, then questions, then users. Within one
// level ids are locked in ascending order. Every caller that takes more than
// one lock must follow this order so two events touching the same rows in
// opposite directions cannot deadlock.
//
// SQLite has no row locks; writers are serialised by the database-level
// write lock, and the locking clause is omitted.
package repo

import (
	"context"
	"database/sql"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// SupportsRowLocks reports whether the dialect understands SELECT … FOR UPDATE.
func SupportsRowLocks(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() != DriverSQLite
}

// SnapshotTxOptions returns the options for a read-only transaction whose
// statements all share one snapshot. On postgres and mysql that is
// REPEATABLE READ. SQLite transactions already read one snapshot and get nil.
func SnapshotTxOptions(db *gorm.DB) *sql.TxOptions {
	if !SupportsRowLocks(db) {
		return nil
	}
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

func forUpdate(db *gorm.DB) *gorm.DB {
	if SupportsRowLocks(db) {
		return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	return db
}

// LockAnswers locks the given answers and returns the rows that exist,
// ordered by id.
func LockAnswers(ctx context.Context, db *gorm.DB, ids ...string) ([]domain.Answer, error) {
	ids = sortedUnique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Answer
	err := forUpdate(db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// LockQuestion locks and returns a question, or ErrNotFound.
func LockQuestion(ctx context.Context, db *gorm.DB, id string) (*domain.Question, error) {
	var q domain.Question
	if err := forUpdate(db.WithContext(ctx)).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// LockUsers locks the given users and returns the rows that exist, ordered by id.
func LockUsers(ctx context.Context, db *gorm.DB, ids ...string) ([]domain.User, error) {
	ids = sortedUnique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.User
	err := forUpdate(db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// LockTags locks the given tags, ordered by id.
func LockTags(ctx context.Context, db *gorm.DB, ids ...string) ([]domain.Tag, error) {
	ids = sortedUnique(ids)
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Tag
	err := forUpdate(db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func sortedUnique(ids []string) []string {
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
	sort.Strings(out)
	return out
}

// LockAcceptedAnswers locks and returns the accepted answers of questionID.
// Callers holding the question lock use it to see acceptances committed
// after their first read.
func LockAcceptedAnswers(ctx context.Context, db *gorm.DB, questionID string) ([]domain.Answer, error) {
	var out []domain.Answer
	err := forUpdate(db.WithContext(ctx)).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// LockQuestionAnswers locks and returns every answer of questionID, ordered by id.
func LockQuestionAnswers(ctx context.Context, db *gorm.DB, questionID string) ([]domain.Answer, error) {
	var out []domain.Answer
	err := forUpdate(db.WithContext(ctx)).
		Where("question_id = ?", questionID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}
