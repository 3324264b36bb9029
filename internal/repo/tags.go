// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for Tag and the
// question_tags join table. Names are matched exactly; normalisation is the
// caller's job.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// GetTagByName returns the tag with exactly this name, or ErrNotFound.
func GetTagByName(ctx context.Context, db *gorm.DB, name string) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).Where("name = ?", name).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTag returns a tag by id, or ErrNotFound.
func GetTag(ctx context.Context, db *gorm.DB, id string) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// FindOrCreateTag returns the tag named name, inserting it first if needed.
// A concurrent insert of the same name is absorbed by ON CONFLICT DO NOTHING
// followed by a re-read.
func FindOrCreateTag(ctx context.Context, db *gorm.DB, name string) (*domain.Tag, bool, error) {
	now := time.Now().UTC()
	t := &domain.Tag{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(t)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return t, true, nil
	}
	existing, err := GetTagByName(ctx, db, name)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// LinkQuestionTag inserts the (questionID, tagID) pair and reports whether a
// new row was written.
func LinkQuestionTag(ctx context.Context, db *gorm.DB, questionID, tagID string) (bool, error) {
	qt := &domain.QuestionTag{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		TagID:      tagID,
		CreatedAt:  time.Now().UTC(),
	}
	res := omitAssociations(db.WithContext(ctx)).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question_id"}, {Name: "tag_id"}},
			DoNothing: true,
		}).
		Create(qt)
	return res.RowsAffected == 1, res.Error
}

// UnlinkQuestionTag removes the (questionID, tagID) pair and reports whether
// a row existed.
func UnlinkQuestionTag(ctx context.Context, db *gorm.DB, questionID, tagID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("question_id = ? AND tag_id = ?", questionID, tagID).
		Delete(&domain.QuestionTag{})
	return res.RowsAffected > 0, res.Error
}

// TagIDsForQuestion returns the ids of every tag linked to questionID.
func TagIDsForQuestion(ctx context.Context, db *gorm.DB, questionID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.QuestionTag{}).
		Where("question_id = ?", questionID).
		Order("tag_id ASC").
		Pluck("tag_id", &ids).Error
	return ids, err
}

// DeleteQuestionTags removes every tag link of questionID.
func DeleteQuestionTags(ctx context.Context, db *gorm.DB, questionID string) error {
	return db.WithContext(ctx).Where("question_id = ?", questionID).Delete(&domain.QuestionTag{}).Error
}

// ListTags returns every tag ordered by id.
func ListTags(ctx context.Context, db *gorm.DB) ([]domain.Tag, error) {
	var out []domain.Tag
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// ListQuestionTags returns every link row ordered by id.
func ListQuestionTags(ctx context.Context, db *gorm.DB) ([]domain.QuestionTag, error) {
	var out []domain.QuestionTag
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// UpdateTagUsage overwrites the derived usage_count of a tag.
func UpdateTagUsage(ctx context.Context, db *gorm.DB, id string, usage int) error {
	res := db.WithContext(ctx).
		Model(&domain.Tag{}).
		Where("id = ?", id).
		Updates(map[string]any{"usage_count": usage, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
