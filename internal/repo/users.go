// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported as ErrNotFound).
//   - Unique violations on username/email surface as the raw driver error;
//     use IsDuplicate to classify them.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// CreateUser inserts a new User with zeroed aggregates.
func CreateUser(ctx context.Context, db *gorm.DB, username, email, fullName string) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		FullName:  fullName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUsersByUsernames returns the users whose username is in names.
// Unknown names are silently skipped.
func FindUsersByUsernames(ctx context.Context, db *gorm.DB, names []string) ([]domain.User, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var out []domain.User
	err := db.WithContext(ctx).
		Where("username IN ?", names).
		Order("username ASC").
		Find(&out).Error
	return out, err
}

// ListUsers returns every user ordered by id.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// UpdateUserAggregates overwrites the derived counters of a user.
// It returns ErrNotFound when no row matches.
func UpdateUserAggregates(ctx context.Context, db *gorm.DB, id string, reputation, questions, answers int) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reputation_score": reputation,
			"questions_count":  questions,
			"answers_count":    answers,
			"updated_at":       time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// omitAssociations keeps Create from touching belongs-to associations.
func omitAssociations(db *gorm.DB) *gorm.DB {
	return db.Omit(clause.Associations)
}
