// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Notification model. Rows are append-only apart from is_read.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// CreateNotification inserts n, assigning ID and timestamps when unset.
func CreateNotification(ctx context.Context, db *gorm.DB, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
	return db.WithContext(ctx).Create(n).Error
}

// ListNotifications returns the newest notifications of userID first.
// limit <= 0 means no limit.
func ListNotifications(ctx context.Context, db *gorm.DB, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	q = q.Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []domain.Notification
	err := q.Find(&out).Error
	return out, err
}

// CountUnreadNotifications returns how many unread notifications userID has.
func CountUnreadNotifications(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

// MarkNotificationRead flags one notification owned by userID as read.
// Returns ErrNotFound if the notification does not exist or belongs to
// someone else.
func MarkNotificationRead(ctx context.Context, db *gorm.DB, userID, id string) error {
	var n domain.Notification
	if err := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&n).Error; err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now().UTC()}).Error
}

// MarkAllNotificationsRead flags every unread notification of userID and
// returns how many rows changed.
func MarkAllNotificationsRead(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// DeleteNotification removes one notification owned by userID.
func DeleteNotification(ctx context.Context, db *gorm.DB, userID, id string) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteNotificationsForContent removes notifications that link to any of the
// given questions, answers or comments.
func DeleteNotificationsForContent(ctx context.Context, db *gorm.DB, questionIDs, answerIDs, commentIDs []string) error {
	q := db.WithContext(ctx)
	var conds []string
	var args []any
	if len(questionIDs) > 0 {
		conds = append(conds, "related_question_id IN ?")
		args = append(args, questionIDs)
	}
	if len(answerIDs) > 0 {
		conds = append(conds, "related_answer_id IN ?")
		args = append(args, answerIDs)
	}
	if len(commentIDs) > 0 {
		conds = append(conds, "related_comment_id IN ?")
		args = append(args, commentIDs)
	}
	if len(conds) == 0 {
		return nil
	}
	where := conds[0]
	for _, c := range conds[1:] {
		where += " OR " + c
	}
	return q.Where(where, args...).Delete(&domain.Notification{}).Error
}
