// Package services – NotificationService
//
// NotificationService is the read/ack side of notifications. Writes happen
// inside the propagation events that trigger them; this service only lists,
// counts, marks and deletes a recipient's own rows.
package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// NotificationService manages a user's notification inbox.
type NotificationService struct {
	DB *gorm.DB
}

// List returns userID's notifications, newest first. limit <= 0 means no
// limit.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	ctx, span := otel.Tracer("services/NotificationService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Bool("unread_only", unreadOnly),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	items, err := repo.ListNotifications(ctx, s.DB, userID, unreadOnly, limit)
	if err != nil {
		return nil, &PersistenceError{Op: "list_notifications", Err: err}
	}
	return items, nil
}

// UnreadCount returns how many unread notifications userID has.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := repo.CountUnreadNotifications(ctx, s.DB, userID)
	if err != nil {
		return 0, &PersistenceError{Op: "count_notifications", Err: err}
	}
	return n, nil
}

// MarkRead flags one of userID's notifications as read. A notification owned
// by someone else is reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	err := repo.MarkNotificationRead(ctx, s.DB, userID, id)
	return readError("mark_notification_read", EntityNotification, id, err)
}

// MarkAllRead flags every unread notification of userID and returns how many
// changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := repo.MarkAllNotificationsRead(ctx, s.DB, userID)
	if err != nil {
		return 0, &PersistenceError{Op: "mark_all_notifications_read", Err: err}
	}
	return n, nil
}

// Delete removes one of userID's notifications.
func (s *NotificationService) Delete(ctx context.Context, userID, id string) error {
	err := repo.DeleteNotification(ctx, s.DB, userID, id)
	return readError("delete_notification", EntityNotification, id, err)
}
