package repo

import (
	"context"
	"testing"
	"time"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

func TestNotifications_ListMarkDelete(t *testing.T) {
	db := newTestDB(t, true)
	f := seed(t, db)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"old", "mid", "new"} {
		n := &domain.Notification{
			UserID:          f.alice.ID,
			Type:            domain.NotificationAnswerToQuestion,
			Title:           title,
			Message:         title,
			RelatedAnswerID: &f.a1.ID,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		}
		if err := CreateNotification(ctx, db, n); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}

	list, err := ListNotifications(ctx, db, f.alice.ID, false, 2)
	if err != nil || len(list) != 2 || list[0].Title != "new" || list[1].Title != "mid" {
		t.Fatalf("ListNotifications = %+v, %v", list, err)
	}

	if err := MarkNotificationRead(ctx, db, f.bob.ID, list[0].ID); !IsNotFound(err) {
		t.Fatalf("marking someone else's notification: want not found, got %v", err)
	}
	if err := MarkNotificationRead(ctx, db, f.alice.ID, list[0].ID); err != nil {
		t.Fatalf("MarkNotificationRead: %v", err)
	}
	unread, err := CountUnreadNotifications(ctx, db, f.alice.ID)
	if err != nil || unread != 2 {
		t.Fatalf("CountUnreadNotifications = %d, %v; want 2", unread, err)
	}

	changed, err := MarkAllNotificationsRead(ctx, db, f.alice.ID)
	if err != nil || changed != 2 {
		t.Fatalf("MarkAllNotificationsRead = %d, %v; want 2", changed, err)
	}
	if only, _ := ListNotifications(ctx, db, f.alice.ID, true, 0); len(only) != 0 {
		t.Fatalf("expected no unread notifications, got %d", len(only))
	}

	if err := DeleteNotificationsForContent(ctx, db, nil, []string{f.a1.ID}, nil); err != nil {
		t.Fatalf("DeleteNotificationsForContent: %v", err)
	}
	if all, _ := ListNotifications(ctx, db, f.alice.ID, false, 0); len(all) != 0 {
		t.Fatalf("expected notifications for a1 to be gone, got %d", len(all))
	}
	if err := DeleteNotification(ctx, db, f.alice.ID, "missing"); !IsNotFound(err) {
		t.Fatalf("DeleteNotification(missing): want not found, got %v", err)
	}
}
