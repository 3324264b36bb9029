package domain

import "time"

// NotificationType classifies why a notification was emitted.
type NotificationType string

// Notification types written by the propagator.
const (
	NotificationAnswerToQuestion NotificationType = "answer_to_question"
	NotificationCommentOnAnswer  NotificationType = "comment_on_answer"
	NotificationMention          NotificationType = "mention"
	NotificationAnswerAccepted   NotificationType = "answer_accepted"
	NotificationVoteReceived     NotificationType = "vote_received"
)

// Notification is an immutable fact record addressed to one user. Only
// IsRead changes after insert. The related_* columns are optional links to
// the content that triggered it and are cleaned up explicitly when that
// content is deleted.
type Notification struct {
	ID                string           `json:"id"                             gorm:"type:char(36);primaryKey"`
	UserID            string           `json:"user_id"                        gorm:"type:char(36);not null;index:ix_notifications_user_unread,priority:1"`
	TriggeredByUserID *string          `json:"triggered_by_user_id,omitempty" gorm:"type:char(36)"`
	Type              NotificationType `json:"type"                           gorm:"type:varchar(32);not null"`
	Title             string           `json:"title"                          gorm:"type:varchar(200);not null"`
	Message           string           `json:"message"                        gorm:"type:text;not null"`
	RelatedQuestionID *string          `json:"related_question_id,omitempty"  gorm:"type:char(36);index"`
	RelatedAnswerID   *string          `json:"related_answer_id,omitempty"    gorm:"type:char(36);index"`
	RelatedCommentID  *string          `json:"related_comment_id,omitempty"   gorm:"type:char(36);index"`
	IsRead            bool             `json:"is_read"                        gorm:"not null;default:false;index:ix_notifications_user_unread,priority:2"`
	CreatedAt         time.Time        `json:"created_at"                     gorm:"index:ix_notifications_user_unread,priority:3"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// TableName returns the database table name for Notification.
func (Notification) TableName() string { return "notifications" }
