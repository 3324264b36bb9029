package services

import (
	"context"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// mentionRe matches @username tokens.
var mentionRe = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns the distinct usernames mentioned in text, in order
// of first appearance.
func ExtractMentions(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// related carries the optional content links of a notification.
type related struct {
	question, answer, comment string
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// notify writes one notification inside tx. Notifications to oneself are
// skipped.
func notify(ctx context.Context, tx *gorm.DB, recipient, actor string, typ domain.NotificationType, title, message string, rel related) error {
	if recipient == "" || recipient == actor {
		return nil
	}
	return repo.CreateNotification(ctx, tx, &domain.Notification{
		UserID:            recipient,
		TriggeredByUserID: optional(actor),
		Type:              typ,
		Title:             title,
		Message:           message,
		RelatedQuestionID: optional(rel.question),
		RelatedAnswerID:   optional(rel.answer),
		RelatedCommentID:  optional(rel.comment),
	})
}

// notifyMentions sends one mention notification per distinct existing user
// named in text, excluding the actor.
func notifyMentions(ctx context.Context, tx *gorm.DB, actor, text, where string, rel related) error {
	names := ExtractMentions(text)
	if len(names) == 0 {
		return nil
	}
	users, err := repo.FindUsersByUsernames(ctx, tx, names)
	if err != nil {
		return err
	}
	for _, u := range users {
		msg := fmt.Sprintf("You were mentioned in %s.", where)
		if err := notify(ctx, tx, u.ID, actor, domain.NotificationMention, "You were mentioned", msg, rel); err != nil {
			return err
		}
	}
	return nil
}
