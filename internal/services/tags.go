package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

// LinkTag attaches the tag named tagName to questionID, creating the tag if
// it does not exist, and recomputes its usage_count. Linking an already
// linked tag is a no-op.
func (p *Propagator) LinkTag(ctx context.Context, questionID, tagName string) (*domain.Tag, error) {
	name := NormalizeTagName(tagName)
	if err := check(tagInput{QuestionID: questionID, Name: name}); err != nil {
		return nil, err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.String("tag.name", name),
	}
	var out *domain.Tag
	err := p.run(ctx, "link_tag", attrs, func(ctx context.Context, tx *gorm.DB) error {
		if err := (lockPlan{question: questionID}).lock(ctx, tx); err != nil {
			return err
		}
		tag, err := linkTag(ctx, tx, questionID, name)
		if err != nil {
			return err
		}
		if err := recomputeTags(ctx, tx, tag.ID); err != nil {
			return err
		}
		out, err = repo.GetTag(ctx, tx, tag.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnlinkTag detaches the tag named tagName from questionID and recomputes its
// usage_count. Unknown tags and absent links are no-ops.
func (p *Propagator) UnlinkTag(ctx context.Context, questionID, tagName string) error {
	name := NormalizeTagName(tagName)
	if err := check(tagInput{QuestionID: questionID, Name: name}); err != nil {
		return err
	}
	attrs := []attribute.KeyValue{
		attribute.String("question.id", questionID),
		attribute.String("tag.name", name),
	}
	return p.run(ctx, "unlink_tag", attrs, func(ctx context.Context, tx *gorm.DB) error {
		if err := (lockPlan{question: questionID}).lock(ctx, tx); err != nil {
			return err
		}
		tag, err := repo.GetTagByName(ctx, tx, name)
		if repo.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := (lockPlan{tags: []string{tag.ID}}).lock(ctx, tx); err != nil {
			return err
		}
		if _, err := repo.UnlinkQuestionTag(ctx, tx, questionID, tag.ID); err != nil {
			return err
		}
		return recomputeTags(ctx, tx, tag.ID)
	})
}

// linkTag finds or creates the tag, locks it and links it. The caller
// recomputes usage.
func linkTag(ctx context.Context, tx *gorm.DB, questionID, name string) (*domain.Tag, error) {
	tag, _, err := repo.FindOrCreateTag(ctx, tx, name)
	if err != nil {
		return nil, err
	}
	if err := (lockPlan{tags: []string{tag.ID}}).lock(ctx, tx); err != nil {
		return nil, err
	}
	if _, err := repo.LinkQuestionTag(ctx, tx, questionID, tag.ID); err != nil {
		return nil, err
	}
	return tag, nil
}
