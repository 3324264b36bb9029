package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

func TestNormalizeTagName(t *testing.T) {
	// "e" + combining acute accent composes to a single rune under NFC.
	assert.Equal(t, "caf\u00e9", NormalizeTagName("  cafe\u0301 "))
	assert.Equal(t, "React", NormalizeTagName("React"))
}

func TestLinkTag_CaseSensitive(t *testing.T) {
	p, db := newTestPropagator(t)
	ctx := context.Background()
	alice := mkUser(t, db, "alice")
	q := mkQuestion(t, p, alice)

	lower, err := p.LinkTag(ctx, q.ID, "react")
	require.NoError(t, err)
	upper, err := p.LinkTag(ctx, q.ID, "React")
	require.NoError(t, err)
	assert.NotEqual(t, lower.ID, upper.ID)
	assert.Equal(t, 1, lower.UsageCount)
	assert.Equal(t, 1, upper.UsageCount)
	requireConsistent(t, db)
}

func TestLinkTag_UsageAcrossQuestions(t *testing.T) {
	p, db := newTestPropagator(t)
	ctx := context.Background()
	alice, bob := mkUser(t, db, "alice"), mkUser(t, db, "bob")
	q1, q2 := mkQuestion(t, p, alice), mkQuestion(t, p, bob)

	_, err := p.LinkTag(ctx, q1.ID, "sql")
	require.NoError(t, err)
	tag, err := p.LinkTag(ctx, q2.ID, "sql")
	require.NoError(t, err)
	assert.Equal(t, 2, tag.UsageCount)

	require.NoError(t, p.UnlinkTag(ctx, q1.ID, "sql"))
	require.NoError(t, p.UnlinkTag(ctx, q1.ID, "sql"))
	stored, err := repo.GetTag(ctx, db, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UsageCount)

	// Unknown tag name is a no-op.
	require.NoError(t, p.UnlinkTag(ctx, q1.ID, "never-created"))
	_, err = repo.GetTagByName(ctx, db, "never-created")
	assert.True(t, repo.IsNotFound(err))
	requireConsistent(t, db)
}

func TestLinkTag_Errors(t *testing.T) {
	p, db := newTestPropagator(t)
	ctx := context.Background()
	q := mkQuestion(t, p, mkUser(t, db, "alice"))

	_, err := p.LinkTag(ctx, "missing", "go")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.LinkTag(ctx, q.ID, strings.Repeat("x", 51))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = p.LinkTag(ctx, q.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = repo.GetTagByName(ctx, db, "go")
	assert.True(t, repo.IsNotFound(err), "failed link must not leave a tag behind")
}
