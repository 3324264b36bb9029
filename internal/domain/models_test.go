package domain

import (
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:domain_" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&User{}, &Question{}, &Answer{}, &Vote{}, &Tag{}, &QuestionTag{}, &Comment{}, &Notification{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(User{}).TableName():         "users",
		(Question{}).TableName():     "questions",
		(Answer{}).TableName():       "answers",
		(Vote{}).TableName():         "votes",
		(Tag{}).TableName():          "tags",
		(QuestionTag{}).TableName():  "question_tags",
		(Comment{}).TableName():      "comments",
		(Notification{}).TableName(): "notifications",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, tc := range []struct {
		model any
		index string
	}{
		{&Vote{}, "ux_votes_user_answer"},
		{&QuestionTag{}, "uq_question_tag"},
		{&Answer{}, "ix_answers_accepted"},
		{&Answer{}, "ix_answers_question"},
		{&Notification{}, "ix_notifications_user_unread"},
		{&User{}, "ix_users_reputation"},
	} {
		if !m.HasIndex(tc.model, tc.index) {
			t.Fatalf("expected index %s on %T", tc.index, tc.model)
		}
	}
}

func TestConstraints_OneVotePerUserAndAnswer_AndCascades(t *testing.T) {
	db := newDomainDB(t)
	now := time.Now().UTC()

	mustCreate := func(v any) {
		t.Helper()
		if err := db.Omit(clause.Associations).Create(v).Error; err != nil {
			t.Fatalf("insert %T: %v", v, err)
		}
	}
	mustCreate(&User{ID: "u1", Username: "alice", Email: "a@example.com", CreatedAt: now, UpdatedAt: now})
	mustCreate(&User{ID: "u2", Username: "bob", Email: "b@example.com", CreatedAt: now, UpdatedAt: now})
	mustCreate(&Question{ID: "q1", AuthorID: "u1", Title: "T", Description: "D", CreatedAt: now, UpdatedAt: now})
	mustCreate(&Answer{ID: "a1", QuestionID: "q1", AuthorID: "u2", Content: "A", CreatedAt: now, UpdatedAt: now})
	mustCreate(&Vote{ID: "v1", UserID: "u1", AnswerID: "a1", IsUpvote: true, CreatedAt: now, UpdatedAt: now})
	mustCreate(&Tag{ID: "t1", Name: "go", CreatedAt: now, UpdatedAt: now})
	mustCreate(&QuestionTag{ID: "qt1", QuestionID: "q1", TagID: "t1", CreatedAt: now})
	mustCreate(&Comment{ID: "c1", AnswerID: "a1", AuthorID: "u1", Content: "nice", CreatedAt: now, UpdatedAt: now})

	dup := &Vote{ID: "v2", UserID: "u1", AnswerID: "a1", IsUpvote: false, CreatedAt: now, UpdatedAt: now}
	if err := db.Omit(clause.Associations).Create(dup).Error; err == nil {
		t.Fatalf("second vote by the same user on the same answer must violate the unique index")
	}

	if err := db.Delete(&Question{}, "id = ?", "q1").Error; err != nil {
		t.Fatalf("delete question: %v", err)
	}
	for _, tbl := range []any{&Answer{}, &Vote{}, &QuestionTag{}, &Comment{}} {
		var n int64
		if err := db.Model(tbl).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", tbl, err)
		}
		if n != 0 {
			t.Fatalf("expected %T rows to cascade-delete with their question, got %d", tbl, n)
		}
	}
	var tags int64
	db.Model(&Tag{}).Count(&tags)
	if tags != 1 {
		t.Fatalf("tags must survive question deletion, got %d", tags)
	}
}

func TestMismatch_String(t *testing.T) {
	id := "a-1"
	cases := []struct {
		m    Mismatch
		want string
	}{
		{Mismatch{Entity: EntityUser, ID: "u-1", Field: "reputation_score", Stored: 5, Expected: 25}, "user/u-1.reputation_score: stored=5 expected=25"},
		{Mismatch{Entity: EntityQuestion, ID: "q-1", Field: "accepted_answer_id", Stored: (*string)(nil), Expected: &id}, "question/q-1.accepted_answer_id: stored=<nil> expected=a-1"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.want {
			t.Fatalf("String() = %q; want %q", got, tc.want)
		}
	}
}
