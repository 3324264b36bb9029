package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
	"github.com/chiragbiradar/StackIt-odoo/internal/services"
)

func newHandlerDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fixture is a small forum: alice asks, bob answers, carol upvotes, alice
// accepts.
type fixture struct {
	db       *gorm.DB
	p        *services.Propagator
	v        *services.Verifier
	alice    *domain.User
	bob      *domain.User
	question *domain.Question
	answer   *domain.Answer
	tag      *domain.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := newHandlerDB(t)
	nop := zerolog.Nop()
	p := &services.Propagator{DB: db, Log: &nop, RetryInitial: 1}

	mk := func(name string) *domain.User {
		u, err := repo.CreateUser(ctx, db, name, name+"@example.com", name)
		if err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
		return u
	}
	alice, bob, carol := mk("alice"), mk("bob"), mk("carol")

	q, err := p.CreateQuestion(ctx, alice.ID, "How do I join tables?", "Body", []string{"sql"})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	a, err := p.CreateAnswer(ctx, q.ID, bob.ID, "Use JOIN.")
	if err != nil {
		t.Fatalf("create answer: %v", err)
	}
	if err := p.CastOrChangeVote(ctx, carol.ID, a.ID, true); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := p.AcceptAnswer(ctx, q.ID, a.ID, alice.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	tag, err := repo.GetTagByName(ctx, db, "sql")
	if err != nil {
		t.Fatalf("get tag: %v", err)
	}

	return &fixture{
		db: db, p: p, v: &services.Verifier{DB: db, Log: &nop},
		alice: alice, bob: bob, question: q, answer: a, tag: tag,
	}
}

func (f *fixture) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(f.p, f.v)
	r.GET("/users/:id/stats", h.UserStats)
	r.GET("/questions/:id/stats", h.QuestionStats)
	r.GET("/answers/:id/stats", h.AnswerStats)
	r.GET("/tags/:id/stats", h.TagStats)
	r.GET("/consistency", h.Consistency)
	return r
}

func get(r http.Handler, path string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}
