package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:propagator_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repo.AutoMigrate(db), "automigrate")
	return db
}

func newTestPropagator(t *testing.T) (*Propagator, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	nop := zerolog.Nop()
	return &Propagator{DB: db, Log: &nop, RetryInitial: 1}, db
}

func mkUser(t *testing.T, db *gorm.DB, name string) *domain.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), db, name, name+"@example.com", name)
	require.NoError(t, err)
	return u
}

func mkQuestion(t *testing.T, p *Propagator, author *domain.User, tags ...string) *domain.Question {
	t.Helper()
	q, err := p.CreateQuestion(context.Background(), author.ID, "Question by "+author.Username, "Body", tags)
	require.NoError(t, err)
	return q
}

func mkAnswer(t *testing.T, p *Propagator, q *domain.Question, author *domain.User) *domain.Answer {
	t.Helper()
	a, err := p.CreateAnswer(context.Background(), q.ID, author.ID, "Answer by "+author.Username)
	require.NoError(t, err)
	return a
}

func loadUser(t *testing.T, db *gorm.DB, id string) *domain.User {
	t.Helper()
	u, err := repo.GetUser(context.Background(), db, id)
	require.NoError(t, err)
	return u
}

func loadQuestion(t *testing.T, db *gorm.DB, id string) *domain.Question {
	t.Helper()
	q, err := repo.GetQuestion(context.Background(), db, id)
	require.NoError(t, err)
	return q
}

func loadAnswer(t *testing.T, db *gorm.DB, id string) *domain.Answer {
	t.Helper()
	a, err := repo.GetAnswer(context.Background(), db, id)
	require.NoError(t, err)
	return a
}

// requireConsistent fails the test if any stored aggregate disagrees with
// the fact tables.
func requireConsistent(t *testing.T, db *gorm.DB) {
	t.Helper()
	v := &Verifier{DB: db}
	mismatches, err := v.Verify(context.Background())
	require.NoError(t, err)
	require.Empty(t, mismatches, "stored aggregates drifted: %v", mismatches)
}

// interleaveAfterQuery runs fn once, inside the caller's transaction, right
// after the first query on table whose SQL contains marker. It stands in for
// a concurrent event that committed between that read and the row locks.
func interleaveAfterQuery(t *testing.T, db *gorm.DB, table, marker string, fn func(tx *gorm.DB)) *atomic.Bool {
	t.Helper()
	var fired atomic.Bool
	name := "test:interleave_" + table + "_" + uuid.NewString()
	require.NoError(t, db.Callback().Query().After("gorm:query").Register(name, func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement == nil || tx.Statement.Table != table {
			return
		}
		if !strings.Contains(tx.Statement.SQL.String(), marker) || !fired.CompareAndSwap(false, true) {
			return
		}
		fn(tx.Session(&gorm.Session{NewDB: true}))
	}))
	return &fired
}
