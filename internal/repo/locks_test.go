package repo

import (
	"context"
	"reflect"
	"testing"
)

func TestSortedUnique(t *testing.T) {
	got := sortedUnique([]string{"c", "a", "", "c", "b", "a"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("sortedUnique = %v, want %v", got, want)
	}
}

func TestLocks_SQLiteReturnsRowsInIDOrder(t *testing.T) {
	db := newTestDB(t, true)
	f := seed(t, db)
	ctx := context.Background()

	users, err := LockUsers(ctx, db, f.carol.ID, f.alice.ID, f.bob.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("LockUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	for i := 1; i < len(users); i++ {
		if users[i-1].ID >= users[i].ID {
			t.Fatalf("users not ordered by id: %s >= %s", users[i-1].ID, users[i].ID)
		}
	}

	answers, err := LockAnswers(ctx, db, f.a2.ID, "missing", f.a1.ID)
	if err != nil || len(answers) != 2 {
		t.Fatalf("LockAnswers = %d rows, %v", len(answers), err)
	}

	if _, err := LockQuestion(ctx, db, "missing"); !IsNotFound(err) {
		t.Fatalf("LockQuestion(missing): want not found, got %v", err)
	}
	q, err := LockQuestion(ctx, db, f.q.ID)
	if err != nil || q.ID != f.q.ID {
		t.Fatalf("LockQuestion = %+v, %v", q, err)
	}

	if rows, err := LockTags(ctx, db); err != nil || rows != nil {
		t.Fatalf("LockTags() with no ids = %v, %v", rows, err)
	}
}
