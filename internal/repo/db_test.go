package repo

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}

	// Be tolerant across platforms/drivers:
	// - Windows: *os.PathError ("CreateFile â€¦ cannot find the file specified")
	// - SQLite:  "unable to open database file" / "out of memory (14)"
	// - Unix:    "no such file or directory"
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpenSQLite_SetsPragmas_Pool_AndAutoMigrate(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "app.db")

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	// --- Verify PRAGMAs set by OpenSQLite ---
	var (
		journalMode string
		syncVal     int
		fkOn        int
		busyMS      int
	)

	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if strings.ToLower(journalMode) != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journalMode)
	}

	if err := db.Raw("PRAGMA synchronous;").Row().Scan(&syncVal); err != nil {
		t.Fatalf("PRAGMA synchronous: %v", err)
	}
	// NORMAL == 1
	if syncVal != 1 {
		t.Fatalf("expected synchronous=1 (NORMAL), got %d", syncVal)
	}

	if err := db.Raw("PRAGMA foreign_keys;").Row().Scan(&fkOn); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fkOn != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fkOn)
	}

	if err := db.Raw("PRAGMA busy_timeout;").Row().Scan(&busyMS); err != nil {
		t.Fatalf("PRAGMA busy_timeout: %v", err)
	}
	if busyMS != 5000 {
		t.Fatalf("expected busy_timeout=5000, got %d", busyMS)
	}

	// --- Verify pool tuning applied ---
	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 10 {
		t.Fatalf("expected MaxOpenConnections=10, got %d", stats.MaxOpenConnections)
	}

	// --- AutoMigrate should create all tables ---
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{
		&domain.User{}, &domain.Question{}, &domain.Answer{}, &domain.Vote{},
		&domain.Tag{}, &domain.QuestionTag{}, &domain.Comment{}, &domain.Notification{},
	} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}

	// Quick insert round-trip to prove schema is usable.
	now := time.Now().UTC()
	user := &domain.User{ID: "u1", Username: "alice", Email: "a@x.io", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	q := &domain.Question{ID: "q1", AuthorID: "u1", Title: "t", Description: "d", CreatedAt: now, UpdatedAt: now}
	if err := db.Omit("Author").Create(q).Error; err != nil {
		t.Fatalf("insert question: %v", err)
	}

	var got domain.Question
	if err := db.First(&got, "id = ?", "q1").Error; err != nil || got.AuthorID != "u1" {
		t.Fatalf("readback question failed: err=%v got=%+v", err, got)
	}

	// Foreign keys are enforced: an answer to a missing question is rejected.
	bad := &domain.Answer{ID: "a1", QuestionID: "nope", AuthorID: "u1", Content: "x", CreatedAt: now, UpdatedAt: now}
	if err := db.Omit("Question", "Author").Create(bad).Error; err == nil {
		t.Fatalf("expected foreign key violation for dangling answer")
	}
}

func TestOpenSQLite_MemoryDSN_SingleConnection(t *testing.T) {
	db, err := OpenSQLite("file:open_memory_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected MaxOpenConnections=1 for memory dsn, got %d", got)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	db, err := Open("oracle", "x")
	if err == nil || db != nil {
		t.Fatalf("expected error for unsupported driver, got db=%v err=%v", db, err)
	}
	if !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("error should name the driver: %v", err)
	}
}

func TestOpen_DefaultsToSQLite(t *testing.T) {
	db, err := Open("", "file:open_default_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if name := db.Dialector.Name(); name != DriverSQLite {
		t.Fatalf("expected sqlite dialector, got %q", name)
	}
	if SupportsRowLocks(db) {
		t.Fatalf("sqlite must not use row locks")
	}
}

func TestMySQLDSN_ForcesFoundRowsAndParseTime(t *testing.T) {
	got, err := MySQLDSN("stackit:secret@tcp(db:3306)/stackit?charset=utf8mb4")
	if err != nil {
		t.Fatalf("MySQLDSN: %v", err)
	}
	for _, want := range []string{"clientFoundRows=true", "parseTime=true", "charset=utf8mb4", "tcp(db:3306)/stackit"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}

	// Explicitly disabled flags are overridden.
	got, err = MySQLDSN("u:p@tcp(db:3306)/x?clientFoundRows=false&parseTime=false")
	if err != nil {
		t.Fatalf("MySQLDSN: %v", err)
	}
	if !strings.Contains(got, "clientFoundRows=true") || !strings.Contains(got, "parseTime=true") {
		t.Fatalf("flags not forced: %q", got)
	}

	if _, err := MySQLDSN("not a dsn"); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}

func TestMySQLTagNameDDL_IsBinaryCollation(t *testing.T) {
	if !strings.Contains(mysqlTagNameDDL, "COLLATE utf8mb4_bin") || !strings.Contains(mysqlTagNameDDL, "varchar(50)") {
		t.Fatalf("unexpected ddl: %s", mysqlTagNameDDL)
	}
}

func TestSnapshotTxOptions(t *testing.T) {
	lite := newTestDB(t, false)
	if opts := SnapshotTxOptions(lite); opts != nil {
		t.Fatalf("sqlite: want nil options, got %+v", opts)
	}

	for _, d := range []gorm.Dialector{
		postgres.New(postgres.Config{DSN: "host=localhost"}),
		mysql.New(mysql.Config{DSN: "u:p@tcp(localhost:3306)/x"}),
	} {
		db := &gorm.DB{Config: &gorm.Config{Dialector: d}}
		opts := SnapshotTxOptions(db)
		if opts == nil {
			t.Fatalf("%s: want snapshot options", d.Name())
		}
		if opts.Isolation != sql.LevelRepeatableRead || !opts.ReadOnly {
			t.Errorf("%s: options = %+v", d.Name(), opts)
		}
	}
}

func TestOpenSQLite_LogsErrorsButNotMisses(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	db, err := OpenSQLite("file:gorm_logger_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	ctx := context.Background()
	if _, err := GetUser(ctx, db, "missing"); !IsNotFound(err) {
		t.Fatalf("GetUser: want not found, got %v", err)
	}
	if v, err := GetVote(ctx, db, "u", "a"); v != nil || err != nil {
		t.Fatalf("GetVote on empty table = %+v, %v", v, err)
	}
	if strings.Contains(buf.String(), "record not found") {
		t.Fatalf("miss was logged: %s", buf.String())
	}

	if err := db.Exec("SELECT * FROM no_such_table").Error; err == nil {
		t.Fatal("expected error for unknown table")
	}
	if !strings.Contains(buf.String(), `"component":"gorm"`) || !strings.Contains(buf.String(), "no_such_table") {
		t.Fatalf("driver error not logged through zerolog: %s", buf.String())
	}
}

// Compile-time guard to ensure signature stability.
var _ func(string) (*gorm.DB, error) = OpenSQLite
