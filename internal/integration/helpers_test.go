package integration

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"earnhub/internal/domain"
	"earnhub/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

func applyMigrations(t *testing.T, db *pgxpool.Pool) {
	t.Helper()
	migDir := filepath.Join("..", "..", "internal", "migrations")
	files, err := os.ReadDir(migDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, f := range files {
		b, err := os.ReadFile(filepath.Join(migDir, f.Name()))
		if err != nil {
			t.Fatalf("read file: %v", err)
		}
		if _, err := db.Exec(context.Background(), string(b)); err != nil {
			t.Fatalf("apply migration %s: %v", f.Name(), err)
		}
	}
}

func connectDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(db.Close)

	applyMigrations(t, db)
	return db
}

var tgSeq atomic.Int64

func init() {
	tgSeq.Store(time.Now().UnixNano() % 1_000_000_000)
}

// createUser inserts a fresh user with a unique tg id so tests can run
// against a shared database without colliding.
func createUser(t *testing.T, db *pgxpool.Pool) *domain.User {
	t.Helper()
	u := &domain.User{
		TgID:         tgSeq.Add(1),
		Username:     "itest",
		FirstName:    "Itest",
		ReferralCode: repository.GenerateReferralCode(),
	}
	if err := repository.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createTask(t *testing.T, db *pgxpool.Pool, reward int64) *domain.Task {
	t.Helper()
	task := &domain.Task{
		Title:    "integration task",
		Reward:   reward,
		Category: "test",
		IsActive: true,
	}
	if err := repository.NewTaskRepository(db).Create(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}
