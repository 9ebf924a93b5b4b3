package repository

import (
	"path/filepath"
	"testing"

	"reviewboard/pkg/database"

	"go.uber.org/zap/zaptest"
)

func newSQLiteTestRepo(t *testing.T) ReviewRepository {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zaptest.NewLogger(t)
	if err := database.MigrateSQLite(db, log); err != nil {
		t.Fatalf("MigrateSQLite() error: %v", err)
	}

	return NewSQLiteReviewRepository(db, log)
}

func TestSQLiteReviewRepository(t *testing.T) {
	runReviewRepositoryContract(t, newSQLiteTestRepo)
}
