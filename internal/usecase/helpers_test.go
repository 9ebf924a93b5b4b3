package usecase

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"reviewboard/internal/data/entity"
	"reviewboard/internal/data/repository"
	"reviewboard/internal/dto/request"
	"reviewboard/internal/ownership"
	"reviewboard/pkg/database"
	"reviewboard/pkg/utils"

	"go.uber.org/zap/zaptest"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var testConfig = utils.ReviewConfig{
	DuplicateWindow:  7 * time.Second,
	PageLimitDefault: 20,
	PageLimitMax:     50,
	StoreTimeout:     5 * time.Second,
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(at time.Time) *fakeClock { return &fakeClock{now: at} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingRepo records how many store calls were made.
type countingRepo struct {
	repository.ReviewRepository
	mu    sync.Mutex
	calls int
}

func (r *countingRepo) count() {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
}

func (r *countingRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *countingRepo) Create(ctx context.Context, review *entity.Review) error {
	r.count()
	return r.ReviewRepository.Create(ctx, review)
}

func (r *countingRepo) FindByID(ctx context.Context, id int64) (*entity.Review, error) {
	r.count()
	return r.ReviewRepository.FindByID(ctx, id)
}

func (r *countingRepo) FindOwnershipDigest(ctx context.Context, id int64) ([]byte, error) {
	r.count()
	return r.ReviewRepository.FindOwnershipDigest(ctx, id)
}

func (r *countingRepo) FindRecentDuplicate(ctx context.Context, author, product, content string, from, to time.Time) (*entity.Review, error) {
	r.count()
	return r.ReviewRepository.FindRecentDuplicate(ctx, author, product, content, from, to)
}

func (r *countingRepo) List(ctx context.Context, params repository.ListParams) ([]*entity.Review, int64, error) {
	r.count()
	return r.ReviewRepository.List(ctx, params)
}

func (r *countingRepo) Update(ctx context.Context, id int64, patch entity.ReviewPatch) (*entity.Review, error) {
	r.count()
	return r.ReviewRepository.Update(ctx, id, patch)
}

func (r *countingRepo) Delete(ctx context.Context, id int64) error {
	r.count()
	return r.ReviewRepository.Delete(ctx, id)
}

func (r *countingRepo) GetProductReviewStats(ctx context.Context, product string) (float64, int64, error) {
	r.count()
	return r.ReviewRepository.GetProductReviewStats(ctx, product)
}

func newSQLiteRepo(t *testing.T) repository.ReviewRepository {
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
	return repository.NewSQLiteReviewRepository(db, log)
}

// newTestService returns a service over a fresh SQLite store and the
// counting wrapper around that store.
func newTestService(t *testing.T, clock *fakeClock) (ReviewService, *countingRepo) {
	t.Helper()
	repo := &countingRepo{ReviewRepository: newSQLiteRepo(t)}
	return NewReviewService(repo, testConfig, zaptest.NewLogger(t), WithClock(clock.Now)), repo
}

func ptr[T any](v T) *T { return &v }

func createReq(author, product, content string, rating int) *request.CreateReviewRequest {
	return &request.CreateReviewRequest{
		Author:  author,
		Product: product,
		Rating:  ptr(rating),
		Content: content,
	}
}

// fixedIssuer always mints the same token.
type fixedIssuer struct {
	token string
}

func (f fixedIssuer) Issue() (ownership.Token, error) {
	return ownership.Token{Plain: f.token, Digest: ownership.Digest(f.token)}, nil
}
