package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"reviewboard/internal/data/entity"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newReview(author, product, content string, rating int, at time.Time, bucket int64) *entity.Review {
	return &entity.Review{
		BaseSimple:         entity.BaseSimple{CreatedAt: at},
		Author:             author,
		Product:            product,
		Rating:             rating,
		Content:            content,
		OwnershipTokenHash: []byte("digest:" + author + ":" + content),
		DedupeBucket:       bucket,
	}
}

func mustCreate(t *testing.T, repo ReviewRepository, review *entity.Review) *entity.Review {
	t.Helper()
	if err := repo.Create(context.Background(), review); err != nil {
		t.Fatalf("Create(%s/%s) error: %v", review.Author, review.Content, err)
	}
	return review
}

func ids(reviews []*entity.Review) []int64 {
	out := make([]int64, len(reviews))
	for i, r := range reviews {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// runReviewRepositoryContract exercises behaviour both stores must share.
// newRepo must return a repository over an empty reviews table.
func runReviewRepositoryContract(t *testing.T, newRepo func(t *testing.T) ReviewRepository) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 1))
		if created.ID <= 0 {
			t.Fatalf("ID = %d, want positive", created.ID)
		}

		got, err := repo.FindByID(ctx, created.ID)
		if err != nil {
			t.Fatalf("FindByID() error: %v", err)
		}
		if got == nil {
			t.Fatal("FindByID() = nil, want review")
		}
		if got.Author != "alice" || got.Product != "Widget" || got.Rating != 4 || got.Content != "solid build" {
			t.Errorf("FindByID() = %+v", got)
		}
		if !got.CreatedAt.Equal(t0) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, t0)
		}
		if got.OwnershipTokenHash != nil {
			t.Error("read projection must not include the ownership digest")
		}

		digest, err := repo.FindOwnershipDigest(ctx, created.ID)
		if err != nil {
			t.Fatalf("FindOwnershipDigest() error: %v", err)
		}
		if string(digest) != "digest:alice:solid build" {
			t.Errorf("digest = %q", digest)
		}
	})

	t.Run("missing rows return nil", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.FindByID(ctx, 424242)
		if err != nil || got != nil {
			t.Errorf("FindByID(missing) = %v, %v; want nil, nil", got, err)
		}
		digest, err := repo.FindOwnershipDigest(ctx, 424242)
		if err != nil || digest != nil {
			t.Errorf("FindOwnershipDigest(missing) = %v, %v; want nil, nil", digest, err)
		}
	})

	t.Run("ids are never reused", func(t *testing.T) {
		repo := newRepo(t)
		first := mustCreate(t, repo, newReview("alice", "Widget", "first", 4, t0, 1))
		if err := repo.Delete(ctx, first.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		second := mustCreate(t, repo, newReview("alice", "Widget", "second", 4, t0, 1))
		if second.ID <= first.ID {
			t.Errorf("second ID = %d, want > %d", second.ID, first.ID)
		}
	})

	t.Run("dedupe key conflict", func(t *testing.T) {
		repo := newRepo(t)
		first := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 7))

		err := repo.Create(ctx, newReview("alice", "Widget", "solid build", 1, t0.Add(time.Second), 7))
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("Create(same key, same bucket) error = %v, want ErrConflict", err)
		}

		winner, err := repo.FindByDedupeKey(ctx, "alice", "Widget", "solid build", 7)
		if err != nil {
			t.Fatalf("FindByDedupeKey() error: %v", err)
		}
		if winner == nil || winner.ID != first.ID {
			t.Errorf("FindByDedupeKey() = %v, want review %d", winner, first.ID)
		}

		mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0.Add(time.Minute), 8))
	})

	t.Run("find recent duplicate", func(t *testing.T) {
		repo := newRepo(t)
		older := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 1))
		newer := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0.Add(3*time.Second), 2))

		tests := []struct {
			name     string
			product  string
			from, to time.Time
			wantID   int64
		}{
			{"window holds both, newest wins", "Widget", t0.Add(-7 * time.Second), t0.Add(3 * time.Second), newer.ID},
			{"inclusive lower bound", "Widget", t0, t0.Add(time.Second), older.ID},
			{"window after both", "Widget", t0.Add(3*time.Second + time.Microsecond), t0.Add(10 * time.Second), 0},
			{"other product", "Gadget", t0.Add(-time.Minute), t0.Add(time.Minute), 0},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.FindRecentDuplicate(ctx, "alice", tt.product, "solid build", tt.from, tt.to)
				if err != nil {
					t.Fatalf("FindRecentDuplicate() error: %v", err)
				}
				var gotID int64
				if got != nil {
					gotID = got.ID
				}
				if gotID != tt.wantID {
					t.Errorf("FindRecentDuplicate() ID = %d, want %d", gotID, tt.wantID)
				}
			})
		}
	})

	t.Run("list sorts and filters", func(t *testing.T) {
		repo := newRepo(t)
		r1 := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 1))
		r2 := mustCreate(t, repo, newReview("bob", "Gadget", "too loud", 2, t0.Add(time.Minute), 2))
		r3 := mustCreate(t, repo, newReview("carol", "widget pro", "50% off was worth it", 5, t0.Add(2*time.Minute), 3))
		r4 := mustCreate(t, repo, newReview("dave", "Gizmo", "meh", 2, t0.Add(3*time.Minute), 4))

		tests := []struct {
			name      string
			params    ListParams
			want      []int64
			wantTotal int64
		}{
			{"newest by default", ListParams{Limit: 10}, []int64{r4.ID, r3.ID, r2.ID, r1.ID}, 4},
			{"oldest", ListParams{Sort: SortOldest, Limit: 10}, []int64{r1.ID, r2.ID, r3.ID, r4.ID}, 4},
			{"rating desc ties newest first", ListParams{Sort: SortRatingDesc, Limit: 10}, []int64{r3.ID, r1.ID, r4.ID, r2.ID}, 4},
			{"rating asc ties newest first", ListParams{Sort: SortRatingAsc, Limit: 10}, []int64{r4.ID, r2.ID, r1.ID, r3.ID}, 4},
			{"case-insensitive query", ListParams{Query: "WIDGET", Limit: 10}, []int64{r3.ID, r1.ID}, 2},
			{"query matches author", ListParams{Query: "bob", Limit: 10}, []int64{r2.ID}, 1},
			{"percent is literal", ListParams{Query: "50%", Limit: 10}, []int64{r3.ID}, 1},
			{"underscore is literal", ListParams{Query: "_", Limit: 10}, []int64{}, 0},
			{"first page", ListParams{Limit: 3}, []int64{r4.ID, r3.ID, r2.ID}, 4},
			{"last page", ListParams{Limit: 3, Offset: 3}, []int64{r1.ID}, 4},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, total, err := repo.List(ctx, tt.params)
				if err != nil {
					t.Fatalf("List() error: %v", err)
				}
				if !equalIDs(ids(got), tt.want) {
					t.Errorf("List() ids = %v, want %v", ids(got), tt.want)
				}
				if total != tt.wantTotal {
					t.Errorf("total = %d, want %d", total, tt.wantTotal)
				}
				for _, r := range got {
					if r.OwnershipTokenHash != nil {
						t.Fatalf("review %d exposes its ownership digest", r.ID)
					}
				}
			})
		}
	})

	t.Run("partial update", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 1))

		rating := 2
		updated, err := repo.Update(ctx, created.ID, entity.ReviewPatch{Rating: &rating})
		if err != nil {
			t.Fatalf("Update() error: %v", err)
		}
		if updated.Rating != 2 {
			t.Errorf("Rating = %d, want 2", updated.Rating)
		}
		if updated.Author != "alice" || updated.Product != "Widget" || updated.Content != "solid build" {
			t.Errorf("untouched fields changed: %+v", updated)
		}
		if !updated.CreatedAt.Equal(t0) {
			t.Errorf("CreatedAt = %v, want unchanged %v", updated.CreatedAt, t0)
		}

		digest, err := repo.FindOwnershipDigest(ctx, created.ID)
		if err != nil || string(digest) != "digest:alice:solid build" {
			t.Errorf("digest after update = %q, %v", digest, err)
		}
	})

	t.Run("update missing review", func(t *testing.T) {
		repo := newRepo(t)
		content := "anything"
		_, err := repo.Update(ctx, 424242, entity.ReviewPatch{Content: &content})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("update colliding with dedupe key", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, newReview("alice", "Widget", "first take", 4, t0, 1))
		second := mustCreate(t, repo, newReview("alice", "Widget", "second take", 3, t0.Add(time.Second), 1))

		content := "first take"
		_, err := repo.Update(ctx, second.ID, entity.ReviewPatch{Content: &content})
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Update(colliding) error = %v, want ErrConflict", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		created := mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 1))

		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if got, _ := repo.FindByID(ctx, created.ID); got != nil {
			t.Error("review still readable after delete")
		}
		if err := repo.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("product stats", func(t *testing.T) {
		repo := newRepo(t)
		mustCreate(t, repo, newReview("alice", "Widget", "solid build", 4, t0, 1))
		mustCreate(t, repo, newReview("bob", "Widget", "wobbly", 2, t0, 1))
		mustCreate(t, repo, newReview("carol", "Gadget", "fine", 5, t0, 1))

		avg, count, err := repo.GetProductReviewStats(ctx, "Widget")
		if err != nil {
			t.Fatalf("GetProductReviewStats() error: %v", err)
		}
		if avg != 3 || count != 2 {
			t.Errorf("stats = %v, %d; want 3, 2", avg, count)
		}

		avg, count, err = repo.GetProductReviewStats(ctx, "Nothing")
		if err != nil {
			t.Fatalf("GetProductReviewStats(empty) error: %v", err)
		}
		if avg != 0 || count != 0 {
			t.Errorf("empty stats = %v, %d; want 0, 0", avg, count)
		}
	})
}
