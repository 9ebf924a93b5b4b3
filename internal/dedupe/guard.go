// Package dedupe absorbs accidental resubmissions of the same review.
//
// Two submissions are "the same" when author, product and content match
// exactly; rating is not part of the key. The guard is a best-effort
// pre-check over a trailing window W. The unique index on
// (author, product, content, Bucket(created_at)) is the hard backstop for
// requests that race past it.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"reviewboard/internal/data/entity"
)

// DefaultWindow absorbs double clicks and client retries while still
// allowing a deliberate re-review shortly after.
const DefaultWindow = 7 * time.Second

// Candidate is a submission that has passed validation.
type Candidate struct {
	Author  string
	Product string
	Content string
	Rating  int
}

// Verdict is the outcome of ShouldAdmit. ExistingID is set when the
// candidate is absorbed.
type Verdict struct {
	Admit      bool
	ExistingID int64
}

// Finder looks up the newest review with the given key created in [from, to].
type Finder interface {
	FindRecentDuplicate(ctx context.Context, author, product, content string, from, to time.Time) (*entity.Review, error)
}

type Guard struct {
	finder Finder
	window time.Duration
	now    func() time.Time
}

// NewGuard builds a guard over window. Non-positive windows fall back to
// DefaultWindow. now may be nil to use the wall clock.
func NewGuard(finder Finder, window time.Duration, now func() time.Time) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Guard{finder: finder, window: window, now: now}
}

func (g *Guard) Window() time.Duration { return g.window }

// Now returns the guard's current time, truncated to the microsecond
// precision both stores keep.
func (g *Guard) Now() time.Time {
	return g.now().UTC().Truncate(time.Microsecond)
}

// Bucket maps a creation time onto the window-sized slot used by the
// unique index. Submissions more than W apart never share a bucket.
func (g *Guard) Bucket(t time.Time) int64 {
	return t.UnixNano() / int64(g.window)
}

// ShouldAdmit checks for an equivalent review created within the window
// ending at at.
func (g *Guard) ShouldAdmit(ctx context.Context, c Candidate, at time.Time) (Verdict, error) {
	existing, err := g.finder.FindRecentDuplicate(ctx, c.Author, c.Product, c.Content, at.Add(-g.window), at)
	if err != nil {
		return Verdict{}, fmt.Errorf("check duplicate submission: %w", err)
	}
	if existing != nil {
		return Verdict{ExistingID: existing.ID}, nil
	}
	return Verdict{Admit: true}, nil
}
