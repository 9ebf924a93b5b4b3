package entity

type Review struct {
	BaseSimple
	Author  string `db:"author"`
	Product string `db:"product"`
	Rating  int    `db:"rating"` // 1-5
	Content string `db:"content"`

	// Write-only: set on insert, never selected by read queries.
	OwnershipTokenHash []byte `db:"ownership_token_hash"`
	DedupeBucket       int64  `db:"dedupe_bucket"`
}

// ReviewPatch carries a partial update; nil fields stay unchanged.
type ReviewPatch struct {
	Author  *string
	Product *string
	Rating  *int
	Content *string
}

func (p ReviewPatch) IsEmpty() bool {
	return p.Author == nil && p.Product == nil && p.Rating == nil && p.Content == nil
}
