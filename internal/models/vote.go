package models

// Vote directions accepted by the vote engine.
const (
	VoteUp   = 1
	VoteDown = -1
	// VoteRetracted marks a row whose vote was taken back. The row is kept
	// so "never voted" (no row) and "retracted" (value 0) stay distinguishable.
	VoteRetracted = 0
)

// VoteRecord is the durable per-(user, post) vote ledger row. At most one
// row exists per pair; Post.Score is derived from the sum of Value.
type VoteRecord struct {
	UserID int64 `gorm:"primaryKey;column:user_id" json:"userId"`
	PostID int64 `gorm:"primaryKey;column:post_id" json:"postId"`
	Value  int   `gorm:"not null;column:value" json:"value"`
}

// TableName specifies the table name for VoteRecord
func (VoteRecord) TableName() string {
	return "updoot"
}

// VoteKey identifies a VoteRecord by its composite key.
type VoteKey struct {
	UserID int64
	PostID int64
}
