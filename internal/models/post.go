package models

import (
	"time"
	"unicode/utf8"
)

// Post represents a submitted link or text post. Score is denormalized:
// it always equals the sum of the post's vote values and is only ever
// written by the vote engine.
type Post struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title     string    `gorm:"type:varchar(255);not null;column:title" json:"title"`
	Text      string    `gorm:"type:text;not null;column:text" json:"text"`
	Score     int       `gorm:"not null;default:0;column:score" json:"score"`
	AuthorID  int64     `gorm:"not null;index;column:author_id" json:"authorId"`
	CreatedAt time.Time `gorm:"not null;index:post_created_ix,sort:desc;column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;column:updated_at" json:"updatedAt"`

	Author *User `gorm:"foreignKey:AuthorID;references:ID" json:"-"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "post"
}

// Snippet returns the leading fragment of the post body used in feed views.
// The cut lands on a rune boundary so a multi-byte character is never split.
func (p *Post) Snippet() string {
	const max = 50
	if len(p.Text) <= max {
		return p.Text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(p.Text[cut]) {
		cut--
	}
	return p.Text[:cut]
}
