package objects

import (
	"context"
	"time"

	"github.com/linkpile/linkpile/internal/loader"
	"github.com/linkpile/linkpile/internal/models"
)

// UserView is the public shape of a user.
type UserView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostView is a post annotated with its author and the requesting user's
// own vote value. VoteStatus is null for anonymous requesters and for posts
// the requester never voted on; a retracted vote shows as 0.
type PostView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	TextSnippet string    `json:"textSnippet"`
	Score       int       `json:"score"`
	CreatedAt   time.Time `json:"createdAt"`
	Author      *UserView `json:"author"`
	VoteStatus  *int      `json:"voteStatus"`
}

// NewUserView builds the public view of a user.
func NewUserView(u *models.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}
}

// BuildPostViews annotates posts with author and vote status through the
// request's loader bundle. All keys are enqueued before the first resolution
// so the whole page costs one user fetch and one vote fetch.
func BuildPostViews(ctx context.Context, posts []models.Post, actorID int64, b *loader.Bundle) ([]PostView, error) {
	userThunks := make([]*loader.Thunk[int64, *models.User], len(posts))
	voteThunks := make([]*loader.Thunk[models.VoteKey, *models.VoteRecord], len(posts))
	for i, p := range posts {
		userThunks[i] = b.Users.Load(p.AuthorID)
		if actorID != 0 {
			voteThunks[i] = b.Votes.Load(models.VoteKey{UserID: actorID, PostID: p.ID})
		}
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		author, err := userThunks[i].Value(ctx)
		if err != nil {
			return nil, err
		}

		var voteStatus *int
		if voteThunks[i] != nil {
			record, err := voteThunks[i].Value(ctx)
			if err != nil {
				return nil, err
			}
			if record != nil {
				v := record.Value
				voteStatus = &v
			}
		}

		views[i] = PostView{
			ID:          p.ID,
			Title:       p.Title,
			Text:        p.Text,
			TextSnippet: p.Snippet(),
			Score:       p.Score,
			CreatedAt:   p.CreatedAt,
			Author:      NewUserView(author),
			VoteStatus:  voteStatus,
		}
	}
	return views, nil
}

// BuildPostView annotates a single post.
func BuildPostView(ctx context.Context, post *models.Post, actorID int64, b *loader.Bundle) (*PostView, error) {
	views, err := BuildPostViews(ctx, []models.Post{*post}, actorID, b)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
