package objects

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/linkpile/linkpile/internal/loader"
	"github.com/linkpile/linkpile/internal/models"
)

// fakeBundle backs the loaders with in-memory tables and counts the bulk
// fetches each one issues.
func fakeBundle(users map[int64]*models.User, votes map[models.VoteKey]*models.VoteRecord) (*loader.Bundle, *int, *int) {
	userFetches := 0
	voteFetches := 0
	b := &loader.Bundle{
		Users: loader.New(func(_ context.Context, ids []int64) (map[int64]*models.User, error) {
			userFetches++
			out := make(map[int64]*models.User)
			for _, id := range ids {
				if u, ok := users[id]; ok {
					out[id] = u
				}
			}
			return out, nil
		}),
		Votes: loader.New(func(_ context.Context, keys []models.VoteKey) (map[models.VoteKey]*models.VoteRecord, error) {
			voteFetches++
			out := make(map[models.VoteKey]*models.VoteRecord)
			for _, k := range keys {
				if v, ok := votes[k]; ok {
					out[k] = v
				}
			}
			return out, nil
		}),
	}
	return b, &userFetches, &voteFetches
}

func TestBuildPostViews(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	users := map[int64]*models.User{
		1: {ID: 1, Username: "ada"},
		2: {ID: 2, Username: "ben"},
	}
	votes := map[models.VoteKey]*models.VoteRecord{
		{UserID: 9, PostID: 10}: {UserID: 9, PostID: 10, Value: 1},
		{UserID: 9, PostID: 12}: {UserID: 9, PostID: 12, Value: 0},
	}
	posts := []models.Post{
		{ID: 10, Title: "first", Text: "alpha", AuthorID: 1, Score: 3, CreatedAt: now},
		{ID: 11, Title: "second", Text: "beta", AuthorID: 2, CreatedAt: now},
		{ID: 12, Title: "third", Text: "gamma", AuthorID: 1, CreatedAt: now},
	}

	bundle, userFetches, voteFetches := fakeBundle(users, votes)

	views, err := BuildPostViews(context.Background(), posts, 9, bundle)
	if err != nil {
		t.Fatalf("BuildPostViews failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("got %d views, want 3", len(views))
	}

	// Author id 1 appears twice but must cost one fetch for the whole page.
	if *userFetches != 1 {
		t.Errorf("user fetches = %d, want 1", *userFetches)
	}
	if *voteFetches != 1 {
		t.Errorf("vote fetches = %d, want 1", *voteFetches)
	}

	if views[0].Author == nil || views[0].Author.Username != "ada" {
		t.Errorf("view 0 author = %+v, want ada", views[0].Author)
	}
	if views[0].VoteStatus == nil || *views[0].VoteStatus != 1 {
		t.Errorf("view 0 voteStatus = %v, want 1", views[0].VoteStatus)
	}
	// Never voted: no ledger row, null status.
	if views[1].VoteStatus != nil {
		t.Errorf("view 1 voteStatus = %v, want nil", *views[1].VoteStatus)
	}
	// Retracted vote: row with value 0 is reported as 0, not null.
	if views[2].VoteStatus == nil || *views[2].VoteStatus != 0 {
		t.Errorf("view 2 voteStatus = %v, want 0", views[2].VoteStatus)
	}
}

func TestBuildPostViewsAnonymous(t *testing.T) {
	users := map[int64]*models.User{1: {ID: 1, Username: "ada"}}
	posts := []models.Post{{ID: 10, Title: "first", AuthorID: 1}}

	bundle, _, voteFetches := fakeBundle(users, nil)

	views, err := BuildPostViews(context.Background(), posts, 0, bundle)
	if err != nil {
		t.Fatalf("BuildPostViews failed: %v", err)
	}
	if views[0].VoteStatus != nil {
		t.Error("anonymous requester must get null voteStatus")
	}
	if *voteFetches != 0 {
		t.Errorf("vote fetches = %d, want 0 for anonymous", *voteFetches)
	}
}

func TestSnippetTruncation(t *testing.T) {
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	p := models.Post{Text: string(long)}
	if got := p.Snippet(); len(got) != 50 {
		t.Errorf("snippet length = %d, want 50", len(got))
	}

	short := models.Post{Text: "brief"}
	if got := short.Snippet(); got != "brief" {
		t.Errorf("short snippet = %q, want unchanged", got)
	}

	// Byte 50 falls inside the two-byte é: the cut must back up to the rune
	// boundary instead of emitting invalid UTF-8.
	multi := models.Post{Text: strings.Repeat("x", 49) + "édition"}
	got := multi.Snippet()
	if !utf8.ValidString(got) {
		t.Errorf("snippet %q is not valid UTF-8", got)
	}
	if got != strings.Repeat("x", 49) {
		t.Errorf("snippet = %q, want the 49 leading characters", got)
	}
}
