package feed

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/internal/models"
	"github.com/linkpile/linkpile/pkg/config"
	"github.com/linkpile/linkpile/pkg/logging"
	"github.com/linkpile/linkpile/pkg/telemetry"
)

// PostPager is the data-access contract the paginator reads from. Both
// queries must order by (created_at DESC, id DESC).
type PostPager interface {
	ListLatest(ctx context.Context, limit int) ([]models.Post, error)
	ListBefore(ctx context.Context, before time.Time, beforeID int64, limit int) ([]models.Post, error)
}

// Page is one cursor-stable slice of the feed.
type Page struct {
	Posts      []models.Post
	HasMore    bool
	NextCursor string
}

// Paginator serves reverse-chronological, cursor-paginated pages of posts.
type Paginator struct {
	pager       PostPager
	maxPage     int
	defaultPage int
	logger      *zap.Logger
}

// NewPaginator creates a new feed paginator
func NewPaginator(pager PostPager, cfg *config.FeedConfig) *Paginator {
	return &Paginator{
		pager:       pager,
		maxPage:     cfg.MaxPageSize,
		defaultPage: cfg.DefaultPageSize,
		logger:      logging.WithComponent("feed"),
	}
}

// ListPosts returns one page. The limit is clamped server-side; a zero limit
// selects the default page size and a negative one is rejected. An empty
// cursor starts from the newest post.
func (p *Paginator) ListPosts(ctx context.Context, limit int, cursor string) (*Page, error) {
	ctx, span := telemetry.StartSpan(ctx, "feed.list_posts")
	defer span.End()

	switch {
	case limit < 0:
		return nil, apperr.Newf(apperr.InvalidArgument, "limit must not be negative, got %d", limit)
	case limit == 0:
		limit = p.defaultPage
	case limit > p.maxPage:
		limit = p.maxPage
	}

	// Fetch one row past the page to learn whether more exist without a
	// separate count query.
	probe := limit + 1

	var (
		posts []models.Post
		err   error
	)
	if cursor == "" {
		posts, err = p.pager.ListLatest(ctx, probe)
	} else {
		var c Cursor
		c, err = DecodeCursor(cursor)
		if err != nil {
			return nil, err
		}
		posts, err = p.pager.ListBefore(ctx, c.CreatedAt, c.LastID, probe)
	}
	if err != nil {
		p.logger.Error("feed query failed", zap.Error(err))
		return nil, apperr.Wrap(apperr.StoreUnavailable, "feed query failed", err)
	}

	page := &Page{Posts: posts, HasMore: len(posts) == probe}
	if page.HasMore {
		page.Posts = page.Posts[:limit]
	}
	if n := len(page.Posts); n > 0 {
		last := page.Posts[n-1]
		page.NextCursor = Cursor{CreatedAt: last.CreatedAt, LastID: last.ID}.Encode()
	}
	return page, nil
}
