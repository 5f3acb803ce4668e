package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linkpile/linkpile/internal/api/objects"
	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/internal/db"
	"github.com/linkpile/linkpile/internal/feed"
	"github.com/linkpile/linkpile/internal/models"
)

// PostAPI serves the feed and post CRUD endpoints.
type PostAPI struct {
	posts     *db.PostRepository
	paginator *feed.Paginator
}

// NewPostAPI creates a new post API
func NewPostAPI(posts *db.PostRepository, paginator *feed.Paginator) *PostAPI {
	return &PostAPI{posts: posts, paginator: paginator}
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidArgument, "post id must be an integer", err)
	}
	return id, nil
}

// ListPosts handles GET /posts
func (a *PostAPI) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperr.Wrap(apperr.InvalidArgument, "limit must be an integer", err))
			return
		}
		limit = parsed
	}

	page, err := a.paginator.ListPosts(ctx, limit, c.Query("cursor"))
	if err != nil {
		respondError(c, err)
		return
	}

	views, err := objects.BuildPostViews(ctx, page.Posts, actorID(c), loaders(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":      views,
		"hasMore":    page.HasMore,
		"nextCursor": page.NextCursor,
	})
}

// GetPost handles GET /posts/:id
func (a *PostAPI) GetPost(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	post, err := a.posts.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if post == nil {
		respondError(c, apperr.Newf(apperr.NotFound, "post %d not found", id))
		return
	}

	view, err := objects.BuildPostView(ctx, post, actorID(c), loaders(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type postInput struct {
	Title string `json:"title" binding:"required,max=255"`
	Text  string `json:"text" binding:"required"`
}

// CreatePost handles POST /posts
func (a *PostAPI) CreatePost(c *gin.Context) {
	actor := actorID(c)
	if actor == 0 {
		respondError(c, apperr.New(apperr.Unauthenticated, "not logged in"))
		return
	}

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(apperr.InvalidArgument, "title and text are required", err))
		return
	}

	post := &models.Post{
		Title:    input.Title,
		Text:     input.Text,
		AuthorID: actor,
	}
	if err := a.posts.Create(c.Request.Context(), post); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// UpdatePost handles PUT /posts/:id
func (a *PostAPI) UpdatePost(c *gin.Context) {
	actor := actorID(c)
	if actor == 0 {
		respondError(c, apperr.New(apperr.Unauthenticated, "not logged in"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input postInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(apperr.InvalidArgument, "title and text are required", err))
		return
	}

	post, err := a.posts.UpdateOwned(c.Request.Context(), id, actor, input.Title, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost handles DELETE /posts/:id
func (a *PostAPI) DeletePost(c *gin.Context) {
	actor := actorID(c)
	if actor == 0 {
		respondError(c, apperr.New(apperr.Unauthenticated, "not logged in"))
		return
	}

	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.posts.DeleteOwned(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
