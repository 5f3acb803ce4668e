package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkpile/linkpile/internal/db"
	"github.com/linkpile/linkpile/internal/feed"
	"github.com/linkpile/linkpile/internal/session"
	"github.com/linkpile/linkpile/internal/vote"
	"github.com/linkpile/linkpile/pkg/config"
	"github.com/linkpile/linkpile/pkg/logging"
)

// Router sets up API routes
type Router struct {
	db       *db.DB
	sessions session.Provider
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, sessions session.Provider, cfg *config.Config) *Router {
	return &Router{
		db:       database,
		sessions: sessions,
		cfg:      cfg,
		logger:   logging.WithComponent("api-router"),
	}
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	repo := db.NewRepository(r.db.DB)
	userRepo := db.NewUserRepository(repo)
	postRepo := db.NewPostRepository(repo)
	voteRepo := db.NewVoteRepository(repo)

	postAPI := NewPostAPI(postRepo, feed.NewPaginator(postRepo, &r.cfg.Feed))
	voteAPI := NewVoteAPI(vote.NewEngine(r.db.DB))
	userAPI := NewUserAPI(userRepo)

	authed := engine.Group("/",
		Actor(r.sessions, &r.cfg.Session),
		Loaders(userRepo, voteRepo),
	)

	authed.GET("/posts", postAPI.ListPosts)
	authed.GET("/posts/:id", postAPI.GetPost)
	authed.POST("/posts", postAPI.CreatePost)
	authed.PUT("/posts/:id", postAPI.UpdatePost)
	authed.DELETE("/posts/:id", postAPI.DeletePost)
	authed.POST("/posts/:id/vote", voteAPI.Vote)
	authed.POST("/users", userAPI.Register)
	authed.GET("/users/:id", userAPI.GetUser)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "linkpile-api",
	})
}
