package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/linkpile/linkpile/internal/db"
	"github.com/linkpile/linkpile/internal/loader"
	"github.com/linkpile/linkpile/internal/session"
	"github.com/linkpile/linkpile/pkg/config"
)

// Context keys for request-scoped state.
const (
	actorKey   = "actor_id"
	loadersKey = "loaders"
)

// Actor resolves the requesting user from the session provider and stores
// the actor id on the context. Anonymous requests carry actor id 0; whether
// that is acceptable is decided per handler.
func Actor(provider session.Provider, cfg *config.SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				token = cookie
			}
		}

		actorID, err := provider.ActorID(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(actorKey, actorID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if strings.HasPrefix(auth, prefix) {
		return strings.TrimPrefix(auth, prefix)
	}
	return ""
}

// actorID returns the resolved actor for the request, 0 when anonymous.
func actorID(c *gin.Context) int64 {
	if v, ok := c.Get(actorKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// Loaders installs a fresh per-request loader bundle. One bundle per request
// keeps vote-row caches from bleeding between actors.
func Loaders(users *db.UserRepository, votes *db.VoteRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(loadersKey, loader.NewBundle(users, votes))
		c.Next()
	}
}

// loaders returns the request's loader bundle.
func loaders(c *gin.Context) *loader.Bundle {
	if v, ok := c.Get(loadersKey); ok {
		if b, ok := v.(*loader.Bundle); ok {
			return b
		}
	}
	return nil
}
