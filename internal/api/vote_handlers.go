package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/internal/vote"
)

// VoteAPI exposes the vote engine as a mutation endpoint.
type VoteAPI struct {
	engine *vote.Engine
}

// NewVoteAPI creates a new vote API
func NewVoteAPI(engine *vote.Engine) *VoteAPI {
	return &VoteAPI{engine: engine}
}

type voteInput struct {
	Direction string `json:"direction" binding:"required"`
}

// Vote handles POST /posts/:id/vote
func (a *VoteAPI) Vote(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var input voteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(apperr.InvalidArgument, "direction is required", err))
		return
	}

	direction, err := vote.ParseDirection(input.Direction)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := a.engine.ApplyVote(c.Request.Context(), actorID(c), id, direction); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
