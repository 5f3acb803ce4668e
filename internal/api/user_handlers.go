package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/linkpile/linkpile/internal/api/objects"
	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/internal/db"
	"github.com/linkpile/linkpile/internal/models"
)

// UserAPI serves registration and public profiles. Credential verification
// and session issuance belong to the auth collaborator, not here: the
// credential hash is stored opaquely.
type UserAPI struct {
	users *db.UserRepository
}

// NewUserAPI creates a new user API
func NewUserAPI(users *db.UserRepository) *UserAPI {
	return &UserAPI{users: users}
}

type registerInput struct {
	Username       string `json:"username" binding:"required,min=3,max=32"`
	Email          string `json:"email" binding:"required,email"`
	CredentialHash string `json:"credentialHash" binding:"required"`
}

// Register handles POST /users
func (a *UserAPI) Register(c *gin.Context) {
	var input registerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, apperr.Wrap(apperr.InvalidArgument, "username, email and credentialHash are required", err))
		return
	}

	user := &models.User{
		Username:       input.Username,
		Email:          input.Email,
		CredentialHash: input.CredentialHash,
	}
	if err := a.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, objects.NewUserView(user))
}

// GetUser handles GET /users/:id
func (a *UserAPI) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, apperr.Wrap(apperr.InvalidArgument, "user id must be an integer", err))
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, apperr.Newf(apperr.NotFound, "user %d not found", id))
		return
	}
	c.JSON(http.StatusOK, objects.NewUserView(user))
}
