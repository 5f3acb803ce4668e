package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/linkpile/linkpile/internal/apperr"
	"github.com/linkpile/linkpile/pkg/logging"
)

// httpStatus maps an error kind to its HTTP status code.
func httpStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Unauthorized:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.InvalidArgument:
		return http.StatusBadRequest
	case apperr.Conflict:
		return http.StatusConflict
	case apperr.StoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a typed error response. Every failure names the
// violated invariant through its kind; callers never see an opaque 500 for a
// classified failure.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := httpStatus(kind)

	if status >= http.StatusInternalServerError {
		logging.WithComponent("api").Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	message := "internal error"
	var ae *apperr.Error
	if errors.As(err, &ae) {
		message = ae.Message
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"kind":    kind.String(),
			"message": message,
		},
	})
}
