package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/pullboard/pullboard/internal/errors"
)

// writeError translates a pipeline failure into a transport status code
// and a {"detail": ...} body. Rate-limit responses carry a Retry-After
// header when upstream supplied a hint.
func writeError(c *gin.Context, err error) {
	var invalidErr *apperrors.InvalidRepositoryError
	if errors.As(err, &invalidErr) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": invalidErr.Error()})
		return
	}

	var authErr *apperrors.UnauthorizedError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": authErr.Error()})
		return
	}

	var rateErr *apperrors.RateLimitedError
	if errors.As(err, &rateErr) {
		if rateErr.RetryAfter > 0 {
			seconds := int(math.Ceil(rateErr.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
		}
		c.JSON(http.StatusForbidden, gin.H{"detail": rateErr.Error()})
		return
	}

	var notFoundErr *apperrors.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"detail": notFoundErr.Error()})
		return
	}

	var malformedErr *apperrors.MalformedRecordError
	if errors.As(err, &malformedErr) {
		c.JSON(http.StatusBadGateway, gin.H{"detail": malformedErr.Error()})
		return
	}

	var unavailableErr *apperrors.UpstreamUnavailableError
	if errors.As(err, &unavailableErr) {
		c.JSON(http.StatusBadGateway, gin.H{"detail": unavailableErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}
