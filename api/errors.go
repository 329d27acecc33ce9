package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/brickworks/services/production/domain"
)

// respondError maps the domain error taxonomy onto HTTP statuses: bad input
// and missing attribution are 400, unknown aggregates 404, state and
// availability conflicts 409, anything else 500.
func respondError(c *gin.Context, err error) {
	var (
		validation   *domain.ValidationError
		attribution  *domain.AttributionMissing
		notFound     *domain.NotFoundError
		illegalState *domain.IllegalStateTransition
		insufficient *domain.InsufficientAvailability
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &attribution):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &illegalState), errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
