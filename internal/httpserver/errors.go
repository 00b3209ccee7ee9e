package httpserver

import (
	"errors"
	"net/http"

	"marketplace-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain sentinels onto HTTP statuses. Unrecognized errors
// become a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSellerUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrCouponNotApplicable),
		errors.Is(err, domain.ErrMissingAssociation),
		errors.Is(err, domain.ErrEmptyReason):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
