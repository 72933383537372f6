package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
	"github.com/gin-gonic/gin"
)

// writeError maps domain errors onto HTTP statuses. Everything unexpected
// collapses to a generic 500 so store internals never leak to clients.
func writeError(c *gin.Context, err error) {
	var gatewayErr *domain.GatewayError
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrEmptyCart), errors.Is(err, domain.ErrCurrencyMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict"})
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
