package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

func listOrdersHandler(orders orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFrom(c)
		list, err := orders.ListByCustomer(c.Request.Context(), identity.Customer.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}

// getOrderHandler returns one order, but only to its owner (or an admin).
func getOrderHandler(orders orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := identityFrom(c)
		o, err := orders.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		owner := o.CustomerID != nil && *o.CustomerID == identity.Customer.ID
		if !owner && identity.Customer.Role != domain.RoleAdmin {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func listAllOrdersHandler(orders orderAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := orders.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Order{}
		}
		c.JSON(http.StatusOK, list)
	}
}
