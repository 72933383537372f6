package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	"github.com/gin-gonic/gin"
)

// checkoutItem matches the client-side cart mirror line: id is the product
// id, price and name are display values the server ignores when pricing.
type checkoutItem struct {
	ID       string `json:"id" binding:"required"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity" binding:"required"`
	Image    string `json:"image"`
}

type checkoutCustomer struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

type checkoutRequest struct {
	Items    []checkoutItem   `json:"items"`
	Customer checkoutCustomer `json:"customer" binding:"required"`
}

type completeRequest struct {
	SessionID string           `json:"session_id" binding:"required"`
	Customer  checkoutCustomer `json:"customer"`
}

func startCheckoutHandler(checkout checkoutAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout payload"})
			return
		}

		start := checkoutsvc.StartRequest{Customer: req.Customer.details()}
		for _, it := range req.Items {
			start.Items = append(start.Items, cartsvc.MergeItem{ProductID: it.ID, Quantity: it.Quantity})
		}

		session, err := checkout.Start(c.Request.Context(), identityFrom(c), start)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, session)
	}
}

func completeCheckoutHandler(checkout checkoutAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req completeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
			return
		}
		order, err := checkout.Complete(c.Request.Context(), identityFrom(c), req.SessionID, req.Customer.details())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func (r checkoutCustomer) details() domain.CustomerDetails {
	return domain.CustomerDetails{
		Name:       r.Name,
		Email:      r.Email,
		Address:    r.Address,
		City:       r.City,
		PostalCode: r.PostalCode,
		Phone:      r.Phone,
	}
}
