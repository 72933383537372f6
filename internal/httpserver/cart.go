package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int64 `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int64 `json:"quantity" binding:"required"`
}

func getCartHandler(carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := carts.Get(c.Request.Context(), identityFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func cartSummaryHandler(carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := carts.Summary(c.Request.Context(), identityFrom(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

func addCartItemHandler(carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "productId required"})
			return
		}
		// only an absent quantity defaults to 1; an explicit zero must
		// surface as ErrInvalidQuantity, not a one-unit purchase
		qty := int64(1)
		if req.Quantity != nil {
			qty = *req.Quantity
		}
		view, err := carts.AddItem(c.Request.Context(), identityFrom(c), req.ProductID, qty)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func updateCartItemHandler(carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity required"})
			return
		}
		view, err := carts.UpdateItemQuantity(c.Request.Context(), identityFrom(c), c.Param("id"), *req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func removeCartItemHandler(carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := carts.RemoveItem(c.Request.Context(), identityFrom(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func clearCartHandler(carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := carts.Clear(c.Request.Context(), identityFrom(c)); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
