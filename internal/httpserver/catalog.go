package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

func listProductsHandler(products productAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := products.List(c.Request.Context(), c.Query("category"))
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Product{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func getProductHandler(products productAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := products.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listCategoriesHandler(categories categoryAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := categories.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Category{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func getCategoryHandler(categories categoryAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		cat, err := categories.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}
