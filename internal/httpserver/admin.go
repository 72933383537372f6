package httpserver

import (
	"net/http"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
)

type productRequest struct {
	CategoryID  *string `json:"categoryId"`
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"priceCents"`
	Currency    string  `json:"currency"`
	ImageURL    string  `json:"imageUrl"`
	IsActive    *bool   `json:"isActive"`
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func saveProductHandler(products productAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}
		p := domain.Product{
			ID:          c.Param("id"),
			CategoryID:  req.CategoryID,
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			PriceCents:  req.PriceCents,
			Currency:    req.Currency,
			ImageURL:    req.ImageURL,
			IsActive:    true,
		}
		if req.IsActive != nil {
			p.IsActive = *req.IsActive
		}
		saved, err := products.Save(c.Request.Context(), p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func deleteProductHandler(products productAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := products.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func saveCategoryHandler(categories categoryAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
			return
		}
		saved, err := categories.Save(c.Request.Context(), domain.Category{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

func listCustomersHandler(customers customerAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := customers.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		if list == nil {
			list = []domain.Customer{}
		}
		c.JSON(http.StatusOK, list)
	}
}

func deleteCategoryHandler(categories categoryAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
