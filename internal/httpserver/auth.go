package httpserver

import (
	"net/http"

	customersvc "storefront/internal/service/customer"
	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Customer     any    `json:"customer"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

func registerHandler(customers customerAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}
		cust, err := customers.Signup(c.Request.Context(), customersvc.SignupInput{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cust)
	}
}

// loginHandler authenticates and, when the browser carried an anonymous
// session cookie, claims that session's cart for the customer.
func loginHandler(customers customerAPI, carts cartAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
			return
		}
		cust, access, refresh, err := customers.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}

		if sid, cerr := c.Cookie(sessionCookieName); cerr == nil && sid != "" {
			// a failed cart claim must not fail the login
			_ = carts.AttachCustomer(c.Request.Context(), sid, cust.ID)
		}

		c.JSON(http.StatusOK, loginResponse{
			Customer:     cust,
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    customers.AccessTTLSeconds(),
		})
	}
}

func logoutHandler(customers customerAPI) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Status(http.StatusNoContent)
			return
		}
		if err := customers.Logout(c.Request.Context(), token); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func meHandler(c *gin.Context) {
	c.JSON(http.StatusOK, identityFrom(c).Customer)
}
