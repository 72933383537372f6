package httpserver

import (
	"net/http"
	"strings"

	"storefront/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookieName   = "cartSessionId"
	sessionCookieMaxAge = 30 * 24 * 60 * 60

	identityKey = "identity"
)

// identityMiddleware resolves who the request belongs to: a Bearer token
// maps to a customer, otherwise the anonymous session cookie identifies the
// browser. A missing cookie is minted on the spot so the very first request
// can already own a cart. The cookie is set on every response that mints
// it: HTTP-only, SameSite=Lax, 30 days.
func identityMiddleware(customers customerAPI, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := domain.Identity{}
		if token := bearerToken(c); token != "" {
			if cust, err := customers.LookupByToken(c.Request.Context(), token); err == nil {
				identity.Customer = cust
			}
		}
		if identity.Customer == nil {
			identity.AnonymousID = ensureSessionCookie(c, secureCookie)
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func ensureSessionCookie(c *gin.Context, secure bool) string {
	sid, err := c.Cookie(sessionCookieName)
	if err == nil && sid != "" {
		return sid
	}
	sid = uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, sid, sessionCookieMaxAge, "/", "", secure, true)
	return sid
}

func identityFrom(c *gin.Context) domain.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}
	}
	identity, _ := v.(domain.Identity)
	return identity
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func requireAuth(c *gin.Context) {
	if !identityFrom(c).Authenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}

func requireAdmin(c *gin.Context) {
	identity := identityFrom(c)
	if identity.Customer == nil || identity.Customer.Role != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return
	}
	c.Next()
}
