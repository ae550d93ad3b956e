package middlewares

import (
	"net/http"

	"github.com/geocoder89/recipehub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type IdentityMiddleware struct {
	jwt        TokenVerifier
	cookieName string
}

func NewIdentityMiddleware(jwt TokenVerifier, cookieName string) *IdentityMiddleware {
	if cookieName == "" {
		cookieName = "jwt"
	}
	return &IdentityMiddleware{jwt: jwt, cookieName: cookieName}
}

// Identify runs on every request. A missing or invalid cookie is a silent
// downgrade to anonymous, never a rejection; guards decide later whether
// anonymous is acceptable for the route.
func (m *IdentityMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(m.cookieName)

		if err != nil || raw == "" {
			c.Set(string(CtxIdentity), auth.Anonymous())
			c.Next()
			return
		}

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			c.Set(string(CtxIdentity), auth.Anonymous())
			c.Next()
			return
		}

		c.Set(string(CtxIdentity), auth.Authenticated(claims.UserID, claims.Role))
		c.Next()
	}
}

// RequireAuth guards a route. With no roles any authenticated identity
// passes; with roles the identity's role must be one of them.
func (m *IdentityMiddleware) RequireAuth(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := IdentityFromContext(c)

		if ident.IsAnonymous() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Not authorized",
				},
			})
			return
		}

		if len(roles) > 0 && !roleAllowed(ident.Role, roles) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Access denied",
				},
			})
			return
		}

		c.Next()
	}
}

// RedirectAnonymous is the view-route flavor of the guard: browsers get sent
// to the login page instead of a JSON 401.
func (m *IdentityMiddleware) RedirectAnonymous(target string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFromContext(c).IsAnonymous() {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}

		c.Next()
	}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}

	return false
}

// Helpers so handlers don't need to know the magic keys.

func IdentityFromContext(c *gin.Context) auth.Identity {
	v, ok := c.Get(string(CtxIdentity))

	if !ok {
		return auth.Anonymous()
	}

	ident, ok := v.(auth.Identity)

	if !ok {
		return auth.Anonymous()
	}

	return ident
}

func UserIDFromContext(c *gin.Context) (string, bool) {
	ident := IdentityFromContext(c)

	if ident.IsAnonymous() {
		return "", false
	}

	return ident.UserID, true
}
