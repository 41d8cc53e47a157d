package middleware

import (
	"net/http"
	"os"
	"strings"

	"backend/internal/model"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const actorContextKey = "actor"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// RequireActor validates the JWT token and rebuilds the caller's scoped
// identity from its claims. The actor is only placed in the request
// context; every service entry point re-validates it, so a forged or
// inconsistent claim set still fails at the authorization boundary.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		actor := model.Actor{}
		if sub, ok := claims["sub"].(string); ok {
			actor.ID = sub
		}
		if role, ok := claims["role"].(string); ok {
			actor.Role = model.Role(role)
		}
		if global, ok := claims["global"].(bool); ok {
			actor.Global = global
		}
		if loc, ok := claims["loc"].(string); ok {
			actor.LocationID = loc
		}
		if dept, ok := claims["dept"].(string); ok {
			actor.DepartmentID = dept
		}
		if actor.ID == "" || actor.Role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity claims missing from token"))
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// RequireRole narrows RequireActor to an allow-list of roles.
func RequireRole(allowedRoles ...model.Role) gin.HandlerFunc {
	authenticate := RequireActor()
	return func(c *gin.Context) {
		authenticate(c)
		if c.IsAborted() {
			return
		}
		actor := ActorFromContext(c)
		for _, role := range allowedRoles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
	}
}

// ActorFromContext returns the actor RequireActor stored, zero value if
// the middleware never ran.
func ActorFromContext(c *gin.Context) model.Actor {
	value, exists := c.Get(actorContextKey)
	if !exists {
		return model.Actor{}
	}
	actor, ok := value.(model.Actor)
	if !ok {
		return model.Actor{}
	}
	return actor
}
