package handlers

import (
	"net/http"

	"booking-service/data"
	error2 "booking-service/error"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const authContextKey = "authContext"

func ExtractTraceInfoMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AuthContextMiddleware builds the authenticated identity from the headers
// the gateway sets after verifying the token. Core operations only ever see
// the resulting AuthContext, never the transport.
func AuthContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		role := c.GetHeader("X-User-Role")
		if userID != "" {
			c.Set(authContextKey, data.AuthContext{
				UserID: userID,
				Role:   data.UserRole(role),
			})
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 when no identity was established.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(authContextKey); !exists {
			error2.ReturnJSONError(c, "Unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		c.Next()
	}
}

func authFromContext(c *gin.Context) data.AuthContext {
	value, exists := c.Get(authContextKey)
	if !exists {
		return data.AuthContext{}
	}
	auth, _ := value.(data.AuthContext)
	return auth
}
