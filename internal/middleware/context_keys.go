package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	tenantIDKey = contextKey("tenantID")
	actorIDKey  = contextKey("actorID")

	// Tenant resolution and authentication happen upstream; the resolved
	// identities arrive on these headers.
	TenantIDHeader = "X-Tenant-ID"
	ActorIDHeader  = "X-Actor-ID"
)

// TenantContextMiddleware lifts the resolved tenant and actor identities off
// the request headers into the request context, rejecting requests that
// arrive without them.
func TenantContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetHeader(TenantIDHeader)
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "TENANT_MISSING", "error": "missing " + TenantIDHeader + " header"})
			return
		}
		actorID := c.GetHeader(ActorIDHeader)
		if actorID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "ACTOR_MISSING", "error": "missing " + ActorIDHeader + " header"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), tenantIDKey, tenantID)
		ctx = context.WithValue(ctx, actorIDKey, actorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTenantIDFromContext retrieves the tenant ID placed by the middleware.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	tenantID, ok := c.Request.Context().Value(tenantIDKey).(string)
	return tenantID, ok && tenantID != ""
}

// GetActorIDFromContext retrieves the actor ID placed by the middleware.
func GetActorIDFromContext(c *gin.Context) (string, bool) {
	actorID, ok := c.Request.Context().Value(actorIDKey).(string)
	return actorID, ok && actorID != ""
}
