package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/gin-gonic/gin"
)

// CorrelationID propagates the Correlation-ID header, minting one when absent,
// and stores a tagged logger in the request context.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, id := logger.WithCorrelationID(c.Request.Context(), c.GetHeader(logger.CorrelationIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(logger.CorrelationIDHeader, id)
		c.Next()
	}
}

// Authenticate resolves the bearer token into the caller identity.
func Authenticate(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		id, err := verifier.Identity(raw)
		if err != nil {
			logger.FromContext(c.Request.Context()).WithError(err).Debug("rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}
		ctx := domain.WithIdentity(c.Request.Context(), id)
		ctx = logger.ToContext(ctx, logger.FromContext(ctx).WithField("user_id", id.UserID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
