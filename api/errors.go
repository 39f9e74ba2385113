package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/gin-gonic/gin"
)

var kindStatus = map[domain.ErrorKind]int{
	domain.KindNotFound:               http.StatusNotFound,
	domain.KindInvalidInput:           http.StatusBadRequest,
	domain.KindConflict:               http.StatusConflict,
	domain.KindPaymentDeclined:        http.StatusPaymentRequired,
	domain.KindAuthorizationDenied:    http.StatusForbidden,
	domain.KindInvalidStateTransition: http.StatusBadRequest,
}

// writeError renders typed failures with their own message. Anything else is
// logged and hidden behind a generic 500.
func writeError(c *gin.Context, err error) {
	status, ok := kindStatus[domain.KindOf(err)]
	if !ok {
		logger.FromContext(c.Request.Context()).WithError(err).
			WithField("path", c.FullPath()).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
