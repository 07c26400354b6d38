package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodai-backend/internal/notification"
)

// PostEmail forwards an email to the delivery API and relays its answer.
// A provider status error is returned with the same status; anything else is 502.
func (h *Handler) PostEmail(c *gin.Context) {
	var req notification.Email
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	raw, err := h.email.Send(c.Request.Context(), req)
	if err != nil {
		status := http.StatusBadGateway
		var emailErr *notification.EmailError
		if errors.As(err, &emailErr) && emailErr.StatusCode >= 400 {
			status = emailErr.StatusCode
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": KindUpstream, "message": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
