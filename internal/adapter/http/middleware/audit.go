package middleware

import (
	"encoding/json"
	"time"

	"remitchat/internal/core/domain"
	"remitchat/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write
// operations. Route templates are matched via FullPath so path
// parameters do not fragment the mapping.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserID(c); ok {
			userID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   auditResourceID(c),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

// mapRouteToAction maps route templates to audit actions. Pay is
// absent on purpose: the payment saga writes its own entry with
// settlement details.
func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/v1/keys" && method == "PUT":
		return domain.AuditActionPublishKey, "public_key"
	case route == "/api/v1/threads" && method == "POST":
		return domain.AuditActionOpenThread, "thread"
	case route == "/api/v1/threads/:threadID/messages" && method == "POST":
		return domain.AuditActionSendMessage, "message"
	case route == "/api/v1/threads/:threadID/requests/:requestID/cancel" && method == "POST":
		return domain.AuditActionCancelRequest, "payment_request"
	case route == "/api/v1/verification/codes" && method == "POST":
		return domain.AuditActionIssueCode, "verification_code"
	case route == "/api/v1/threads/:threadID/report" && method == "POST":
		return domain.AuditActionReportThread, "thread_report"
	}
	return "", ""
}

// auditResourceID picks the most specific path parameter available.
func auditResourceID(c *gin.Context) string {
	if id := c.Param("requestID"); id != "" {
		return id
	}
	return c.Param("threadID")
}
