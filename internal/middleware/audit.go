package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-student-portal/internal/service"
)

const contextAuditKey = "auditDetails"

// MarkAudited flags the current request as a completed auditable action.
// Requests that end in a redirect to login or an error page are never marked.
func MarkAudited(c *gin.Context, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	c.Set(contextAuditKey, details)
}

// Audit records an audit entry for requests the handler marked as completed.
func Audit(audit *service.AuditService, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !audit.Enabled() {
			c.Next()
			return
		}
		start := time.Now().UTC()
		c.Next()

		value, marked := c.Get(contextAuditKey)
		if !marked {
			return
		}
		details, _ := value.(map[string]interface{})
		details["path"] = c.FullPath()
		details["method"] = c.Request.Method
		details["status"] = c.Writer.Status()
		details["latency"] = time.Since(start).Milliseconds()

		entry := service.AuditEntry{
			Action:     action,
			Resource:   resource,
			ResourceID: c.Param("id"),
			Details:    details,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}
		if user := UserFrom(c); user != nil {
			entry.Actor = user.Email
		}

		audit.Record(context.WithoutCancel(c.Request.Context()), entry)
	}
}
