package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"catalystwells-core/internal/core/domain"
	"catalystwells-core/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that records rejected write attempts.
// Completed operations are audited by the services themselves, which see
// the balances and scopes this layer cannot; requests that never reach the
// service (validation failures, rate limits) only show up here.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}
		// Failed password attempts and primitive failures are audited by
		// the wallet service with the wallet id attached.
		if status == http.StatusUnauthorized || status >= http.StatusInternalServerError {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if user := SessionUser(c); user != nil {
			id := user.ID
			userID = &id
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/wallet/send" && method == "POST":
		return domain.AuditActionWalletTransferFailed, "wallet_transaction"
	}
	return "", ""
}
