package middleware

import (
	"context"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/browser"
	"github.com/noah-isme/sma-student-portal/internal/models"
)

// ContextUserKey is the gin context key storing the signed-in user.
const ContextUserKey = "currentUser"

type sessionChecker interface {
	Check(ctx context.Context, b browser.Browser) models.GateResult
}

type loginStarter interface {
	Login(ctx context.Context, b browser.Browser, provider, redirectTo string) error
}

// SessionGate lets protected views render only for a live backend session.
// Unauthenticated browsers go to the sign-in page, or straight to the provider
// when autoRedirect is set. A check whose request has already gone away writes
// nothing.
func SessionGate(gate sessionChecker, auth loginStarter, autoRedirect bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		b := BrowserFrom(c)
		ctx := c.Request.Context()

		result := gate.Check(ctx, b)
		if result.Stale {
			c.Abort()
			return
		}
		if result.State == models.GateAuthenticated {
			c.Set(ContextUserKey, result.User)
			c.Next()
			return
		}

		if autoRedirect {
			err := auth.Login(ctx, b, "", b.Location())
			if err == nil {
				c.Abort()
				return
			}
			logger.Warn("automatic login redirect failed", zap.Error(err))
		}

		b.Navigate("/login?from=" + url.QueryEscape(b.Location()))
		c.Abort()
	}
}

// UserFrom returns the user stored by SessionGate or the login callback.
func UserFrom(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
