package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/browser"
	"github.com/noah-isme/sma-student-portal/internal/models"
)

type userResolver interface {
	CurrentUser(ctx context.Context, b browser.Browser) (*models.User, error)
}

// SessionGate decides whether a protected view may render.
type SessionGate struct {
	auth    userResolver
	metrics *MetricsService
	logger  *zap.Logger
}

// NewSessionGate constructs a SessionGate.
func NewSessionGate(auth userResolver, metrics *MetricsService, logger *zap.Logger) *SessionGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionGate{auth: auth, metrics: metrics, logger: logger}
}

// Check resolves the session state once. Any failure fails closed. When ctx
// ends before the backend answers the result stays checking and is marked
// stale so the caller discards it.
func (g *SessionGate) Check(ctx context.Context, b browser.Browser) models.GateResult {
	result := models.GateResult{State: models.GateChecking}

	user, err := g.auth.CurrentUser(ctx, b)
	if ctx.Err() != nil {
		result.Stale = true
		return result
	}

	switch {
	case err != nil:
		g.logger.Warn("session check failed", zap.Error(err))
		result.State = models.GateUnauthenticated
	case user == nil:
		result.State = models.GateUnauthenticated
	default:
		result.State = models.GateAuthenticated
		result.User = user
	}

	g.metrics.RecordGateOutcome(result.State)
	return result
}
