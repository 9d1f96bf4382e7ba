package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-student-portal/internal/models"
	"github.com/noah-isme/sma-student-portal/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditEntry describes one auditable portal action.
type AuditEntry struct {
	Actor      string
	Action     string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	IPAddress  string
	UserAgent  string
}

// AuditService appends portal activity to the audit trail. A nil repository
// disables auditing.
type AuditService struct {
	repo   auditRepository
	logger *zap.Logger
	queue  *jobs.Queue[*models.AuditLog]
}

// NewAuditService constructs an AuditService.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger}
}

// Enabled reports whether entries are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Record stores entry. Failures are logged and never returned to the caller's flow.
func (s *AuditService) Record(ctx context.Context, entry AuditEntry) {
	if !s.Enabled() {
		return
	}

	log := &models.AuditLog{
		Action:    entry.Action,
		Resource:  entry.Resource,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
	}
	if entry.Actor != "" {
		actor := entry.Actor
		log.Actor = &actor
	}
	if entry.ResourceID != "" {
		id := entry.ResourceID
		log.ResourceID = &id
	}
	if len(entry.Details) > 0 {
		body, err := json.Marshal(entry.Details)
		if err != nil {
			s.logger.Warn("failed to encode audit details", zap.String("action", entry.Action), zap.Error(err))
		} else {
			log.NewValues = body
		}
	}

	if s.queue != nil {
		if err := s.queue.Submit(log); err != nil {
			s.logger.Warn("failed to queue audit log", zap.String("action", entry.Action), zap.Error(err))
		}
		return
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("failed to write audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

// StartAsync moves writes off the request path onto a worker queue with
// retries. Call Close to flush.
func (s *AuditService) StartAsync(cfg jobs.Config) {
	if !s.Enabled() || s.queue != nil {
		return
	}
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	s.queue = jobs.New("audit", s.repo.Create, cfg)
}

// Close drains queued entries.
func (s *AuditService) Close(ctx context.Context) error {
	if s == nil || s.queue == nil {
		return nil
	}
	return s.queue.Close(ctx)
}
