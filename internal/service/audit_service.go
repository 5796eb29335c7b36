package service

import (
	"context"

	"task_api/internal/domain"
	"task_api/internal/logger"

	"github.com/google/uuid"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 200
)

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error)
}

// RequestInfo identifies the client behind an audited action.
type RequestInfo struct {
	IP        string
	UserAgent string
}

// AuditService handles audit logging. Write failures are logged and never
// reach the caller.
type AuditService struct {
	repo AuditStore
}

func NewAuditService(repo AuditStore) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry
func (s *AuditService) Log(ctx context.Context, userID uuid.UUID, action, category string, details map[string]any) {
	s.LogWithRequest(ctx, userID, action, category, RequestInfo{}, details)
}

// LogWithRequest creates an audit log with request info (IP, User-Agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID uuid.UUID, action, category string, req RequestInfo, details map[string]any) {
	if s == nil || s.repo == nil {
		return
	}
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		logger.FromContext(ctx).Error("failed to create audit log", "error", err, "action", action, "user_id", userID)
	}
}

func (s *AuditService) LogRegister(ctx context.Context, userID uuid.UUID, req RequestInfo) {
	s.LogWithRequest(ctx, userID, domain.AuditActionRegister, domain.AuditCategoryAuth, req, nil)
}

func (s *AuditService) LogLogin(ctx context.Context, userID uuid.UUID, req RequestInfo) {
	s.LogWithRequest(ctx, userID, domain.AuditActionLogin, domain.AuditCategoryAuth, req, nil)
}

// LogLoginFailed records a rejected login without an actor; the attempted
// email is kept in details.
func (s *AuditService) LogLoginFailed(ctx context.Context, email string, req RequestInfo) {
	s.LogWithRequest(ctx, uuid.Nil, domain.AuditActionLoginFailed, domain.AuditCategoryAuth, req, map[string]any{
		"email": email,
	})
}

// LogLogout accepts uuid.Nil for a logout without a valid session.
func (s *AuditService) LogLogout(ctx context.Context, userID uuid.UUID, req RequestInfo) {
	s.LogWithRequest(ctx, userID, domain.AuditActionLogout, domain.AuditCategoryAuth, req, nil)
}

func (s *AuditService) LogProfileUpdate(ctx context.Context, userID uuid.UUID, changed []string, req RequestInfo) {
	s.LogWithRequest(ctx, userID, domain.AuditActionProfileUpdate, domain.AuditCategoryProfile, req, map[string]any{
		"fields": changed,
	})
}

// GetUserAuditLogs returns a user's own entries, newest first. limit is
// clamped to [1, MaxAuditLimit]; zero or negative means DefaultAuditLimit.
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.AuditLog, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}
	return s.repo.GetByUserID(ctx, userID, limit)
}
