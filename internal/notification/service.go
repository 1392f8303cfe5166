package notification

import (
	"log/slog"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

// Repository defines the data access methods for notifications
type Repository interface {
	CreateBatch(rows []*Notification) error
	ListByUser(userID string, unreadOnly bool, limit, offset int) ([]*Notification, int64, error)
	CountUnread(userID string) (int64, error)
	MarkRead(id, userID string) error
	MarkAllRead(userID string) (int64, error)
	Delete(id, userID string) error
}

// Service is the inbox API. Every operation is scoped to the calling user;
// there is no cross-user access, not even for super admins.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListNotifications(actor *auth.User, unreadOnly bool, limit, offset int) ([]*Notification, int64, error) {
	if actor == nil {
		return nil, 0, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(actor.ID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(actor *auth.User) (int64, error) {
	if actor == nil {
		return 0, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	return s.repo.CountUnread(actor.ID)
}

func (s *Service) MarkRead(actor *auth.User, id string) error {
	if actor == nil {
		return internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	return s.repo.MarkRead(id, actor.ID)
}

func (s *Service) MarkAllRead(actor *auth.User) (int64, error) {
	if actor == nil {
		return 0, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	marked, err := s.repo.MarkAllRead(actor.ID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("notifications marked read", "user_id", actor.ID, "count", marked)
	return marked, nil
}

func (s *Service) DeleteNotification(actor *auth.User, id string) error {
	if actor == nil {
		return internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	return s.repo.Delete(id, actor.ID)
}
