package analytics

import (
	"log/slog"

	"github.com/biocode-hms/equipment-management/internal/auth"
)

// Repository defines the aggregate queries behind the analytics endpoints
type Repository interface {
	TopDowntime(limit int) ([]*DowntimeEntry, error)
	Availability() (*AvailabilityReport, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) EquipmentDowntime(actor *auth.User, limit int) ([]*DowntimeEntry, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewAnalytics); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.TopDowntime(limit)
}

func (s *Service) EquipmentAvailability(actor *auth.User) (*AvailabilityReport, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewAnalytics); err != nil {
		return nil, err
	}
	return s.repo.Availability()
}
