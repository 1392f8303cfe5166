package maintenance

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/equipment"
)

// Repository defines the data access methods for maintenance schedules
type Repository interface {
	Create(s *Schedule) error
	GetByID(id string) (*Schedule, error)
	List(filter ListFilter) ([]*Schedule, int64, error)
	Save(s *Schedule) error
	Delete(id string) error
	ListDue(asOf time.Time, windowDays int) ([]*Schedule, error)
	Stats(asOf time.Time, windowDays int) (*Stats, error)
}

// EquipmentStore is the slice of the equipment repository schedules need.
type EquipmentStore interface {
	GetByID(id string) (*equipment.Equipment, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       Repository
	equipment  EquipmentStore
	events     EventPublisher
	logger     *slog.Logger
	dueWindow  int
	now        func() time.Time
}

func NewService(repo Repository, equipmentStore EquipmentStore, publisher EventPublisher, dueWindowDays int, logger *slog.Logger) *Service {
	if dueWindowDays <= 0 {
		dueWindowDays = 7
	}
	return &Service{
		repo:      repo,
		equipment: equipmentStore,
		events:    publisher,
		logger:    logger,
		dueWindow: dueWindowDays,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListSchedules(actor *auth.User, filter ListFilter) ([]*Schedule, int64, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewEquipment); err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.List(filter)
}

func (s *Service) GetSchedule(actor *auth.User, id string) (*Schedule, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewEquipment); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) CreateSchedule(actor *auth.User, dto CreateScheduleDTO) (*Schedule, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageMaintenance); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.equipment.GetByID(dto.EquipmentID); err != nil {
		return nil, err
	}

	next := s.now().AddDate(0, 0, dto.FrequencyDays)
	if dto.NextMaintenanceDate != nil {
		next = *dto.NextMaintenanceDate
	}

	schedule := &Schedule{
		EquipmentID:         dto.EquipmentID,
		MaintenanceType:     MaintenanceType(dto.MaintenanceType),
		FrequencyDays:       dto.FrequencyDays,
		NextMaintenanceDate: next,
		AssignedToUserID:    dto.AssignedToUserID,
		Notes:               dto.Notes,
		IsActive:            true,
	}

	if err := s.repo.Create(schedule); err != nil {
		s.logger.Error("failed to create maintenance schedule", "error", err, "equipment_id", dto.EquipmentID)
		return nil, err
	}

	s.logger.Info("maintenance schedule created",
		"schedule_id", schedule.ID,
		"equipment_id", schedule.EquipmentID,
		"actor_id", actor.ID)
	return schedule, nil
}

func (s *Service) UpdateSchedule(actor *auth.User, id string, dto UpdateScheduleDTO) (*Schedule, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageMaintenance); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	schedule, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.MaintenanceType != nil {
		schedule.MaintenanceType = MaintenanceType(*dto.MaintenanceType)
	}
	if dto.FrequencyDays != nil {
		schedule.FrequencyDays = *dto.FrequencyDays
	}
	if dto.AssignedToUserID != nil {
		schedule.AssignedToUserID = dto.AssignedToUserID
	}
	if dto.Notes != nil {
		schedule.Notes = dto.Notes
	}
	if dto.IsActive != nil {
		schedule.IsActive = *dto.IsActive
	}

	if err := s.repo.Save(schedule); err != nil {
		s.logger.Error("failed to update maintenance schedule", "error", err, "schedule_id", id)
		return nil, err
	}

	s.logger.Info("maintenance schedule updated", "schedule_id", id, "actor_id", actor.ID)
	return schedule, nil
}

// CompleteSchedule records a completed round: the cycle always restarts from
// the completion moment, so an overdue schedule is never asked to catch up.
func (s *Service) CompleteSchedule(ctx context.Context, actor *auth.User, id string) (*Schedule, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageMaintenance); err != nil {
		return nil, err
	}

	schedule, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	schedule.LastMaintenanceDate = &now
	schedule.NextMaintenanceDate = now.AddDate(0, 0, schedule.FrequencyDays)

	if err := s.repo.Save(schedule); err != nil {
		s.logger.Error("failed to complete maintenance schedule", "error", err, "schedule_id", id)
		return nil, err
	}

	deviceName := ""
	if e, err := s.equipment.GetByID(schedule.EquipmentID); err == nil {
		deviceName = e.DeviceName
	}
	event := events.NewMaintenanceCompleted(schedule.ID, string(schedule.MaintenanceType), deviceName, actor.ID)
	if err := s.events.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish maintenance completed event", "error", err, "schedule_id", id)
	}

	s.logger.Info("maintenance completed",
		"schedule_id", schedule.ID,
		"next_maintenance_date", schedule.NextMaintenanceDate,
		"actor_id", actor.ID)
	return schedule, nil
}

func (s *Service) DeleteSchedule(actor *auth.User, id string) error {
	if err := auth.RequireCapability(actor, auth.CapabilityManageMaintenance); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete maintenance schedule", "error", err, "schedule_id", id)
		return err
	}

	s.logger.Info("maintenance schedule deleted", "schedule_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) GetStats(actor *auth.User) (*Stats, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewEquipment); err != nil {
		return nil, err
	}
	return s.repo.Stats(s.now(), s.dueWindow)
}

// ScanDue walks active schedules inside the due window (plus everything
// overdue) and publishes a due or overdue event per schedule. The worker
// command calls this on an interval; there is no other background work.
func (s *Service) ScanDue(ctx context.Context) (int, error) {
	now := s.now()
	schedules, err := s.repo.ListDue(now, s.dueWindow)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, schedule := range schedules {
		days := daysUntil(now, schedule.NextMaintenanceDate)
		if days > s.dueWindow {
			continue
		}

		deviceName := ""
		if e, err := s.equipment.GetByID(schedule.EquipmentID); err == nil {
			deviceName = e.DeviceName
		}
		assignee := ""
		if schedule.AssignedToUserID != nil {
			assignee = *schedule.AssignedToUserID
		}

		event := events.NewMaintenanceDue(schedule.ID, string(schedule.MaintenanceType), deviceName, assignee, days)
		if err := s.events.PublishSync(ctx, event); err != nil {
			s.logger.Error("failed to publish maintenance due event", "error", err, "schedule_id", schedule.ID)
			continue
		}
		published++
	}

	s.logger.Info("maintenance due scan finished", "scanned", len(schedules), "published", published)
	return published, nil
}

// RunDueScanLoop runs ScanDue immediately and then on every tick until the
// context is cancelled.
func (s *Service) RunDueScanLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	if _, err := s.ScanDue(ctx); err != nil {
		s.logger.Error("maintenance due scan failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ScanDue(ctx); err != nil {
				s.logger.Error("maintenance due scan failed", "error", err)
			}
		}
	}
}

func daysUntil(now, next time.Time) int {
	return int(math.Floor(next.Sub(now).Hours() / 24))
}
