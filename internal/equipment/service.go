package equipment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
)

// Repository defines the data access methods for equipment
type Repository interface {
	Create(e *Equipment) error
	GetByID(id string) (*Equipment, error)
	GetByAssetTag(tag string) (*Equipment, error)
	List(filter ListFilter) ([]*Equipment, int64, error)
	Save(e *Equipment) error
	Delete(id string) error
	AddLog(log *EquipmentLog) error
	ListLogs(equipmentID string) ([]*EquipmentLog, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   Repository
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, events: publisher, logger: logger}
}

func (s *Service) ListEquipment(actor *auth.User, filter ListFilter) ([]*Equipment, int64, error) {
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

func (s *Service) GetEquipment(actor *auth.User, id string) (*Equipment, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewEquipment); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) GetEquipmentLogs(actor *auth.User, id string) ([]*EquipmentLog, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewEquipment); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}
	return s.repo.ListLogs(id)
}

func (s *Service) CreateEquipment(actor *auth.User, dto CreateEquipmentDTO) (*Equipment, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityCreateEquipment); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByAssetTag(dto.AssetTag); err == nil && existing != nil {
		return nil, internal.NewConflictError("Equipment with this asset tag already exists", internal.ErrCodeDuplicateAssetTag)
	}

	e := &Equipment{
		AssetTag:       dto.AssetTag,
		SerialNumber:   dto.SerialNumber,
		DeviceName:     dto.DeviceName,
		Manufacturer:   dto.Manufacturer,
		Model:          dto.Model,
		Status:         StatusActive,
		Criticality:    CriticalityMedium,
		DepartmentID:   dto.DepartmentID,
		LocationID:     dto.LocationID,
		SupplierID:     dto.SupplierID,
		PurchaseDate:   dto.PurchaseDate,
		PurchaseCost:   dto.PurchaseCost,
		WarrantyExpiry: dto.WarrantyExpiry,
		InServiceDate:  dto.InServiceDate,
		Notes:          dto.Notes,
	}
	if dto.Status != nil {
		e.Status = Status(*dto.Status)
	}
	if dto.Criticality != nil {
		e.Criticality = Criticality(*dto.Criticality)
	}
	// An asset registered as already down starts its downtime clock now.
	if e.Status == StatusOutOfService {
		now := time.Now().UTC()
		e.IsCurrentlyDown = true
		e.LastDowntimeStart = &now
	}

	if err := s.repo.Create(e); err != nil {
		s.logger.Error("failed to create equipment", "error", err, "asset_tag", dto.AssetTag)
		return nil, err
	}

	s.logger.Info("equipment created",
		"equipment_id", e.ID,
		"asset_tag", e.AssetTag,
		"actor_id", actor.ID)
	return e, nil
}

// UpdateStatus applies a status transition and keeps the downtime accumulator
// consistent: entering out_of_service starts the clock, returning to active
// folds the elapsed minutes into the total, retiring stops the clock without
// accumulating.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.User, id string, dto UpdateStatusDTO) (*Equipment, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityUpdateEquipmentStatus); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	oldStatus := e.Status
	newStatus := Status(dto.Status)
	if oldStatus == newStatus {
		return e, nil
	}

	now := time.Now().UTC()
	var downtimeMinutes int64

	switch newStatus {
	case StatusOutOfService:
		e.IsCurrentlyDown = true
		e.LastDowntimeStart = &now
	case StatusActive:
		if e.IsCurrentlyDown && e.LastDowntimeStart != nil {
			downtimeMinutes = int64(now.Sub(*e.LastDowntimeStart).Minutes())
			if downtimeMinutes < 0 {
				downtimeMinutes = 0
			}
			e.TotalDowntimeMinutes += downtimeMinutes
		}
		e.IsCurrentlyDown = false
		e.LastDowntimeStart = nil
	case StatusRetired:
		e.IsCurrentlyDown = false
		e.LastDowntimeStart = nil
	}
	e.Status = newStatus
	if dto.Notes != nil {
		e.Notes = dto.Notes
	}

	if err := s.repo.Save(e); err != nil {
		s.logger.Error("failed to update equipment status", "error", err, "equipment_id", id)
		return nil, err
	}

	log := &EquipmentLog{
		EquipmentID:     e.ID,
		LogType:         logTypeForTransition(newStatus),
		Description:     fmt.Sprintf("status changed from %s to %s", oldStatus, newStatus),
		DowntimeMinutes: downtimeMinutes,
		PerformedBy:     &actor.FullName,
	}
	if err := s.repo.AddLog(log); err != nil {
		s.logger.Error("failed to record equipment log", "error", err, "equipment_id", e.ID)
	}

	departmentID := ""
	if e.DepartmentID != nil {
		departmentID = *e.DepartmentID
	}
	event := events.NewEquipmentStatusChanged(events.EquipmentRef{
		ID:           e.ID,
		AssetTag:     e.AssetTag,
		DeviceName:   e.DeviceName,
		DepartmentID: departmentID,
	}, string(oldStatus), string(newStatus), actor.ID)
	if err := s.events.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish equipment status event", "error", err, "equipment_id", e.ID)
	}

	s.logger.Info("equipment status updated",
		"equipment_id", e.ID,
		"old_status", oldStatus,
		"new_status", newStatus,
		"actor_id", actor.ID)
	return e, nil
}

func (s *Service) DeleteEquipment(actor *auth.User, id string) error {
	if err := auth.RequireCapability(actor, auth.CapabilityDeleteEquipment); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete equipment", "error", err, "equipment_id", id)
		return err
	}

	s.logger.Info("equipment deleted", "equipment_id", id, "actor_id", actor.ID)
	return nil
}

func logTypeForTransition(newStatus Status) LogType {
	switch newStatus {
	case StatusOutOfService:
		return LogTypeIncident
	case StatusActive:
		return LogTypeService
	default:
		return LogTypeNote
	}
}
