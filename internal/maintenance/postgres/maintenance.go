package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/maintenance"
)

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(s *maintenance.Schedule) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := r.db.Create(s).Error; err != nil {
		return internal.NewInternalError("failed to create maintenance schedule").WithCause(err)
	}
	return nil
}

func (r *MaintenanceRepository) GetByID(id string) (*maintenance.Schedule, error) {
	var s maintenance.Schedule
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrScheduleNotFound
		}
		return nil, internal.NewInternalError("failed to get maintenance schedule").WithCause(err)
	}
	return &s, nil
}

func (r *MaintenanceRepository) List(filter maintenance.ListFilter) ([]*maintenance.Schedule, int64, error) {
	query := r.db.Model(&maintenance.Schedule{})

	if filter.EquipmentID != nil {
		query = query.Where("equipment_id = ?", *filter.EquipmentID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	now := time.Now().UTC()
	if filter.Overdue {
		query = query.Where("next_maintenance_date < ?", now)
	}
	if filter.Upcoming {
		query = query.Where("next_maintenance_date >= ?", now)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to count maintenance schedules").WithCause(err)
	}

	var items []*maintenance.Schedule
	if err := query.Order("next_maintenance_date asc").Limit(filter.Limit).Offset(filter.Offset).Find(&items).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to list maintenance schedules").WithCause(err)
	}
	return items, total, nil
}

func (r *MaintenanceRepository) Save(s *maintenance.Schedule) error {
	if err := r.db.Save(s).Error; err != nil {
		return internal.NewInternalError("failed to update maintenance schedule").WithCause(err)
	}
	return nil
}

func (r *MaintenanceRepository) Delete(id string) error {
	result := r.db.Delete(&maintenance.Schedule{}, "id = ?", id)
	if result.Error != nil {
		return internal.NewInternalError("failed to delete maintenance schedule").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrScheduleNotFound
	}
	return nil
}

// ListDue returns active schedules that are overdue or fall inside the next
// windowDays days.
func (r *MaintenanceRepository) ListDue(asOf time.Time, windowDays int) ([]*maintenance.Schedule, error) {
	horizon := asOf.AddDate(0, 0, windowDays)
	var items []*maintenance.Schedule
	err := r.db.
		Where("is_active = ? AND next_maintenance_date <= ?", true, horizon).
		Order("next_maintenance_date asc").
		Find(&items).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to list due maintenance schedules").WithCause(err)
	}
	return items, nil
}

func (r *MaintenanceRepository) Stats(asOf time.Time, windowDays int) (*maintenance.Stats, error) {
	horizon := asOf.AddDate(0, 0, windowDays)
	stats := &maintenance.Stats{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&stats.Total, r.db.Model(&maintenance.Schedule{})},
		{&stats.Active, r.db.Model(&maintenance.Schedule{}).Where("is_active = ?", true)},
		{&stats.Inactive, r.db.Model(&maintenance.Schedule{}).Where("is_active = ?", false)},
		{&stats.Overdue, r.db.Model(&maintenance.Schedule{}).Where("is_active = ? AND next_maintenance_date < ?", true, asOf)},
		{&stats.DueSoon, r.db.Model(&maintenance.Schedule{}).Where("is_active = ? AND next_maintenance_date >= ? AND next_maintenance_date <= ?", true, asOf, horizon)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, internal.NewInternalError("failed to compute maintenance stats").WithCause(err)
		}
	}
	return stats, nil
}
