package postgres

import (
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/analytics"
	"github.com/biocode-hms/equipment-management/internal/equipment"
)

type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) TopDowntime(limit int) ([]*analytics.DowntimeEntry, error) {
	var rows []*equipment.Equipment
	err := r.db.
		Order("total_downtime_minutes desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, internal.NewInternalError("failed to query downtime").WithCause(err)
	}

	entries := make([]*analytics.DowntimeEntry, 0, len(rows))
	for _, e := range rows {
		entries = append(entries, &analytics.DowntimeEntry{
			EquipmentID:          e.ID,
			AssetTag:             e.AssetTag,
			DeviceName:           e.DeviceName,
			Status:               string(e.Status),
			TotalDowntimeMinutes: e.TotalDowntimeMinutes,
			RepairCount:          e.RepairCount,
			IsCurrentlyDown:      e.IsCurrentlyDown,
			DowntimeHours:        float64(e.TotalDowntimeMinutes) / 60.0,
		})
	}
	return entries, nil
}

func (r *AnalyticsRepository) Availability() (*analytics.AvailabilityReport, error) {
	report := &analytics.AvailabilityReport{}

	counts := []struct {
		dest  *int64
		query *gorm.DB
	}{
		{&report.TotalEquipment, r.db.Model(&equipment.Equipment{})},
		{&report.Active, r.db.Model(&equipment.Equipment{}).Where("status = ?", equipment.StatusActive)},
		{&report.OutOfService, r.db.Model(&equipment.Equipment{}).Where("status = ?", equipment.StatusOutOfService)},
		{&report.Retired, r.db.Model(&equipment.Equipment{}).Where("status = ?", equipment.StatusRetired)},
		{&report.CurrentlyDown, r.db.Model(&equipment.Equipment{}).Where("is_currently_down = ?", true)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, internal.NewInternalError("failed to compute availability").WithCause(err)
		}
	}

	inFleet := report.TotalEquipment - report.Retired
	if inFleet > 0 {
		report.AvailabilityPercent = float64(report.Active) / float64(inFleet) * 100.0
	}
	return report, nil
}
