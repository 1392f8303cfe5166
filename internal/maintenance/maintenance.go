package maintenance

import (
	"time"

	"github.com/biocode-hms/equipment-management/internal"
)

type MaintenanceType string

const (
	TypePreventive  MaintenanceType = "preventive"
	TypeCalibration MaintenanceType = "calibration"
	TypeInspection  MaintenanceType = "inspection"
	TypeSafetyCheck MaintenanceType = "safety_check"
)

func (t MaintenanceType) Valid() bool {
	switch t {
	case TypePreventive, TypeCalibration, TypeInspection, TypeSafetyCheck:
		return true
	}
	return false
}

// Schedule is a recurring maintenance plan for one asset. Completing it
// always resets the cycle from the completion moment; missed cycles are not
// compounded.
type Schedule struct {
	ID                  string          `json:"id" gorm:"primaryKey"`
	EquipmentID         string          `json:"equipment_id" gorm:"not null;index"`
	MaintenanceType     MaintenanceType `json:"maintenance_type" gorm:"not null"`
	FrequencyDays       int             `json:"frequency_days" gorm:"not null"`
	LastMaintenanceDate *time.Time      `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate time.Time       `json:"next_maintenance_date" gorm:"not null;index"`
	AssignedToUserID    *string         `json:"assigned_to_user_id,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	IsActive            bool            `json:"is_active" gorm:"not null;default:true"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (Schedule) TableName() string {
	return "maintenance_schedules"
}

// Stats summarizes schedule health for the dashboard.
type Stats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	DueSoon  int64 `json:"due_soon"`
	Overdue  int64 `json:"overdue"`
	Inactive int64 `json:"inactive"`
}

type CreateScheduleDTO struct {
	EquipmentID         string     `json:"equipment_id"`
	MaintenanceType     string     `json:"maintenance_type"`
	FrequencyDays       int        `json:"frequency_days"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date,omitempty"`
	AssignedToUserID    *string    `json:"assigned_to_user_id,omitempty"`
	Notes               *string    `json:"notes,omitempty"`
}

func (dto CreateScheduleDTO) Validate() error {
	if dto.EquipmentID == "" {
		return internal.NewValidationFieldError("equipment_id", "equipment_id is required", internal.ErrCodeValidationFailed)
	}
	if !MaintenanceType(dto.MaintenanceType).Valid() {
		return internal.NewValidationFieldError("maintenance_type", "unknown maintenance type", internal.ErrCodeInvalidEnumValue)
	}
	if dto.FrequencyDays <= 0 {
		return internal.NewValidationFieldError("frequency_days", "frequency_days must be positive", internal.ErrCodeInvalidFrequency)
	}
	return nil
}

type UpdateScheduleDTO struct {
	MaintenanceType  *string `json:"maintenance_type,omitempty"`
	FrequencyDays    *int    `json:"frequency_days,omitempty"`
	AssignedToUserID *string `json:"assigned_to_user_id,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

func (dto UpdateScheduleDTO) Validate() error {
	if dto.MaintenanceType != nil && !MaintenanceType(*dto.MaintenanceType).Valid() {
		return internal.NewValidationFieldError("maintenance_type", "unknown maintenance type", internal.ErrCodeInvalidEnumValue)
	}
	if dto.FrequencyDays != nil && *dto.FrequencyDays <= 0 {
		return internal.NewValidationFieldError("frequency_days", "frequency_days must be positive", internal.ErrCodeInvalidFrequency)
	}
	return nil
}

// ListFilter narrows schedule listings.
type ListFilter struct {
	EquipmentID *string
	OnlyActive  bool
	Overdue     bool
	Upcoming    bool
	Limit       int
	Offset      int
}
