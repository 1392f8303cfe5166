package equipment

import (
	"time"
)

type Status string

const (
	StatusActive       Status = "active"
	StatusOutOfService Status = "out_of_service"
	StatusRetired      Status = "retired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOutOfService, StatusRetired:
		return true
	}
	return false
}

type Criticality string

const (
	CriticalityLow      Criticality = "low"
	CriticalityMedium   Criticality = "medium"
	CriticalityHigh     Criticality = "high"
	CriticalityCritical Criticality = "critical"
)

func (c Criticality) Valid() bool {
	switch c {
	case CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical:
		return true
	}
	return false
}

// Equipment is a tracked biomedical asset. repair_count and the downtime
// fields are derived state: repair_count only moves when a ticket first
// reaches a terminal status, and downtime accumulates while the asset sits
// in out_of_service.
type Equipment struct {
	ID                   string      `json:"id" gorm:"primaryKey"`
	AssetTag             string      `json:"asset_tag" gorm:"not null;uniqueIndex"`
	SerialNumber         *string     `json:"serial_number,omitempty"`
	DeviceName           string      `json:"device_name" gorm:"not null"`
	Manufacturer         *string     `json:"manufacturer,omitempty"`
	Model                *string     `json:"model,omitempty"`
	Status               Status      `json:"status" gorm:"not null;default:active"`
	Criticality          Criticality `json:"criticality" gorm:"not null;default:medium"`
	DepartmentID         *string     `json:"department_id,omitempty"`
	LocationID           *string     `json:"location_id,omitempty"`
	SupplierID           *string     `json:"supplier_id,omitempty"`
	PurchaseDate         *time.Time  `json:"purchase_date,omitempty"`
	PurchaseCost         *float64    `json:"purchase_cost,omitempty"`
	WarrantyExpiry       *time.Time  `json:"warranty_expiry,omitempty"`
	InServiceDate        *time.Time  `json:"in_service_date,omitempty"`
	Notes                *string     `json:"notes,omitempty"`
	RepairCount          int         `json:"repair_count" gorm:"not null;default:0"`
	TotalDowntimeMinutes int64      `json:"total_downtime_minutes" gorm:"not null;default:0"`
	LastDowntimeStart    *time.Time `json:"last_downtime_start,omitempty"`
	IsCurrentlyDown      bool       `json:"is_currently_down" gorm:"not null;default:false"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// Location is a physical spot inside the hospital. Equipment references it;
// there are no location endpoints.
type Location struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Building  *string   `json:"building,omitempty"`
	Floor     *string   `json:"floor,omitempty"`
	Room      *string   `json:"room,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Location) TableName() string {
	return "locations"
}

type LogType string

const (
	LogTypeService     LogType = "service"
	LogTypePreventive  LogType = "preventive_maintenance"
	LogTypeIncident    LogType = "incident"
	LogTypeCalibration LogType = "calibration"
	LogTypeInspection  LogType = "inspection"
	LogTypeNote        LogType = "note"
)

func (t LogType) Valid() bool {
	switch t {
	case LogTypeService, LogTypePreventive, LogTypeIncident, LogTypeCalibration, LogTypeInspection, LogTypeNote:
		return true
	}
	return false
}

// EquipmentLog is an append-only history row for an asset.
type EquipmentLog struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	EquipmentID     string    `json:"equipment_id" gorm:"not null;index"`
	LogType         LogType   `json:"log_type" gorm:"not null"`
	Description     string    `json:"description" gorm:"not null"`
	DowntimeMinutes int64     `json:"downtime_minutes" gorm:"not null;default:0"`
	PerformedBy     *string   `json:"performed_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func (EquipmentLog) TableName() string {
	return "equipment_logs"
}
