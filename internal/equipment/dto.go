package equipment

import (
	"time"

	"github.com/biocode-hms/equipment-management/internal"
)

type CreateEquipmentDTO struct {
	AssetTag       string     `json:"asset_tag"`
	SerialNumber   *string    `json:"serial_number,omitempty"`
	DeviceName     string     `json:"device_name"`
	Manufacturer   *string    `json:"manufacturer,omitempty"`
	Model          *string    `json:"model,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Criticality    *string    `json:"criticality,omitempty"`
	DepartmentID   *string    `json:"department_id,omitempty"`
	LocationID     *string    `json:"location_id,omitempty"`
	SupplierID     *string    `json:"supplier_id,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	PurchaseCost   *float64   `json:"purchase_cost,omitempty"`
	WarrantyExpiry *time.Time `json:"warranty_expiry,omitempty"`
	InServiceDate  *time.Time `json:"in_service_date,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

func (dto CreateEquipmentDTO) Validate() error {
	if dto.AssetTag == "" {
		return internal.NewValidationFieldError("asset_tag", "asset_tag is required", internal.ErrCodeValidationFailed)
	}
	if dto.DeviceName == "" {
		return internal.NewValidationFieldError("device_name", "device_name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Status != nil && !Status(*dto.Status).Valid() {
		return internal.NewValidationFieldError("status", "unknown equipment status", internal.ErrCodeInvalidEnumValue)
	}
	if dto.Criticality != nil && !Criticality(*dto.Criticality).Valid() {
		return internal.NewValidationFieldError("criticality", "unknown criticality", internal.ErrCodeInvalidEnumValue)
	}
	if dto.PurchaseCost != nil && *dto.PurchaseCost < 0 {
		return internal.NewValidationFieldError("purchase_cost", "purchase_cost cannot be negative", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

func (dto UpdateStatusDTO) Validate() error {
	if dto.Status == "" {
		return internal.NewValidationFieldError("status", "status is required", internal.ErrCodeValidationFailed)
	}
	if !Status(dto.Status).Valid() {
		return internal.NewValidationFieldError("status", "unknown equipment status", internal.ErrCodeInvalidEnumValue)
	}
	return nil
}

// ListFilter narrows equipment listings.
type ListFilter struct {
	Status       *Status
	Criticality  *Criticality
	DepartmentID *string
	Search       string
	Limit        int
	Offset       int
}
