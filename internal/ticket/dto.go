package ticket

import (
	"time"

	"github.com/biocode-hms/equipment-management/internal"
)

type CreateTicketDTO struct {
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	Priority         *string `json:"priority,omitempty"`
	Concern          *string `json:"concern,omitempty"`
	EquipmentID      *string `json:"equipment_id,omitempty"`
	EquipmentService *string `json:"equipment_service,omitempty"`
	SerialNumber     *string `json:"serial_number,omitempty"`
}

func (dto CreateTicketDTO) Validate() error {
	if dto.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if dto.Priority != nil && !Priority(*dto.Priority).Valid() {
		return internal.NewValidationFieldError("priority", "unknown priority", internal.ErrCodeInvalidEnumValue)
	}
	if dto.EquipmentID == nil && (dto.EquipmentService == nil || *dto.EquipmentService == "") {
		return internal.NewValidationFieldError("equipment_service", "either equipment_id or equipment_service is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateTicketDTO struct {
	Title            *string `json:"title,omitempty"`
	Description      *string `json:"description,omitempty"`
	Status           *string `json:"status,omitempty"`
	Priority         *string `json:"priority,omitempty"`
	AssignedToUserID *string `json:"assigned_to_user_id,omitempty"`
}

func (dto UpdateTicketDTO) Validate() error {
	if dto.Title != nil && *dto.Title == "" {
		return internal.NewValidationFieldError("title", "title cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Status != nil && !Status(*dto.Status).Valid() {
		return internal.NewValidationFieldError("status", "unknown ticket status", internal.ErrCodeInvalidEnumValue)
	}
	if dto.Priority != nil && !Priority(*dto.Priority).Valid() {
		return internal.NewValidationFieldError("priority", "unknown priority", internal.ErrCodeInvalidEnumValue)
	}
	return nil
}

type ServiceReportDTO struct {
	Diagnosis   *string    `json:"diagnosis,omitempty"`
	ActionTaken string     `json:"action_taken"`
	PartsUsed   *string    `json:"parts_used,omitempty"`
	Engineer    *string    `json:"engineer,omitempty"`
	CompletedOn *time.Time `json:"completed_on,omitempty"`
}

func (dto ServiceReportDTO) Validate() error {
	if dto.ActionTaken == "" {
		return internal.NewValidationFieldError("action_taken", "action_taken is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListFilter narrows ticket listings. Visibility fields are filled by the
// service from the caller's role, never from the request.
type ListFilter struct {
	Status           *Status
	Priority         *Priority
	Search           string
	ReportedByUserID *string
	AssignedToUserID *string
	DepartmentID     *string
	Limit            int
	Offset           int
}
