package department

import (
	"time"

	"github.com/biocode-hms/equipment-management/internal"
)

// Department is a named organizational unit; equipment and users reference it.
type Department struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex"`
	Code        *string   `json:"code,omitempty" gorm:"uniqueIndex"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Department) TableName() string {
	return "departments"
}

type CreateDepartmentDTO struct {
	Name        string  `json:"name"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Name) > 255 {
		return internal.NewValidationFieldError("name", "name must be at most 255 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}
