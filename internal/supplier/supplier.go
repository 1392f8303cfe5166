package supplier

import (
	"net/mail"
	"time"

	"github.com/biocode-hms/equipment-management/internal"
)

// Supplier is a vendor or service provider for equipment.
type Supplier struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"not null;uniqueIndex"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

type CreateSupplierDTO struct {
	Name          string  `json:"name"`
	ContactPerson *string `json:"contact_person,omitempty"`
	Email         *string `json:"email,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
}

func (dto CreateSupplierDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if dto.Email != nil && *dto.Email != "" {
		if _, err := mail.ParseAddress(*dto.Email); err != nil {
			return internal.NewValidationFieldError("email", "invalid email format", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}
