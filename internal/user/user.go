package user

import (
	"time"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

// User is the account profile. Credentials live in the auth package; this
// model never exposes the password hash.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"not null;uniqueIndex"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Role         auth.Role `json:"role" gorm:"not null"`
	SupportType  *string   `json:"support_type,omitempty"`
	DepartmentID *string   `json:"department_id,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// TicketStats summarizes a user's ticket involvement.
type TicketStats struct {
	UserID           string `json:"user_id"`
	TicketsReported  int64  `json:"tickets_reported"`
	TicketsAssigned  int64  `json:"tickets_assigned"`
	TicketsResolved  int64  `json:"tickets_resolved"`
	TicketsOpenTotal int64  `json:"tickets_open_total"`
}

type UpdateUserDTO struct {
	FullName     *string `json:"full_name,omitempty"`
	Role         *string `json:"role,omitempty"`
	SupportType  *string `json:"support_type,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.FullName != nil && *dto.FullName == "" {
		return internal.NewValidationFieldError("full_name", "full_name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Role != nil && !auth.Role(*dto.Role).Valid() {
		return internal.NewValidationFieldError("role", "unknown role", internal.ErrCodeInvalidEnumValue)
	}
	return nil
}
