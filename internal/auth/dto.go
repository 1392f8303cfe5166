package auth

import (
	"net/mail"

	"github.com/biocode-hms/equipment-management/internal"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (dto LoginDTO) Validate() error {
	if dto.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if dto.Password == "" {
		return internal.NewValidationFieldError("password", "password is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RegisterDTO struct {
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	Password    string  `json:"password"`
	Role        Role    `json:"role"`
	SupportType *string `json:"support_type,omitempty"`
}

func (dto RegisterDTO) Validate() error {
	if dto.Email == "" {
		return internal.NewValidationFieldError("email", "email is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(dto.Email); err != nil {
		return internal.NewValidationFieldError("email", "email is not valid", internal.ErrCodeValidationFailed)
	}
	if dto.FullName == "" {
		return internal.NewValidationFieldError("full_name", "full name is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Role != "" && !dto.Role.Valid() {
		return internal.NewValidationError("invalid role", internal.ErrCodeInvalidEnumValue)
	}
	return nil
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token"`
}
