package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

// userRow maps the credential-bearing subset of the users table.
type userRow struct {
	ID           string  `gorm:"primaryKey"`
	Email        string  `gorm:"column:email"`
	FullName     string  `gorm:"column:full_name"`
	Role         string  `gorm:"column:role"`
	SupportType  *string `gorm:"column:support_type"`
	DepartmentID *string `gorm:"column:department_id"`
	IsActive     bool    `gorm:"column:is_active"`
	PasswordHash string  `gorm:"column:password_hash"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string {
	return "users"
}

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.Repository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentialsByEmail(email string) (string, *auth.User, error) {
	var row userRow
	err := r.db.Where("email = ?", email).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, internal.ErrUserNotFound
		}
		return "", nil, err
	}
	user := toAuthUser(&row)
	return row.PasswordHash, user, nil
}

func (r *AuthRepository) GetUserByID(userID string) (*auth.User, error) {
	var row userRow
	err := r.db.Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return toAuthUser(&row), nil
}

func (r *AuthRepository) CreateUser(user *auth.User, passwordHash string) error {
	row := userRow{
		ID:           uuid.NewString(),
		Email:        user.Email,
		FullName:     user.FullName,
		Role:         string(user.Role),
		SupportType:  user.SupportType,
		DepartmentID: user.DepartmentID,
		IsActive:     user.IsActive,
		PasswordHash: passwordHash,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("Email already registered", internal.ErrCodeDuplicateEmail)
		}
		return err
	}
	user.ID = row.ID
	return nil
}

func toAuthUser(row *userRow) *auth.User {
	return &auth.User{
		ID:           row.ID,
		Email:        row.Email,
		FullName:     row.FullName,
		Role:         auth.Role(row.Role),
		SupportType:  row.SupportType,
		DepartmentID: row.DepartmentID,
		IsActive:     row.IsActive,
	}
}
