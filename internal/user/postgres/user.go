package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id string) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("failed to get user").WithCause(err)
	}
	return &u, nil
}

func (r *UserRepository) List(includeInactive bool) ([]*user.User, error) {
	var users []*user.User
	query := r.db.Order("full_name asc")
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Find(&users).Error; err != nil {
		return nil, internal.NewInternalError("failed to list users").WithCause(err)
	}
	return users, nil
}

func (r *UserRepository) Update(u *user.User) error {
	if err := r.db.Save(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("User with this email already exists", internal.ErrCodeDuplicateEmail)
		}
		return internal.NewInternalError("failed to update user").WithCause(err)
	}
	return nil
}

func (r *UserRepository) Deactivate(id string) error {
	result := r.db.Model(&user.User{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return internal.NewInternalError("failed to deactivate user").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) TicketStats(userID string) (*user.TicketStats, error) {
	stats := &user.TicketStats{UserID: userID}

	counts := []struct {
		dest  *int64
		query string
		args  []interface{}
	}{
		{&stats.TicketsReported, "reported_by_user_id = ?", []interface{}{userID}},
		{&stats.TicketsAssigned, "assigned_to_user_id = ?", []interface{}{userID}},
		{&stats.TicketsResolved, "assigned_to_user_id = ? AND status IN ?", []interface{}{userID, []string{"resolved", "closed"}}},
		{&stats.TicketsOpenTotal, "assigned_to_user_id = ? AND status IN ?", []interface{}{userID, []string{"open", "in_progress"}}},
	}
	for _, c := range counts {
		if err := r.db.Table("tickets").Where(c.query, c.args...).Count(c.dest).Error; err != nil {
			return nil, internal.NewInternalError("failed to compute ticket stats").WithCause(err)
		}
	}
	return stats, nil
}

// ListActiveByRoles returns active users holding any of the given roles.
// The notification dispatcher uses this to resolve broadcast recipients.
func (r *UserRepository) ListActiveByRoles(roles []auth.Role) ([]*user.User, error) {
	var users []*user.User
	if err := r.db.Where("is_active = ? AND role IN ?", true, roles).Find(&users).Error; err != nil {
		return nil, internal.NewInternalError("failed to list users by role").WithCause(err)
	}
	return users, nil
}

// ListActiveByDepartment returns active users attached to a department.
func (r *UserRepository) ListActiveByDepartment(departmentID string) ([]*user.User, error) {
	var users []*user.User
	if err := r.db.Where("is_active = ? AND department_id = ?", true, departmentID).Find(&users).Error; err != nil {
		return nil, internal.NewInternalError("failed to list users by department").WithCause(err)
	}
	return users, nil
}
