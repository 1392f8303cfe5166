package user

import (
	"log/slog"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

// Repository defines the data access methods for user profiles
type Repository interface {
	GetByID(id string) (*User, error)
	List(includeInactive bool) ([]*User, error)
	Update(u *User) error
	Deactivate(id string) error
	TicketStats(userID string) (*TicketStats, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListUsers returns active users. Super admins also see deactivated accounts.
func (s *Service) ListUsers(actor *auth.User) ([]*User, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageUsers); err != nil {
		return nil, err
	}
	return s.repo.List(actor.Role == auth.RoleSuperAdmin)
}

func (s *Service) GetUser(actor *auth.User, id string) (*User, error) {
	if actor == nil {
		return nil, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	// Users may always read their own profile.
	if actor.ID != id {
		if err := auth.RequireCapability(actor, auth.CapabilityManageUsers); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(id)
}

func (s *Service) UpdateUser(actor *auth.User, id string, dto UpdateUserDTO) (*User, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageUsers); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.FullName != nil {
		u.FullName = *dto.FullName
	}
	if dto.Role != nil {
		// Only super admins may grant the super_admin role.
		if auth.Role(*dto.Role) == auth.RoleSuperAdmin && actor.Role != auth.RoleSuperAdmin {
			return nil, internal.NewForbiddenError("only a super admin can grant the super_admin role", internal.ErrCodeMissingCapability)
		}
		u.Role = auth.Role(*dto.Role)
	}
	if dto.SupportType != nil {
		u.SupportType = dto.SupportType
	}
	if dto.DepartmentID != nil {
		u.DepartmentID = dto.DepartmentID
	}
	if dto.Phone != nil {
		u.Phone = dto.Phone
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id, "actor_id", actor.ID)
	return u, nil
}

// DeleteUser deactivates the account. Users cannot deactivate themselves.
func (s *Service) DeleteUser(actor *auth.User, id string) error {
	if err := auth.RequireCapability(actor, auth.CapabilityManageUsers); err != nil {
		return err
	}
	if actor.ID == id {
		return internal.NewValidationError("you cannot delete your own account", internal.ErrCodeSelfDelete)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Deactivate(id); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", id)
		return err
	}

	s.logger.Info("user deactivated", "user_id", id, "actor_id", actor.ID)
	return nil
}

func (s *Service) GetUserTicketStats(actor *auth.User, id string) (*TicketStats, error) {
	if actor == nil {
		return nil, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if actor.ID != id {
		if err := auth.RequireCapability(actor, auth.CapabilityManageUsers); err != nil {
			return nil, err
		}
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}
	return s.repo.TicketStats(id)
}
