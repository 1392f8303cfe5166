package department

import (
	"log/slog"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

// Repository defines the data access methods for departments
type Repository interface {
	Create(department *Department) error
	GetByID(id string) (*Department, error)
	GetByName(name string) (*Department, error)
	List() ([]*Department, error)
	Delete(id string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListDepartments(actor *auth.User) ([]*Department, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewDepartments); err != nil {
		return nil, err
	}
	return s.repo.List()
}

func (s *Service) GetDepartment(actor *auth.User, id string) (*Department, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityViewDepartments); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *Service) CreateDepartment(actor *auth.User, dto CreateDepartmentDTO) (*Department, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageDepartments); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
		return nil, internal.NewConflictError("Department with this name already exists", internal.ErrCodeDuplicateDepartment)
	}

	department := &Department{
		Name:        dto.Name,
		Code:        dto.Code,
		Description: dto.Description,
	}

	if err := s.repo.Create(department); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("department created", "department_id", department.ID, "name", department.Name, "actor_id", actor.ID)
	return department, nil
}

func (s *Service) DeleteDepartment(actor *auth.User, id string) error {
	if err := auth.RequireCapability(actor, auth.CapabilityManageDepartments); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return err
	}

	s.logger.Info("department deleted", "department_id", id, "actor_id", actor.ID)
	return nil
}
