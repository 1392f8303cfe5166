package supplier

import (
	"log/slog"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

// Repository defines the data access methods for suppliers
type Repository interface {
	Create(supplier *Supplier) error
	GetByID(id string) (*Supplier, error)
	GetByName(name string) (*Supplier, error)
	List() ([]*Supplier, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Any authenticated user may browse suppliers; creation is restricted.
func (s *Service) ListSuppliers(actor *auth.User) ([]*Supplier, error) {
	if actor == nil {
		return nil, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	return s.repo.List()
}

func (s *Service) GetSupplier(actor *auth.User, id string) (*Supplier, error) {
	if actor == nil {
		return nil, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	return s.repo.GetByID(id)
}

func (s *Service) CreateSupplier(actor *auth.User, dto CreateSupplierDTO) (*Supplier, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityManageSuppliers); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
		return nil, internal.NewConflictError("Supplier with this name already exists", internal.ErrCodeDuplicateSupplier)
	}

	supplier := &Supplier{
		Name:          dto.Name,
		ContactPerson: dto.ContactPerson,
		Email:         dto.Email,
		Phone:         dto.Phone,
		Address:       dto.Address,
	}

	if err := s.repo.Create(supplier); err != nil {
		s.logger.Error("failed to create supplier", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("supplier created", "supplier_id", supplier.ID, "name", supplier.Name, "actor_id", actor.ID)
	return supplier, nil
}
