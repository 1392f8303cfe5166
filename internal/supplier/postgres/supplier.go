package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/supplier"
)

type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

func (r *SupplierRepository) Create(s *supplier.Supplier) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if err := r.db.Create(s).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("Supplier with this name already exists", internal.ErrCodeDuplicateSupplier)
		}
		return internal.NewInternalError("failed to create supplier").WithCause(err)
	}
	return nil
}

func (r *SupplierRepository) GetByID(id string) (*supplier.Supplier, error) {
	var s supplier.Supplier
	if err := r.db.First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrSupplierNotFound
		}
		return nil, internal.NewInternalError("failed to get supplier").WithCause(err)
	}
	return &s, nil
}

func (r *SupplierRepository) GetByName(name string) (*supplier.Supplier, error) {
	var s supplier.Supplier
	if err := r.db.First(&s, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrSupplierNotFound
		}
		return nil, internal.NewInternalError("failed to get supplier").WithCause(err)
	}
	return &s, nil
}

func (r *SupplierRepository) List() ([]*supplier.Supplier, error) {
	var suppliers []*supplier.Supplier
	if err := r.db.Order("name asc").Find(&suppliers).Error; err != nil {
		return nil, internal.NewInternalError("failed to list suppliers").WithCause(err)
	}
	return suppliers, nil
}
