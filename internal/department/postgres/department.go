package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(d *department.Department) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := r.db.Create(d).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("Department with this name already exists", internal.ErrCodeDuplicateDepartment)
		}
		return internal.NewInternalError("failed to create department").WithCause(err)
	}
	return nil
}

func (r *DepartmentRepository) GetByID(id string) (*department.Department, error) {
	var d department.Department
	if err := r.db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, internal.NewInternalError("failed to get department").WithCause(err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByName(name string) (*department.Department, error) {
	var d department.Department
	if err := r.db.First(&d, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, internal.NewInternalError("failed to get department").WithCause(err)
	}
	return &d, nil
}

func (r *DepartmentRepository) List() ([]*department.Department, error) {
	var departments []*department.Department
	if err := r.db.Order("name asc").Find(&departments).Error; err != nil {
		return nil, internal.NewInternalError("failed to list departments").WithCause(err)
	}
	return departments, nil
}

func (r *DepartmentRepository) Delete(id string) error {
	result := r.db.Delete(&department.Department{}, "id = ?", id)
	if result.Error != nil {
		return internal.NewInternalError("failed to delete department").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrDepartmentNotFound
	}
	return nil
}
