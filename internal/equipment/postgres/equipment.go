package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/equipment"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) Create(e *equipment.Equipment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := r.db.Create(e).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("Equipment with this asset tag already exists", internal.ErrCodeDuplicateAssetTag)
		}
		return internal.NewInternalError("failed to create equipment").WithCause(err)
	}
	return nil
}

func (r *EquipmentRepository) GetByID(id string) (*equipment.Equipment, error) {
	var e equipment.Equipment
	if err := r.db.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEquipmentNotFound
		}
		return nil, internal.NewInternalError("failed to get equipment").WithCause(err)
	}
	return &e, nil
}

func (r *EquipmentRepository) GetByAssetTag(tag string) (*equipment.Equipment, error) {
	var e equipment.Equipment
	if err := r.db.First(&e, "asset_tag = ?", tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEquipmentNotFound
		}
		return nil, internal.NewInternalError("failed to get equipment").WithCause(err)
	}
	return &e, nil
}

func (r *EquipmentRepository) List(filter equipment.ListFilter) ([]*equipment.Equipment, int64, error) {
	query := r.db.Model(&equipment.Equipment{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Criticality != nil {
		query = query.Where("criticality = ?", *filter.Criticality)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("device_name LIKE ? OR asset_tag LIKE ? OR serial_number LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to count equipment").WithCause(err)
	}

	var items []*equipment.Equipment
	if err := query.Order("device_name asc").Limit(filter.Limit).Offset(filter.Offset).Find(&items).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to list equipment").WithCause(err)
	}
	return items, total, nil
}

func (r *EquipmentRepository) Save(e *equipment.Equipment) error {
	if err := r.db.Save(e).Error; err != nil {
		return internal.NewInternalError("failed to update equipment").WithCause(err)
	}
	return nil
}

func (r *EquipmentRepository) Delete(id string) error {
	result := r.db.Delete(&equipment.Equipment{}, "id = ?", id)
	if result.Error != nil {
		return internal.NewInternalError("failed to delete equipment").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return internal.ErrEquipmentNotFound
	}
	return nil
}

func (r *EquipmentRepository) AddLog(log *equipment.EquipmentLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if err := r.db.Create(log).Error; err != nil {
		return internal.NewInternalError("failed to create equipment log").WithCause(err)
	}
	return nil
}

func (r *EquipmentRepository) ListLogs(equipmentID string) ([]*equipment.EquipmentLog, error) {
	var logs []*equipment.EquipmentLog
	if err := r.db.Where("equipment_id = ?", equipmentID).Order("created_at desc").Find(&logs).Error; err != nil {
		return nil, internal.NewInternalError("failed to list equipment logs").WithCause(err)
	}
	return logs, nil
}
