package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/ticket"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func (r *TicketRepository) Create(t *ticket.Ticket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := r.db.Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("ticket code collision", internal.ErrCodeTicketCodeExhausted)
		}
		return internal.NewInternalError("failed to create ticket").WithCause(err)
	}
	return nil
}

func (r *TicketRepository) GetByID(id string) (*ticket.Ticket, error) {
	var t ticket.Ticket
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTicketNotFound
		}
		return nil, internal.NewInternalError("failed to get ticket").WithCause(err)
	}
	return &t, nil
}

func (r *TicketRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	if err := r.db.Model(&ticket.Ticket{}).Where("ticket_code = ?", code).Count(&count).Error; err != nil {
		return false, internal.NewInternalError("failed to check ticket code").WithCause(err)
	}
	return count > 0, nil
}

func (r *TicketRepository) List(filter ticket.ListFilter) ([]*ticket.Ticket, int64, error) {
	query := r.db.Model(&ticket.Ticket{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("priority = ?", *filter.Priority)
	}
	if filter.ReportedByUserID != nil {
		query = query.Where("reported_by_user_id = ?", *filter.ReportedByUserID)
	}
	if filter.AssignedToUserID != nil {
		query = query.Where("assigned_to_user_id = ?", *filter.AssignedToUserID)
	}
	if filter.DepartmentID != nil {
		query = query.Where("department_id = ?", *filter.DepartmentID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR ticket_code LIKE ? OR equipment_service LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to count tickets").WithCause(err)
	}

	var items []*ticket.Ticket
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(filter.Offset).Find(&items).Error; err != nil {
		return nil, 0, internal.NewInternalError("failed to list tickets").WithCause(err)
	}
	return items, total, nil
}

func (r *TicketRepository) Save(t *ticket.Ticket) error {
	if err := r.db.Save(t).Error; err != nil {
		return internal.NewInternalError("failed to update ticket").WithCause(err)
	}
	return nil
}

// SaveWithRepairIncrement persists the ticket and bumps the equipment repair
// counter in one transaction, so a terminal transition can never commit
// without its increment.
func (r *TicketRepository) SaveWithRepairIncrement(t *ticket.Ticket, equipmentID string) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(t).Error; err != nil {
			return err
		}
		return tx.Table("equipment").
			Where("id = ?", equipmentID).
			Update("repair_count", gorm.Expr("repair_count + 1")).Error
	})
	if err != nil {
		return internal.NewInternalError("failed to update ticket").WithCause(err)
	}
	return nil
}

func (r *TicketRepository) CreateResponse(tr *ticket.TicketResponse) error {
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	if err := r.db.Create(tr).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.NewConflictError("ticket already has a service report", internal.ErrCodeDuplicateServiceReport)
		}
		return internal.NewInternalError("failed to create service report").WithCause(err)
	}
	return nil
}

func (r *TicketRepository) GetResponseByTicketID(ticketID string) (*ticket.TicketResponse, error) {
	var tr ticket.TicketResponse
	if err := r.db.First(&tr, "ticket_id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrServiceReportNotFound
		}
		return nil, internal.NewInternalError("failed to get service report").WithCause(err)
	}
	return &tr, nil
}
