package ticket

import (
	"context"
	"log/slog"
	"time"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/department"
	"github.com/biocode-hms/equipment-management/internal/equipment"
)

const (
	// FromDepartment value when the ticket's equipment has no department.
	unknownDepartment = "Unknown"

	ticketCodeAttempts = 5
)

// Repository defines the data access methods for tickets
type Repository interface {
	Create(t *Ticket) error
	GetByID(id string) (*Ticket, error)
	ExistsByCode(code string) (bool, error)
	List(filter ListFilter) ([]*Ticket, int64, error)
	Save(t *Ticket) error
	SaveWithRepairIncrement(t *Ticket, equipmentID string) error
	CreateResponse(tr *TicketResponse) error
	GetResponseByTicketID(ticketID string) (*TicketResponse, error)
}

// EquipmentStore is the slice of the equipment repository tickets need.
type EquipmentStore interface {
	GetByID(id string) (*equipment.Equipment, error)
}

// DepartmentStore resolves department names for the legacy from_department field.
type DepartmentStore interface {
	GetByID(id string) (*department.Department, error)
}

type EventPublisher interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo        Repository
	equipment   EquipmentStore
	departments DepartmentStore
	events      EventPublisher
	logger      *slog.Logger
	genCode     func() string
}

func NewService(repo Repository, equipmentStore EquipmentStore, departmentStore DepartmentStore, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		equipment:   equipmentStore,
		departments: departmentStore,
		events:      publisher,
		logger:      logger,
		genCode:     GenerateTicketCode,
	}
}

func (s *Service) CreateTicket(ctx context.Context, actor *auth.User, dto CreateTicketDTO) (*Ticket, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityCreateTicket); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t := &Ticket{
		Title:            dto.Title,
		Description:      dto.Description,
		Status:           StatusOpen,
		Priority:         PriorityMedium,
		FromDepartment:   unknownDepartment,
		Concern:          dto.Concern,
		SerialNumber:     dto.SerialNumber,
		ReportedBy:       actor.FullName,
		ReportedByUserID: actor.ID,
		EquipmentID:      dto.EquipmentID,
	}
	if dto.Priority != nil {
		t.Priority = Priority(*dto.Priority)
	}
	if dto.EquipmentService != nil {
		t.EquipmentService = *dto.EquipmentService
	}

	if dto.EquipmentID != nil {
		e, err := s.equipment.GetByID(*dto.EquipmentID)
		if err != nil {
			return nil, err
		}
		t.EquipmentService = e.DeviceName
		if e.SerialNumber != nil {
			t.SerialNumber = e.SerialNumber
		}
		t.DepartmentID = e.DepartmentID
		if e.DepartmentID != nil {
			if d, err := s.departments.GetByID(*e.DepartmentID); err == nil {
				t.FromDepartment = d.Name
			}
		}
	}

	code, err := s.uniqueTicketCode()
	if err != nil {
		return nil, err
	}
	t.TicketCode = code

	if err := s.repo.Create(t); err != nil {
		s.logger.Error("failed to create ticket", "error", err, "ticket_code", t.TicketCode)
		return nil, err
	}

	event := events.NewTicketCreated(s.ticketRef(t), actor.ID)
	if err := s.events.PublishSync(ctx, event); err != nil {
		s.logger.Error("failed to publish ticket created event", "error", err, "ticket_id", t.ID)
	}

	s.logger.Info("ticket created",
		"ticket_id", t.ID,
		"ticket_code", t.TicketCode,
		"actor_id", actor.ID)
	return t, nil
}

func (s *Service) ListTickets(actor *auth.User, filter ListFilter) ([]*Ticket, int64, error) {
	if actor == nil {
		return nil, 0, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	// Visibility narrows by role unless the caller can see everything.
	filter.ReportedByUserID = nil
	filter.AssignedToUserID = nil
	if !auth.HasCapability(actor.Role, auth.CapabilityViewAllTickets) {
		switch actor.Role {
		case auth.RoleSupport:
			filter.AssignedToUserID = &actor.ID
		case auth.RoleDepartmentIncharge:
			filter.ReportedByUserID = &actor.ID
		case auth.RoleDepartmentHead:
			if actor.DepartmentID != nil {
				filter.DepartmentID = actor.DepartmentID
			} else {
				filter.ReportedByUserID = &actor.ID
			}
		default:
			filter.ReportedByUserID = &actor.ID
		}
	}

	return s.repo.List(filter)
}

func (s *Service) GetTicket(actor *auth.User, id string) (*Ticket, error) {
	if actor == nil {
		return nil, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, t) {
		return nil, internal.NewForbiddenError("you do not have access to this ticket", internal.ErrCodeMissingCapability)
	}
	return t, nil
}

// UpdateTicket validates every permission before touching the entity. A first
// transition into resolved/closed stamps completed_on and bumps the equipment
// repair count exactly once; churn inside the terminal set does neither.
func (s *Service) UpdateTicket(ctx context.Context, actor *auth.User, id string, dto UpdateTicketDTO) (*Ticket, error) {
	if actor == nil {
		return nil, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !s.canView(actor, t) {
		return nil, internal.NewForbiddenError("you do not have access to this ticket", internal.ErrCodeMissingCapability)
	}

	statusChanging := dto.Status != nil && Status(*dto.Status) != t.Status
	assignmentChanging := dto.AssignedToUserID != nil &&
		(t.AssignedToUserID == nil || *dto.AssignedToUserID != *t.AssignedToUserID)

	if statusChanging {
		newStatus := Status(*dto.Status)
		if newStatus.Terminal() {
			if err := auth.RequireCapability(actor, auth.CapabilityResolveTicket); err != nil {
				return nil, err
			}
		}
		if newStatus == StatusClosed {
			if err := auth.RequireCapability(actor, auth.CapabilityCloseTicket); err != nil {
				return nil, err
			}
		}
	}
	if assignmentChanging {
		if err := auth.RequireCapability(actor, auth.CapabilityAssignTicket); err != nil {
			return nil, err
		}
	}

	oldStatus := t.Status
	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.Description != nil {
		t.Description = dto.Description
	}
	if dto.Priority != nil {
		t.Priority = Priority(*dto.Priority)
	}
	if assignmentChanging {
		t.AssignedToUserID = dto.AssignedToUserID
	}

	enteredTerminal := false
	if statusChanging {
		newStatus := Status(*dto.Status)
		if newStatus.Terminal() && !oldStatus.Terminal() {
			enteredTerminal = true
			now := time.Now().UTC()
			t.CompletedOn = &now
		}
		if !newStatus.Terminal() && oldStatus.Terminal() {
			t.CompletedOn = nil
		}
		t.Status = newStatus
	}

	// The repair count moves in the same transaction as the terminal save;
	// the ticket is never committed as resolved with the counter unchanged.
	if enteredTerminal && t.EquipmentID != nil {
		if err := s.repo.SaveWithRepairIncrement(t, *t.EquipmentID); err != nil {
			s.logger.Error("failed to update ticket", "error", err, "ticket_id", id)
			return nil, err
		}
	} else if err := s.repo.Save(t); err != nil {
		s.logger.Error("failed to update ticket", "error", err, "ticket_id", id)
		return nil, err
	}

	if assignmentChanging {
		event := events.NewTicketAssigned(s.ticketRef(t), *t.AssignedToUserID, actor.ID)
		if err := s.events.PublishSync(ctx, event); err != nil {
			s.logger.Error("failed to publish ticket assigned event", "error", err, "ticket_id", t.ID)
		}
	}
	if statusChanging {
		event := events.NewTicketStatusChanged(s.ticketRef(t), string(oldStatus), string(t.Status), actor.ID)
		if err := s.events.PublishSync(ctx, event); err != nil {
			s.logger.Error("failed to publish ticket status event", "error", err, "ticket_id", t.ID)
		}
	}

	s.logger.Info("ticket updated",
		"ticket_id", t.ID,
		"old_status", oldStatus,
		"new_status", t.Status,
		"actor_id", actor.ID)
	return t, nil
}

// AddServiceReport files the engineer's report. A ticket carries at most one.
func (s *Service) AddServiceReport(actor *auth.User, ticketID string, dto ServiceReportDTO) (*TicketResponse, error) {
	if err := auth.RequireCapability(actor, auth.CapabilityResolveTicket); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByID(ticketID); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetResponseByTicketID(ticketID); err == nil && existing != nil {
		return nil, internal.NewConflictError("ticket already has a service report", internal.ErrCodeDuplicateServiceReport)
	}

	engineer := actor.FullName
	if dto.Engineer != nil && *dto.Engineer != "" {
		engineer = *dto.Engineer
	}
	tr := &TicketResponse{
		TicketID:    ticketID,
		Diagnosis:   dto.Diagnosis,
		ActionTaken: dto.ActionTaken,
		PartsUsed:   dto.PartsUsed,
		Engineer:    engineer,
		CompletedOn: dto.CompletedOn,
	}
	if err := s.repo.CreateResponse(tr); err != nil {
		s.logger.Error("failed to create service report", "error", err, "ticket_id", ticketID)
		return nil, err
	}

	s.logger.Info("service report filed", "ticket_id", ticketID, "actor_id", actor.ID)
	return tr, nil
}

func (s *Service) GetServiceReport(actor *auth.User, ticketID string) (*TicketResponse, error) {
	t, err := s.GetTicket(actor, ticketID)
	if err != nil {
		return nil, err
	}
	return s.repo.GetResponseByTicketID(t.ID)
}

func (s *Service) uniqueTicketCode() (string, error) {
	for i := 0; i < ticketCodeAttempts; i++ {
		code := s.genCode()
		exists, err := s.repo.ExistsByCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", internal.NewConflictError("could not allocate a unique ticket code", internal.ErrCodeTicketCodeExhausted)
}

func (s *Service) canView(actor *auth.User, t *Ticket) bool {
	if auth.HasCapability(actor.Role, auth.CapabilityViewAllTickets) {
		return true
	}
	if t.ReportedByUserID == actor.ID {
		return true
	}
	if t.AssignedToUserID != nil && *t.AssignedToUserID == actor.ID {
		return true
	}
	if actor.Role == auth.RoleDepartmentHead && actor.DepartmentID != nil &&
		t.DepartmentID != nil && *t.DepartmentID == *actor.DepartmentID {
		return true
	}
	return false
}

func (s *Service) ticketRef(t *Ticket) events.TicketRef {
	assignee := ""
	if t.AssignedToUserID != nil {
		assignee = *t.AssignedToUserID
	}
	return events.TicketRef{
		ID:               t.ID,
		TicketCode:       t.TicketCode,
		Title:            t.Title,
		EquipmentService: t.EquipmentService,
		ReportedByUserID: t.ReportedByUserID,
		AssignedToUserID: assignee,
	}
}
