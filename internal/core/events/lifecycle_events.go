package events

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types published by the ticket, equipment and maintenance
// services and consumed by notification dispatch.
const (
	TypeTicketCreated          = "ticket.created"
	TypeTicketAssigned         = "ticket.assigned"
	TypeTicketStatusChanged    = "ticket.status_changed"
	TypeEquipmentStatusChanged = "equipment.status_changed"
	TypeMaintenanceDue         = "maintenance.due"
	TypeMaintenanceCompleted   = "maintenance.completed"
)

type baseEvent struct {
	id         string
	eventType  string
	occurredAt time.Time
}

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		id:         uuid.NewString(),
		eventType:  eventType,
		occurredAt: time.Now().UTC(),
	}
}

func (e baseEvent) EventType() string     { return e.eventType }
func (e baseEvent) EventID() string       { return e.id }
func (e baseEvent) OccurredAt() time.Time { return e.occurredAt }

// TicketRef carries the ticket fields notification messages need, so the
// dispatcher never reaches back into the ticket store.
type TicketRef struct {
	ID               string
	TicketCode       string
	Title            string
	EquipmentService string
	ReportedByUserID string
	AssignedToUserID string
}

type TicketCreated struct {
	baseEvent
	Ticket  TicketRef
	ActorID string
}

func NewTicketCreated(ticket TicketRef, actorID string) TicketCreated {
	return TicketCreated{baseEvent: newBaseEvent(TypeTicketCreated), Ticket: ticket, ActorID: actorID}
}

type TicketAssigned struct {
	baseEvent
	Ticket     TicketRef
	AssigneeID string
	ActorID    string
}

func NewTicketAssigned(ticket TicketRef, assigneeID, actorID string) TicketAssigned {
	return TicketAssigned{baseEvent: newBaseEvent(TypeTicketAssigned), Ticket: ticket, AssigneeID: assigneeID, ActorID: actorID}
}

type TicketStatusChanged struct {
	baseEvent
	Ticket    TicketRef
	OldStatus string
	NewStatus string
	ActorID   string
}

func NewTicketStatusChanged(ticket TicketRef, oldStatus, newStatus, actorID string) TicketStatusChanged {
	return TicketStatusChanged{
		baseEvent: newBaseEvent(TypeTicketStatusChanged),
		Ticket:    ticket,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ActorID:   actorID,
	}
}

// EquipmentRef mirrors TicketRef for equipment events.
type EquipmentRef struct {
	ID           string
	AssetTag     string
	DeviceName   string
	DepartmentID string
}

type EquipmentStatusChanged struct {
	baseEvent
	Equipment EquipmentRef
	OldStatus string
	NewStatus string
	ActorID   string
}

func NewEquipmentStatusChanged(equipment EquipmentRef, oldStatus, newStatus, actorID string) EquipmentStatusChanged {
	return EquipmentStatusChanged{
		baseEvent: newBaseEvent(TypeEquipmentStatusChanged),
		Equipment: equipment,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ActorID:   actorID,
	}
}

type MaintenanceDue struct {
	baseEvent
	ScheduleID       string
	MaintenanceType  string
	DeviceName       string
	AssignedToUserID string
	DaysUntilDue     int
}

func NewMaintenanceDue(scheduleID, maintenanceType, deviceName, assignedToUserID string, daysUntilDue int) MaintenanceDue {
	return MaintenanceDue{
		baseEvent:        newBaseEvent(TypeMaintenanceDue),
		ScheduleID:       scheduleID,
		MaintenanceType:  maintenanceType,
		DeviceName:       deviceName,
		AssignedToUserID: assignedToUserID,
		DaysUntilDue:     daysUntilDue,
	}
}

type MaintenanceCompleted struct {
	baseEvent
	ScheduleID      string
	MaintenanceType string
	DeviceName      string
	ActorID         string
}

func NewMaintenanceCompleted(scheduleID, maintenanceType, deviceName, actorID string) MaintenanceCompleted {
	return MaintenanceCompleted{
		baseEvent:       newBaseEvent(TypeMaintenanceCompleted),
		ScheduleID:      scheduleID,
		MaintenanceType: maintenanceType,
		DeviceName:      deviceName,
		ActorID:         actorID,
	}
}
