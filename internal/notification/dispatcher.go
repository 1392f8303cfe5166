package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/user"
)

// UserDirectory resolves broadcast recipients. The user repository
// implements it.
type UserDirectory interface {
	ListActiveByRoles(roles []auth.Role) ([]*user.User, error)
	ListActiveByDepartment(departmentID string) ([]*user.User, error)
}

// broadcastRoles receive every ticket and equipment broadcast.
var broadcastRoles = []auth.Role{auth.RoleManager, auth.RoleSupport, auth.RoleDepartmentHead}

// Dispatcher turns lifecycle events into inbox rows. Two rules hold for every
// event: the acting user is never notified, and a recipient gets at most one
// row per event.
type Dispatcher struct {
	repo   Repository
	users  UserDirectory
	logger *slog.Logger
}

func NewDispatcher(repo Repository, users UserDirectory, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, users: users, logger: logger}
}

func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.TypeTicketCreated, d.handle)
	bus.Subscribe(events.TypeTicketAssigned, d.handle)
	bus.Subscribe(events.TypeTicketStatusChanged, d.handle)
	bus.Subscribe(events.TypeEquipmentStatusChanged, d.handle)
	bus.Subscribe(events.TypeMaintenanceDue, d.handle)
	bus.Subscribe(events.TypeMaintenanceCompleted, d.handle)
}

func (d *Dispatcher) handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.TicketCreated:
		return d.onTicketCreated(e)
	case events.TicketAssigned:
		return d.onTicketAssigned(e)
	case events.TicketStatusChanged:
		return d.onTicketStatusChanged(e)
	case events.EquipmentStatusChanged:
		return d.onEquipmentStatusChanged(e)
	case events.MaintenanceDue:
		return d.onMaintenanceDue(e)
	case events.MaintenanceCompleted:
		return d.onMaintenanceCompleted(e)
	default:
		d.logger.Warn("unhandled event type", "event_type", event.EventType())
		return nil
	}
}

func (d *Dispatcher) onTicketCreated(e events.TicketCreated) error {
	recipients := newRecipientSet(e.ActorID)
	staff, err := d.users.ListActiveByRoles(broadcastRoles)
	if err != nil {
		return err
	}
	for _, u := range staff {
		recipients.add(u.ID)
	}

	return d.deliver(recipients, Notification{
		Title:             "New service ticket",
		Message:           fmt.Sprintf("Ticket %s created: %s", e.Ticket.TicketCode, e.Ticket.Title),
		NotificationType:  TypeTicketCreated,
		RelatedEntityType: ptr(EntityTicket),
		RelatedEntityID:   ptr(e.Ticket.ID),
	})
}

func (d *Dispatcher) onTicketAssigned(e events.TicketAssigned) error {
	recipients := newRecipientSet(e.ActorID)
	recipients.add(e.AssigneeID)

	return d.deliver(recipients, Notification{
		Title:             "Ticket assigned to you",
		Message:           fmt.Sprintf("Ticket %s has been assigned to you: %s", e.Ticket.TicketCode, e.Ticket.Title),
		NotificationType:  TypeTicketAssigned,
		RelatedEntityType: ptr(EntityTicket),
		RelatedEntityID:   ptr(e.Ticket.ID),
	})
}

func (d *Dispatcher) onTicketStatusChanged(e events.TicketStatusChanged) error {
	recipients := newRecipientSet(e.ActorID)
	recipients.add(e.Ticket.ReportedByUserID)
	recipients.add(e.Ticket.AssignedToUserID)

	if e.NewStatus == "resolved" || e.NewStatus == "closed" {
		managers, err := d.users.ListActiveByRoles([]auth.Role{auth.RoleManager})
		if err != nil {
			return err
		}
		for _, u := range managers {
			recipients.add(u.ID)
		}
	}

	return d.deliver(recipients, Notification{
		Title:             "Ticket status updated",
		Message:           fmt.Sprintf("Ticket %s moved from %s to %s", e.Ticket.TicketCode, e.OldStatus, e.NewStatus),
		NotificationType:  TypeTicketStatusChanged,
		RelatedEntityType: ptr(EntityTicket),
		RelatedEntityID:   ptr(e.Ticket.ID),
	})
}

func (d *Dispatcher) onEquipmentStatusChanged(e events.EquipmentStatusChanged) error {
	recipients := newRecipientSet(e.ActorID)

	if e.Equipment.DepartmentID != "" {
		departmentUsers, err := d.users.ListActiveByDepartment(e.Equipment.DepartmentID)
		if err != nil {
			return err
		}
		for _, u := range departmentUsers {
			recipients.add(u.ID)
		}
	}
	staff, err := d.users.ListActiveByRoles(broadcastRoles)
	if err != nil {
		return err
	}
	for _, u := range staff {
		recipients.add(u.ID)
	}

	return d.deliver(recipients, Notification{
		Title:             "Equipment status changed",
		Message:           fmt.Sprintf("%s (%s) moved from %s to %s", e.Equipment.DeviceName, e.Equipment.AssetTag, e.OldStatus, e.NewStatus),
		NotificationType:  TypeEquipmentStatusChanged,
		RelatedEntityType: ptr(EntityEquipment),
		RelatedEntityID:   ptr(e.Equipment.ID),
	})
}

func (d *Dispatcher) onMaintenanceDue(e events.MaintenanceDue) error {
	if e.AssignedToUserID == "" {
		return nil
	}

	var notificationType, title, message string
	switch {
	case e.DaysUntilDue < 0:
		notificationType = TypeMaintenanceOverdue
		title = "Maintenance overdue"
		message = fmt.Sprintf("%s maintenance for %s is %d day(s) overdue", e.MaintenanceType, e.DeviceName, -e.DaysUntilDue)
	case e.DaysUntilDue <= 7:
		notificationType = TypeMaintenanceDue
		title = "Maintenance due soon"
		message = fmt.Sprintf("%s maintenance for %s is due in %d day(s)", e.MaintenanceType, e.DeviceName, e.DaysUntilDue)
	default:
		return nil
	}

	recipients := newRecipientSet("")
	recipients.add(e.AssignedToUserID)

	return d.deliver(recipients, Notification{
		Title:             title,
		Message:           message,
		NotificationType:  notificationType,
		RelatedEntityType: ptr(EntityMaintenance),
		RelatedEntityID:   ptr(e.ScheduleID),
	})
}

func (d *Dispatcher) onMaintenanceCompleted(e events.MaintenanceCompleted) error {
	recipients := newRecipientSet(e.ActorID)
	managers, err := d.users.ListActiveByRoles([]auth.Role{auth.RoleManager})
	if err != nil {
		return err
	}
	for _, u := range managers {
		recipients.add(u.ID)
	}

	return d.deliver(recipients, Notification{
		Title:             "Maintenance completed",
		Message:           fmt.Sprintf("%s maintenance for %s has been completed", e.MaintenanceType, e.DeviceName),
		NotificationType:  TypeMaintenanceCompleted,
		RelatedEntityType: ptr(EntityMaintenance),
		RelatedEntityID:   ptr(e.ScheduleID),
	})
}

func (d *Dispatcher) deliver(recipients *recipientSet, template Notification) error {
	ids := recipients.ids()
	if len(ids) == 0 {
		return nil
	}

	rows := make([]*Notification, 0, len(ids))
	for _, userID := range ids {
		n := template
		n.UserID = userID
		rows = append(rows, &n)
	}
	if err := d.repo.CreateBatch(rows); err != nil {
		return err
	}

	d.logger.Info("notifications delivered",
		"notification_type", template.NotificationType,
		"recipients", len(rows))
	return nil
}

// recipientSet de-duplicates recipients and silently drops the actor and
// empty ids.
type recipientSet struct {
	actorID string
	seen    map[string]struct{}
	order   []string
}

func newRecipientSet(actorID string) *recipientSet {
	return &recipientSet{actorID: actorID, seen: make(map[string]struct{})}
}

func (r *recipientSet) add(userID string) {
	if userID == "" || userID == r.actorID {
		return
	}
	if _, ok := r.seen[userID]; ok {
		return
	}
	r.seen[userID] = struct{}{}
	r.order = append(r.order, userID)
}

func (r *recipientSet) ids() []string {
	return r.order
}

func ptr(s string) *string {
	return &s
}
