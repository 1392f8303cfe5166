package notification_test

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/notification"
	"github.com/biocode-hms/equipment-management/internal/user"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

// Mock repository for testing
type mockNotificationRepository struct {
	created []*notification.Notification
}

func (m *mockNotificationRepository) CreateBatch(rows []*notification.Notification) error {
	m.created = append(m.created, rows...)
	return nil
}

func (m *mockNotificationRepository) ListByUser(userID string, unreadOnly bool, limit, offset int) ([]*notification.Notification, int64, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepository) CountUnread(userID string) (int64, error) {
	return 0, nil
}

func (m *mockNotificationRepository) MarkRead(id, userID string) error {
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(userID string) (int64, error) {
	return 0, nil
}

func (m *mockNotificationRepository) Delete(id, userID string) error {
	return nil
}

func (m *mockNotificationRepository) recipientIDs() []string {
	ids := make([]string, 0, len(m.created))
	for _, n := range m.created {
		ids = append(ids, n.UserID)
	}
	return ids
}

type mockUserDirectory struct {
	byRole       map[auth.Role][]*user.User
	byDepartment map[string][]*user.User
}

func (m *mockUserDirectory) ListActiveByRoles(roles []auth.Role) ([]*user.User, error) {
	var out []*user.User
	for _, role := range roles {
		out = append(out, m.byRole[role]...)
	}
	return out, nil
}

func (m *mockUserDirectory) ListActiveByDepartment(departmentID string) ([]*user.User, error) {
	return m.byDepartment[departmentID], nil
}

var _ = Describe("Notification Dispatcher", func() {
	var (
		repo      *mockNotificationRepository
		directory *mockUserDirectory
		bus       *events.EventBus
		ctx       context.Context
	)

	ticketRef := events.TicketRef{
		ID:               "t-1",
		TicketCode:       "AB12CD34",
		Title:            "No charge",
		EquipmentService: "Defibrillator",
		ReportedByUserID: "inc-1",
		AssignedToUserID: "sup-1",
	}

	BeforeEach(func() {
		repo = &mockNotificationRepository{}
		directory = &mockUserDirectory{
			byRole: map[auth.Role][]*user.User{
				auth.RoleManager:        {{ID: "mgr-1"}},
				auth.RoleSupport:        {{ID: "sup-1"}},
				auth.RoleDepartmentHead: {{ID: "head-1"}},
			},
			byDepartment: make(map[string][]*user.User),
		}
		dispatcher := notification.NewDispatcher(repo, directory, slog.Default())
		bus = events.NewEventBus(slog.Default())
		dispatcher.Register(bus)
		ctx = context.Background()
	})

	Describe("ticket created", func() {
		It("notifies active managers, support and department heads", func() {
			err := bus.PublishSync(ctx, events.NewTicketCreated(ticketRef, "inc-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("mgr-1", "sup-1", "head-1"))
			Expect(repo.created[0].NotificationType).To(Equal(notification.TypeTicketCreated))
			Expect(*repo.created[0].RelatedEntityID).To(Equal("t-1"))
		})

		It("never notifies the actor even when they hold a broadcast role", func() {
			err := bus.PublishSync(ctx, events.NewTicketCreated(ticketRef, "mgr-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("sup-1", "head-1"))
		})

		It("delivers at most one row per recipient", func() {
			// same user active as both manager and support
			directory.byRole[auth.RoleSupport] = []*user.User{{ID: "mgr-1"}}

			err := bus.PublishSync(ctx, events.NewTicketCreated(ticketRef, "inc-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("mgr-1", "head-1"))
		})
	})

	Describe("ticket assigned", func() {
		It("notifies the assignee", func() {
			err := bus.PublishSync(ctx, events.NewTicketAssigned(ticketRef, "sup-1", "mgr-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("sup-1"))
			Expect(repo.created[0].NotificationType).To(Equal(notification.TypeTicketAssigned))
		})

		It("stays silent on self assignment", func() {
			err := bus.PublishSync(ctx, events.NewTicketAssigned(ticketRef, "sup-1", "sup-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.created).To(BeEmpty())
		})
	})

	Describe("ticket status changed", func() {
		It("notifies the reporter and the assignee on non terminal moves", func() {
			err := bus.PublishSync(ctx, events.NewTicketStatusChanged(ticketRef, "open", "in_progress", "mgr-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("inc-1", "sup-1"))
		})

		It("adds managers when the ticket reaches a terminal status", func() {
			err := bus.PublishSync(ctx, events.NewTicketStatusChanged(ticketRef, "in_progress", "resolved", "sup-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("inc-1", "mgr-1"))
		})
	})

	Describe("equipment status changed", func() {
		equipmentRef := events.EquipmentRef{
			ID:           "eq-1",
			AssetTag:     "BM-0001",
			DeviceName:   "Ventilator",
			DepartmentID: "d-1",
		}

		It("notifies department users plus the broadcast roles", func() {
			directory.byDepartment["d-1"] = []*user.User{{ID: "inc-1"}, {ID: "inc-2"}}

			err := bus.PublishSync(ctx, events.NewEquipmentStatusChanged(equipmentRef, "active", "out_of_service", "mgr-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("inc-1", "inc-2", "sup-1", "head-1"))
			Expect(repo.created[0].NotificationType).To(Equal(notification.TypeEquipmentStatusChanged))
		})
	})

	Describe("maintenance due", func() {
		It("sends an overdue notification when the date has passed", func() {
			err := bus.PublishSync(ctx, events.NewMaintenanceDue("sched-1", "preventive", "MRI Scanner", "sup-1", -3))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("sup-1"))
			Expect(repo.created[0].NotificationType).To(Equal(notification.TypeMaintenanceOverdue))
			Expect(repo.created[0].Message).To(ContainSubstring("3 day(s) overdue"))
		})

		It("sends a due notification inside the window", func() {
			err := bus.PublishSync(ctx, events.NewMaintenanceDue("sched-1", "calibration", "MRI Scanner", "sup-1", 5))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.created).To(HaveLen(1))
			Expect(repo.created[0].NotificationType).To(Equal(notification.TypeMaintenanceDue))
		})

		It("stays silent beyond the window", func() {
			err := bus.PublishSync(ctx, events.NewMaintenanceDue("sched-1", "calibration", "MRI Scanner", "sup-1", 12))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.created).To(BeEmpty())
		})

		It("stays silent when the schedule has no assignee", func() {
			err := bus.PublishSync(ctx, events.NewMaintenanceDue("sched-1", "preventive", "MRI Scanner", "", -3))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.created).To(BeEmpty())
		})
	})

	Describe("maintenance completed", func() {
		It("notifies managers except the actor", func() {
			directory.byRole[auth.RoleManager] = []*user.User{{ID: "mgr-1"}, {ID: "mgr-2"}}

			err := bus.PublishSync(ctx, events.NewMaintenanceCompleted("sched-1", "preventive", "MRI Scanner", "mgr-1"))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.recipientIDs()).To(ConsistOf("mgr-2"))
			Expect(repo.created[0].NotificationType).To(Equal(notification.TypeMaintenanceCompleted))
		})
	})
})
