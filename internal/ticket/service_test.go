package ticket_test

import (
	"context"
	"log/slog"
	"regexp"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/department"
	"github.com/biocode-hms/equipment-management/internal/equipment"
	"github.com/biocode-hms/equipment-management/internal/ticket"
)

func TestTicket(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ticket Suite")
}

// Mock repository for testing
type mockTicketRepository struct {
	tickets        map[string]*ticket.Ticket
	responses      map[string]*ticket.TicketResponse
	incrementCalls map[string]int
	lastFilter     ticket.ListFilter
	codeExists     bool
	nextID         int
	createError    error
	saveRepairErr  error
}

func newMockTicketRepository() *mockTicketRepository {
	return &mockTicketRepository{
		tickets:        make(map[string]*ticket.Ticket),
		responses:      make(map[string]*ticket.TicketResponse),
		incrementCalls: make(map[string]int),
		nextID:         1,
	}
}

func (m *mockTicketRepository) Create(t *ticket.Ticket) error {
	if m.createError != nil {
		return m.createError
	}
	t.ID = "t-" + string(rune('0'+m.nextID))
	m.nextID++
	m.tickets[t.ID] = t
	return nil
}

func (m *mockTicketRepository) GetByID(id string) (*ticket.Ticket, error) {
	t, ok := m.tickets[id]
	if !ok {
		return nil, internal.ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *mockTicketRepository) ExistsByCode(code string) (bool, error) {
	return m.codeExists, nil
}

func (m *mockTicketRepository) List(filter ticket.ListFilter) ([]*ticket.Ticket, int64, error) {
	m.lastFilter = filter
	items := make([]*ticket.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		items = append(items, t)
	}
	return items, int64(len(items)), nil
}

func (m *mockTicketRepository) Save(t *ticket.Ticket) error {
	m.tickets[t.ID] = t
	return nil
}

func (m *mockTicketRepository) SaveWithRepairIncrement(t *ticket.Ticket, equipmentID string) error {
	if m.saveRepairErr != nil {
		return m.saveRepairErr
	}
	m.tickets[t.ID] = t
	m.incrementCalls[equipmentID]++
	return nil
}

func (m *mockTicketRepository) CreateResponse(tr *ticket.TicketResponse) error {
	tr.ID = "r-1"
	m.responses[tr.TicketID] = tr
	return nil
}

func (m *mockTicketRepository) GetResponseByTicketID(ticketID string) (*ticket.TicketResponse, error) {
	tr, ok := m.responses[ticketID]
	if !ok {
		return nil, internal.ErrServiceReportNotFound
	}
	return tr, nil
}

type mockEquipmentStore struct {
	equipment map[string]*equipment.Equipment
}

func newMockEquipmentStore() *mockEquipmentStore {
	return &mockEquipmentStore{equipment: make(map[string]*equipment.Equipment)}
}

func (m *mockEquipmentStore) GetByID(id string) (*equipment.Equipment, error) {
	e, ok := m.equipment[id]
	if !ok {
		return nil, internal.ErrEquipmentNotFound
	}
	return e, nil
}

type mockDepartmentStore struct {
	departments map[string]*department.Department
}

func (m *mockDepartmentStore) GetByID(id string) (*department.Department, error) {
	d, ok := m.departments[id]
	if !ok {
		return nil, internal.ErrDepartmentNotFound
	}
	return d, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) PublishSync(_ context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

func (m *mockPublisher) byType(eventType string) []events.Event {
	var out []events.Event
	for _, e := range m.published {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

var _ = Describe("Ticket Service", func() {
	var (
		repo       *mockTicketRepository
		equipStore *mockEquipmentStore
		deptStore  *mockDepartmentStore
		publisher  *mockPublisher
		service    *ticket.Service
		ctx        context.Context
		manager    *auth.User
		support    *auth.User
		incharge   *auth.User
	)

	BeforeEach(func() {
		repo = newMockTicketRepository()
		equipStore = newMockEquipmentStore()
		deptStore = &mockDepartmentStore{departments: make(map[string]*department.Department)}
		publisher = &mockPublisher{}
		service = ticket.NewService(repo, equipStore, deptStore, publisher, slog.Default())
		ctx = context.Background()

		manager = &auth.User{ID: "mgr-1", FullName: "Maya Manager", Role: auth.RoleManager}
		support = &auth.User{ID: "sup-1", FullName: "Sam Support", Role: auth.RoleSupport}
		incharge = &auth.User{ID: "inc-1", FullName: "Nina Nurse", Role: auth.RoleDepartmentIncharge}
	})

	Describe("CreateTicket", func() {
		It("generates an 8 character uppercase alphanumeric code", func() {
			t, err := service.CreateTicket(ctx, incharge, ticket.CreateTicketDTO{
				Title:            "Monitor flickering",
				EquipmentService: strPtr("Patient Monitor"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(t.TicketCode).To(MatchRegexp(`^[A-Z0-9]{8}$`))
			Expect(t.Status).To(Equal(ticket.StatusOpen))
			Expect(t.Priority).To(Equal(ticket.PriorityMedium))
			Expect(t.ReportedByUserID).To(Equal(incharge.ID))
		})

		It("uses Unknown as the source department when the equipment has none", func() {
			equipStore.equipment["eq-1"] = &equipment.Equipment{
				ID:         "eq-1",
				AssetTag:   "BM-0001",
				DeviceName: "Infusion Pump",
			}

			t, err := service.CreateTicket(ctx, incharge, ticket.CreateTicketDTO{
				Title:       "Pump alarm",
				EquipmentID: strPtr("eq-1"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(t.FromDepartment).To(Equal("Unknown"))
			Expect(t.EquipmentService).To(Equal("Infusion Pump"))
		})

		It("copies the equipment department name when present", func() {
			deptStore.departments["d-1"] = &department.Department{ID: "d-1", Name: "Intensive Care Unit"}
			equipStore.equipment["eq-1"] = &equipment.Equipment{
				ID:           "eq-1",
				AssetTag:     "BM-0001",
				DeviceName:   "Ventilator",
				DepartmentID: strPtr("d-1"),
			}

			t, err := service.CreateTicket(ctx, incharge, ticket.CreateTicketDTO{
				Title:       "Ventilator error code",
				EquipmentID: strPtr("eq-1"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(t.FromDepartment).To(Equal("Intensive Care Unit"))
		})

		It("publishes a ticket created event", func() {
			_, err := service.CreateTicket(ctx, incharge, ticket.CreateTicketDTO{
				Title:            "Broken probe",
				EquipmentService: strPtr("Ultrasound"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.byType(events.TypeTicketCreated)).To(HaveLen(1))
		})

		It("gives up when no unique code can be allocated", func() {
			repo.codeExists = true

			_, err := service.CreateTicket(ctx, incharge, ticket.CreateTicketDTO{
				Title:            "Broken probe",
				EquipmentService: strPtr("Ultrasound"),
			})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})
	})

	Describe("UpdateTicket status transitions", func() {
		var ticketID string

		BeforeEach(func() {
			equipStore.equipment["eq-1"] = &equipment.Equipment{ID: "eq-1", AssetTag: "BM-0001", DeviceName: "Defibrillator"}
			t := &ticket.Ticket{
				Title:            "No charge",
				Status:           ticket.StatusOpen,
				Priority:         ticket.PriorityHigh,
				FromDepartment:   "Unknown",
				EquipmentService: "Defibrillator",
				ReportedBy:       "Nina Nurse",
				ReportedByUserID: incharge.ID,
				AssignedToUserID: strPtr(support.ID),
				EquipmentID:      strPtr("eq-1"),
				TicketCode:       "AB12CD34",
			}
			Expect(repo.Create(t)).To(Succeed())
			ticketID = t.ID
		})

		It("increments the repair count exactly once on first resolution", func() {
			updated, err := service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{
				Status: strPtr("resolved"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(ticket.StatusResolved))
			Expect(updated.CompletedOn).NotTo(BeNil())
			Expect(repo.incrementCalls["eq-1"]).To(Equal(1))
		})

		It("does not re-increment when churning inside the terminal set", func() {
			_, err := service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{Status: strPtr("resolved")})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.UpdateTicket(ctx, manager, ticketID, ticket.UpdateTicketDTO{Status: strPtr("closed")})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.incrementCalls["eq-1"]).To(Equal(1))
		})

		It("re-increments after leaving and re-entering the terminal set", func() {
			_, err := service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{Status: strPtr("resolved")})
			Expect(err).NotTo(HaveOccurred())

			reopened, err := service.UpdateTicket(ctx, manager, ticketID, ticket.UpdateTicketDTO{Status: strPtr("open")})
			Expect(err).NotTo(HaveOccurred())
			Expect(reopened.CompletedOn).To(BeNil())

			_, err = service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{Status: strPtr("resolved")})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.incrementCalls["eq-1"]).To(Equal(2))
		})

		It("fails the whole update when the repair count cannot be bumped", func() {
			repo.saveRepairErr = internal.NewInternalError("db connection lost")

			_, err := service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{
				Status: strPtr("resolved"),
			})

			Expect(err).To(HaveOccurred())

			stored, _ := repo.GetByID(ticketID)
			Expect(stored.Status).To(Equal(ticket.StatusOpen))
			Expect(repo.incrementCalls["eq-1"]).To(BeZero())
			Expect(publisher.byType(events.TypeTicketStatusChanged)).To(BeEmpty())
		})

		It("lets a manager close an open ticket directly", func() {
			updated, err := service.UpdateTicket(ctx, manager, ticketID, ticket.UpdateTicketDTO{
				Status: strPtr("closed"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(ticket.StatusClosed))
			Expect(updated.CompletedOn).NotTo(BeNil())
			Expect(repo.incrementCalls["eq-1"]).To(Equal(1))
		})

		It("forbids department incharge from resolving and leaves the ticket untouched", func() {
			_, err := service.UpdateTicket(ctx, incharge, ticketID, ticket.UpdateTicketDTO{
				Status: strPtr("resolved"),
			})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))

			stored, _ := repo.GetByID(ticketID)
			Expect(stored.Status).To(Equal(ticket.StatusOpen))
			Expect(repo.incrementCalls["eq-1"]).To(BeZero())
		})

		It("forbids support from closing", func() {
			_, err := service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{
				Status: strPtr("closed"),
			})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))

			stored, _ := repo.GetByID(ticketID)
			Expect(stored.Status).To(Equal(ticket.StatusOpen))
		})

		It("publishes a status change event on transitions", func() {
			_, err := service.UpdateTicket(ctx, support, ticketID, ticket.UpdateTicketDTO{Status: strPtr("in_progress")})
			Expect(err).NotTo(HaveOccurred())

			statusEvents := publisher.byType(events.TypeTicketStatusChanged)
			Expect(statusEvents).To(HaveLen(1))
			changed := statusEvents[0].(events.TicketStatusChanged)
			Expect(changed.OldStatus).To(Equal("open"))
			Expect(changed.NewStatus).To(Equal("in_progress"))
		})
	})

	Describe("UpdateTicket assignment", func() {
		var ticketID string

		BeforeEach(func() {
			t := &ticket.Ticket{
				Title:            "Calibration drift",
				Status:           ticket.StatusOpen,
				Priority:         ticket.PriorityMedium,
				FromDepartment:   "Unknown",
				EquipmentService: "Analyzer",
				ReportedBy:       "Nina Nurse",
				ReportedByUserID: incharge.ID,
				TicketCode:       "ZZ99YY88",
			}
			Expect(repo.Create(t)).To(Succeed())
			ticketID = t.ID
		})

		It("requires the assign capability", func() {
			_, err := service.UpdateTicket(ctx, incharge, ticketID, ticket.UpdateTicketDTO{
				AssignedToUserID: strPtr(support.ID),
			})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("assigns and publishes an assignment event", func() {
			updated, err := service.UpdateTicket(ctx, manager, ticketID, ticket.UpdateTicketDTO{
				AssignedToUserID: strPtr(support.ID),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.AssignedToUserID).To(Equal(support.ID))

			assigned := publisher.byType(events.TypeTicketAssigned)
			Expect(assigned).To(HaveLen(1))
			Expect(assigned[0].(events.TicketAssigned).AssigneeID).To(Equal(support.ID))
		})
	})

	Describe("ListTickets visibility", func() {
		It("narrows support users to tickets assigned to them", func() {
			_, _, err := service.ListTickets(support, ticket.ListFilter{})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.AssignedToUserID).NotTo(BeNil())
			Expect(*repo.lastFilter.AssignedToUserID).To(Equal(support.ID))
			Expect(repo.lastFilter.ReportedByUserID).To(BeNil())
		})

		It("narrows department incharge to tickets they reported", func() {
			_, _, err := service.ListTickets(incharge, ticket.ListFilter{})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.ReportedByUserID).NotTo(BeNil())
			Expect(*repo.lastFilter.ReportedByUserID).To(Equal(incharge.ID))
		})

		It("does not narrow managers", func() {
			_, _, err := service.ListTickets(manager, ticket.ListFilter{})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastFilter.ReportedByUserID).To(BeNil())
			Expect(repo.lastFilter.AssignedToUserID).To(BeNil())
		})
	})

	Describe("AddServiceReport", func() {
		var ticketID string

		BeforeEach(func() {
			t := &ticket.Ticket{
				Title:            "Sensor fault",
				Status:           ticket.StatusInProgress,
				FromDepartment:   "Unknown",
				EquipmentService: "Oximeter",
				ReportedBy:       "Nina Nurse",
				ReportedByUserID: incharge.ID,
				TicketCode:       "QQ11WW22",
			}
			Expect(repo.Create(t)).To(Succeed())
			ticketID = t.ID
		})

		It("files one report and defaults the engineer to the actor", func() {
			tr, err := service.AddServiceReport(support, ticketID, ticket.ServiceReportDTO{
				ActionTaken: "Replaced sensor cable",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Engineer).To(Equal(support.FullName))
		})

		It("rejects a second report", func() {
			_, err := service.AddServiceReport(support, ticketID, ticket.ServiceReportDTO{ActionTaken: "First fix"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AddServiceReport(support, ticketID, ticket.ServiceReportDTO{ActionTaken: "Second fix"})
			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("forbids department incharge", func() {
			_, err := service.AddServiceReport(incharge, ticketID, ticket.ServiceReportDTO{ActionTaken: "Fix"})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("names the report, not the ticket, when no report exists", func() {
			_, err := service.GetServiceReport(manager, ticketID)

			Expect(err).To(Equal(internal.ErrServiceReportNotFound))
		})
	})
})

var _ = Describe("GenerateTicketCode", func() {
	It("always yields 8 uppercase alphanumerics", func() {
		pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
		for i := 0; i < 50; i++ {
			Expect(pattern.MatchString(ticket.GenerateTicketCode())).To(BeTrue())
		}
	})
})

func strPtr(s string) *string {
	return &s
}
