package equipment_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/core/events"
	"github.com/biocode-hms/equipment-management/internal/equipment"
)

func TestEquipment(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Equipment Suite")
}

// Mock repository for testing
type mockEquipmentRepository struct {
	equipment map[string]*equipment.Equipment
	logs      []*equipment.EquipmentLog
	nextID    int
}

func newMockEquipmentRepository() *mockEquipmentRepository {
	return &mockEquipmentRepository{equipment: make(map[string]*equipment.Equipment), nextID: 1}
}

func (m *mockEquipmentRepository) Create(e *equipment.Equipment) error {
	e.ID = "eq-" + string(rune('0'+m.nextID))
	m.nextID++
	m.equipment[e.ID] = e
	return nil
}

func (m *mockEquipmentRepository) GetByID(id string) (*equipment.Equipment, error) {
	e, ok := m.equipment[id]
	if !ok {
		return nil, internal.ErrEquipmentNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *mockEquipmentRepository) GetByAssetTag(tag string) (*equipment.Equipment, error) {
	for _, e := range m.equipment {
		if e.AssetTag == tag {
			return e, nil
		}
	}
	return nil, internal.ErrEquipmentNotFound
}

func (m *mockEquipmentRepository) List(filter equipment.ListFilter) ([]*equipment.Equipment, int64, error) {
	items := make([]*equipment.Equipment, 0, len(m.equipment))
	for _, e := range m.equipment {
		items = append(items, e)
	}
	return items, int64(len(items)), nil
}

func (m *mockEquipmentRepository) Save(e *equipment.Equipment) error {
	m.equipment[e.ID] = e
	return nil
}

func (m *mockEquipmentRepository) Delete(id string) error {
	delete(m.equipment, id)
	return nil
}

func (m *mockEquipmentRepository) AddLog(log *equipment.EquipmentLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockEquipmentRepository) ListLogs(equipmentID string) ([]*equipment.EquipmentLog, error) {
	var out []*equipment.EquipmentLog
	for _, log := range m.logs {
		if log.EquipmentID == equipmentID {
			out = append(out, log)
		}
	}
	return out, nil
}

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) PublishSync(_ context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

var _ = Describe("Equipment Service", func() {
	var (
		repo       *mockEquipmentRepository
		publisher  *capturingPublisher
		service    *equipment.Service
		ctx        context.Context
		admin      *auth.User
		manager    *auth.User
		support    *auth.User
	)

	BeforeEach(func() {
		repo = newMockEquipmentRepository()
		publisher = &capturingPublisher{}
		service = equipment.NewService(repo, publisher, slog.Default())
		ctx = context.Background()

		admin = &auth.User{ID: "adm-1", FullName: "Ada Admin", Role: auth.RoleSuperAdmin}
		manager = &auth.User{ID: "mgr-1", FullName: "Maya Manager", Role: auth.RoleManager}
		support = &auth.User{ID: "sup-1", FullName: "Sam Support", Role: auth.RoleSupport}
	})

	Describe("CreateEquipment", func() {
		It("registers an active asset with a clean downtime clock", func() {
			e, err := service.CreateEquipment(manager, equipment.CreateEquipmentDTO{
				AssetTag:   "BM-0001",
				DeviceName: "Infusion Pump",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(equipment.StatusActive))
			Expect(e.Criticality).To(Equal(equipment.CriticalityMedium))
			Expect(e.IsCurrentlyDown).To(BeFalse())
			Expect(e.LastDowntimeStart).To(BeNil())
		})

		It("starts the downtime clock for an asset registered as down", func() {
			status := "out_of_service"
			e, err := service.CreateEquipment(manager, equipment.CreateEquipmentDTO{
				AssetTag:   "BM-0002",
				DeviceName: "Ventilator",
				Status:     &status,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.IsCurrentlyDown).To(BeTrue())
			Expect(e.LastDowntimeStart).NotTo(BeNil())
		})

		It("rejects a duplicate asset tag", func() {
			_, err := service.CreateEquipment(manager, equipment.CreateEquipmentDTO{
				AssetTag:   "BM-0001",
				DeviceName: "Infusion Pump",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateEquipment(manager, equipment.CreateEquipmentDTO{
				AssetTag:   "BM-0001",
				DeviceName: "Another Pump",
			})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("forbids support", func() {
			_, err := service.CreateEquipment(support, equipment.CreateEquipmentDTO{
				AssetTag:   "BM-0003",
				DeviceName: "Monitor",
			})

			Expect(err).To(HaveOccurred())
			Expect(err.(*internal.AppError).Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("UpdateStatus downtime accounting", func() {
		var id string

		BeforeEach(func() {
			e := &equipment.Equipment{
				AssetTag:   "BM-0010",
				DeviceName: "Dialysis Machine",
				Status:     equipment.StatusActive,
			}
			Expect(repo.Create(e)).To(Succeed())
			id = e.ID
		})

		It("starts the clock when the asset goes down", func() {
			e, err := service.UpdateStatus(ctx, manager, id, equipment.UpdateStatusDTO{Status: "out_of_service"})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.IsCurrentlyDown).To(BeTrue())
			Expect(e.LastDowntimeStart).NotTo(BeNil())
			Expect(e.TotalDowntimeMinutes).To(BeZero())
		})

		It("folds elapsed minutes into the total on recovery", func() {
			start := time.Now().UTC().Add(-90 * time.Minute)
			stored := repo.equipment[id]
			stored.Status = equipment.StatusOutOfService
			stored.IsCurrentlyDown = true
			stored.LastDowntimeStart = &start

			e, err := service.UpdateStatus(ctx, manager, id, equipment.UpdateStatusDTO{Status: "active"})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.IsCurrentlyDown).To(BeFalse())
			Expect(e.LastDowntimeStart).To(BeNil())
			Expect(e.TotalDowntimeMinutes).To(BeNumerically(">=", 89))
			Expect(e.TotalDowntimeMinutes).To(BeNumerically("<=", 91))
		})

		It("floors a clock skewed into the future at zero", func() {
			start := time.Now().UTC().Add(30 * time.Minute)
			stored := repo.equipment[id]
			stored.Status = equipment.StatusOutOfService
			stored.IsCurrentlyDown = true
			stored.LastDowntimeStart = &start

			e, err := service.UpdateStatus(ctx, manager, id, equipment.UpdateStatusDTO{Status: "active"})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.TotalDowntimeMinutes).To(BeZero())
		})

		It("retires a down asset without accumulating", func() {
			start := time.Now().UTC().Add(-90 * time.Minute)
			stored := repo.equipment[id]
			stored.Status = equipment.StatusOutOfService
			stored.IsCurrentlyDown = true
			stored.LastDowntimeStart = &start

			e, err := service.UpdateStatus(ctx, manager, id, equipment.UpdateStatusDTO{Status: "retired"})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.IsCurrentlyDown).To(BeFalse())
			Expect(e.LastDowntimeStart).To(BeNil())
			Expect(e.TotalDowntimeMinutes).To(BeZero())
		})

		It("treats a same-status update as a no-op", func() {
			e, err := service.UpdateStatus(ctx, manager, id, equipment.UpdateStatusDTO{Status: "active"})

			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(equipment.StatusActive))
			Expect(repo.logs).To(BeEmpty())
			Expect(publisher.published).To(BeEmpty())
		})

		It("records a history log and publishes an event on a transition", func() {
			_, err := service.UpdateStatus(ctx, manager, id, equipment.UpdateStatusDTO{Status: "out_of_service"})

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.logs).To(HaveLen(1))
			Expect(repo.logs[0].LogType).To(Equal(equipment.LogTypeIncident))
			Expect(*repo.logs[0].PerformedBy).To(Equal(manager.FullName))

			Expect(publisher.published).To(HaveLen(1))
			changed := publisher.published[0].(events.EquipmentStatusChanged)
			Expect(changed.NewStatus).To(Equal("out_of_service"))
			Expect(changed.ActorID).To(Equal(manager.ID))
		})
	})

	Describe("DeleteEquipment", func() {
		var id string

		BeforeEach(func() {
			e := &equipment.Equipment{AssetTag: "BM-0020", DeviceName: "X-Ray", Status: equipment.StatusActive}
			Expect(repo.Create(e)).To(Succeed())
			id = e.ID
		})

		It("allows super admins", func() {
			Expect(service.DeleteEquipment(admin, id)).To(Succeed())
			_, err := repo.GetByID(id)
			Expect(err).To(Equal(internal.ErrEquipmentNotFound))
		})

		It("forbids managers and support", func() {
			for _, actor := range []*auth.User{manager, support} {
				err := service.DeleteEquipment(actor, id)
				Expect(err).To(HaveOccurred())
				Expect(err.(*internal.AppError).Type).To(Equal(internal.ErrorTypeForbidden), "role %s", actor.Role)
			}
		})
	})
})
