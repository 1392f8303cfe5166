package maintenance

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

func TestMaintenance(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Maintenance Suite")
}

// Mock repository for testing
type mockScheduleRepository struct {
	schedules map[string]*Schedule
	due       []*Schedule
	nextID    int
}

func newMockScheduleRepository() *mockScheduleRepository {
	return &mockScheduleRepository{schedules: make(map[string]*Schedule), nextID: 1}
}

func (m *mockScheduleRepository) Create(s *Schedule) error {
	s.ID = "sched-" + string(rune('0'+m.nextID))
	m.nextID++
	m.schedules[s.ID] = s
	return nil
}

func (m *mockScheduleRepository) GetByID(id string) (*Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, internal.ErrScheduleNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockScheduleRepository) List(filter ListFilter) ([]*Schedule, int64, error) {
	items := make([]*Schedule, 0, len(m.schedules))
	for _, s := range m.schedules {
		items = append(items, s)
	}
	return items, int64(len(items)), nil
}

func (m *mockScheduleRepository) Save(s *Schedule) error {
	m.schedules[s.ID] = s
	return nil
}

func (m *mockScheduleRepository) Delete(id string) error {
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepository) ListDue(asOf time.Time, windowDays int) ([]*Schedule, error) {
	return m.due, nil
}

func (m *mockScheduleRepository) Stats(asOf time.Time, windowDays int) (*Stats, error) {
	return &Stats{}, nil
}

type stubEquipmentStore struct {
	equipment map[string]*equipment.Equipment
}

func (s *stubEquipmentStore) GetByID(id string) (*equipment.Equipment, error) {
	e, ok := s.equipment[id]
	if !ok {
		return nil, internal.ErrEquipmentNotFound
	}
	return e, nil
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) PublishSync(_ context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

var _ = Describe("Maintenance Service", func() {
	var (
		repo       *mockScheduleRepository
		equipStore *stubEquipmentStore
		publisher  *recordingPublisher
		service    *Service
		ctx        context.Context
		manager    *auth.User
		incharge   *auth.User
		clock      time.Time
	)

	BeforeEach(func() {
		repo = newMockScheduleRepository()
		equipStore = &stubEquipmentStore{equipment: map[string]*equipment.Equipment{
			"eq-1": {ID: "eq-1", AssetTag: "BM-0001", DeviceName: "MRI Scanner"},
		}}
		publisher = &recordingPublisher{}
		service = NewService(repo, equipStore, publisher, 7, slog.Default())
		clock = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
		service.now = func() time.Time { return clock }
		ctx = context.Background()

		manager = &auth.User{ID: "mgr-1", FullName: "Maya Manager", Role: auth.RoleManager}
		incharge = &auth.User{ID: "inc-1", FullName: "Nina Nurse", Role: auth.RoleDepartmentIncharge}
	})

	Describe("CreateSchedule", func() {
		It("defaults the next date to one cycle from now", func() {
			schedule, err := service.CreateSchedule(manager, CreateScheduleDTO{
				EquipmentID:     "eq-1",
				MaintenanceType: "preventive",
				FrequencyDays:   30,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(schedule.NextMaintenanceDate).To(Equal(clock.AddDate(0, 0, 30)))
			Expect(schedule.IsActive).To(BeTrue())
			Expect(schedule.LastMaintenanceDate).To(BeNil())
		})

		It("rejects a non positive frequency", func() {
			_, err := service.CreateSchedule(manager, CreateScheduleDTO{
				EquipmentID:     "eq-1",
				MaintenanceType: "preventive",
				FrequencyDays:   0,
			})

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Field).To(Equal("frequency_days"))
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidFrequency)))
		})

		It("forbids department incharge", func() {
			_, err := service.CreateSchedule(incharge, CreateScheduleDTO{
				EquipmentID:     "eq-1",
				MaintenanceType: "preventive",
				FrequencyDays:   30,
			})

			Expect(err).To(HaveOccurred())
			Expect(err.(*internal.AppError).Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects unknown equipment", func() {
			_, err := service.CreateSchedule(manager, CreateScheduleDTO{
				EquipmentID:     "eq-missing",
				MaintenanceType: "calibration",
				FrequencyDays:   90,
			})

			Expect(err).To(Equal(internal.ErrEquipmentNotFound))
		})
	})

	Describe("CompleteSchedule", func() {
		var scheduleID string

		BeforeEach(func() {
			s := &Schedule{
				EquipmentID:         "eq-1",
				MaintenanceType:     TypeCalibration,
				FrequencyDays:       90,
				NextMaintenanceDate: clock.AddDate(0, 0, -14),
				IsActive:            true,
			}
			Expect(repo.Create(s)).To(Succeed())
			scheduleID = s.ID
		})

		It("restarts the cycle from the completion moment, not the missed date", func() {
			schedule, err := service.CompleteSchedule(ctx, manager, scheduleID)

			Expect(err).NotTo(HaveOccurred())
			Expect(schedule.LastMaintenanceDate).NotTo(BeNil())
			Expect(*schedule.LastMaintenanceDate).To(Equal(clock))
			Expect(schedule.NextMaintenanceDate).To(Equal(clock.AddDate(0, 0, 90)))
		})

		It("produces a fresh next date on every completion", func() {
			first, err := service.CompleteSchedule(ctx, manager, scheduleID)
			Expect(err).NotTo(HaveOccurred())

			clock = clock.AddDate(0, 0, 45)
			second, err := service.CompleteSchedule(ctx, manager, scheduleID)
			Expect(err).NotTo(HaveOccurred())

			Expect(second.NextMaintenanceDate).To(Equal(clock.AddDate(0, 0, 90)))
			Expect(second.NextMaintenanceDate).NotTo(Equal(first.NextMaintenanceDate))
		})

		It("publishes a completion event with the device name", func() {
			_, err := service.CompleteSchedule(ctx, manager, scheduleID)
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.published).To(HaveLen(1))
			completed := publisher.published[0].(events.MaintenanceCompleted)
			Expect(completed.EventType()).To(Equal(events.TypeMaintenanceCompleted))
			Expect(completed.DeviceName).To(Equal("MRI Scanner"))
			Expect(completed.ActorID).To(Equal(manager.ID))
		})

		It("forbids department incharge", func() {
			_, err := service.CompleteSchedule(ctx, incharge, scheduleID)

			Expect(err).To(HaveOccurred())
			Expect(err.(*internal.AppError).Type).To(Equal(internal.ErrorTypeForbidden))
		})
	})

	Describe("ScanDue", func() {
		assignee := "sup-1"

		It("publishes overdue and due events with the day count", func() {
			repo.due = []*Schedule{
				{
					ID:                  "sched-over",
					EquipmentID:         "eq-1",
					MaintenanceType:     TypePreventive,
					FrequencyDays:       30,
					NextMaintenanceDate: clock.AddDate(0, 0, -3),
					AssignedToUserID:    &assignee,
					IsActive:            true,
				},
				{
					ID:                  "sched-soon",
					EquipmentID:         "eq-1",
					MaintenanceType:     TypeInspection,
					FrequencyDays:       30,
					NextMaintenanceDate: clock.AddDate(0, 0, 5),
					AssignedToUserID:    &assignee,
					IsActive:            true,
				},
			}

			published, err := service.ScanDue(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(published).To(Equal(2))
			Expect(publisher.published).To(HaveLen(2))

			overdue := publisher.published[0].(events.MaintenanceDue)
			Expect(overdue.ScheduleID).To(Equal("sched-over"))
			Expect(overdue.DaysUntilDue).To(BeNumerically("<", 0))

			soon := publisher.published[1].(events.MaintenanceDue)
			Expect(soon.ScheduleID).To(Equal("sched-soon"))
			Expect(soon.DaysUntilDue).To(Equal(5))
		})

		It("skips schedules beyond the due window", func() {
			repo.due = []*Schedule{
				{
					ID:                  "sched-far",
					EquipmentID:         "eq-1",
					MaintenanceType:     TypePreventive,
					FrequencyDays:       180,
					NextMaintenanceDate: clock.AddDate(0, 0, 60),
					IsActive:            true,
				},
			}

			published, err := service.ScanDue(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(published).To(BeZero())
			Expect(publisher.published).To(BeEmpty())
		})
	})

	Describe("daysUntil", func() {
		It("floors partial days", func() {
			now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

			Expect(daysUntil(now, now.Add(36*time.Hour))).To(Equal(1))
			Expect(daysUntil(now, now.Add(12*time.Hour))).To(Equal(0))
			Expect(daysUntil(now, now.Add(-1*time.Hour))).To(Equal(-1))
		})
	})
})
