package postgres_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/department"
	departmentPostgres "github.com/biocode-hms/equipment-management/internal/department/postgres"
)

func TestDepartmentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Department Postgres Suite")
}

// SQLiteDepartment is a SQLite-compatible model for testing
type SQLiteDepartment struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Code        *string   `gorm:"column:code;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteDepartment) TableName() string {
	return "departments"
}

var _ = Describe("Department PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo *departmentPostgres.DepartmentRepository
	)

	BeforeEach(func() {
		var err error
		// Use SQLite in-memory database for testing
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteDepartment{})
		Expect(err).NotTo(HaveOccurred())

		repo = departmentPostgres.NewDepartmentRepository(db)
	})

	Describe("Create", func() {
		It("creates a department and assigns an id", func() {
			d := &department.Department{Name: "Intensive Care Unit"}

			err := repo.Create(d)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.ID).NotTo(BeEmpty())
			Expect(d.CreatedAt).NotTo(BeZero())
		})

		It("maps a duplicate name to a conflict", func() {
			Expect(repo.Create(&department.Department{Name: "Radiology"})).To(Succeed())

			err := repo.Create(&department.Department{Name: "Radiology"})
			Expect(err).To(HaveOccurred())

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateDepartment))
		})

		It("keeps a caller supplied id", func() {
			d := &department.Department{ID: "dept-icu", Name: "Intensive Care Unit"}

			Expect(repo.Create(d)).To(Succeed())
			Expect(d.ID).To(Equal("dept-icu"))
		})
	})

	Describe("GetByID", func() {
		It("retrieves a stored department", func() {
			d := &department.Department{Name: "Emergency Room"}
			Expect(repo.Create(d)).To(Succeed())

			result, err := repo.GetByID(d.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Name).To(Equal("Emergency Room"))
		})

		It("returns not found for an unknown id", func() {
			_, err := repo.GetByID("missing")
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})

	Describe("GetByName", func() {
		It("is case sensitive", func() {
			Expect(repo.Create(&department.Department{Name: "Radiology"})).To(Succeed())

			_, err := repo.GetByName("RADIOLOGY")
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))

			result, err := repo.GetByName("Radiology")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Name).To(Equal("Radiology"))
		})
	})

	Describe("List", func() {
		It("orders departments by name", func() {
			for _, name := range []string{"Radiology", "Emergency Room", "Intensive Care Unit"} {
				Expect(repo.Create(&department.Department{Name: name})).To(Succeed())
			}

			departments, err := repo.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(departments).To(HaveLen(3))
			Expect(departments[0].Name).To(Equal("Emergency Room"))
			Expect(departments[1].Name).To(Equal("Intensive Care Unit"))
			Expect(departments[2].Name).To(Equal("Radiology"))
		})
	})

	Describe("Delete", func() {
		It("removes the row", func() {
			d := &department.Department{Name: "Radiology"}
			Expect(repo.Create(d)).To(Succeed())

			Expect(repo.Delete(d.ID)).To(Succeed())

			_, err := repo.GetByID(d.ID)
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("returns not found for an unknown id", func() {
			err := repo.Delete("missing")
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})
	})
})
