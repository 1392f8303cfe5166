package auth_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("Role capabilities", func() {
	Describe("HasCapability", func() {
		It("grants equipment creation to admins, managers and department heads", func() {
			Expect(auth.HasCapability(auth.RoleSuperAdmin, auth.CapabilityCreateEquipment)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleManager, auth.CapabilityCreateEquipment)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleDepartmentHead, auth.CapabilityCreateEquipment)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleSupport, auth.CapabilityCreateEquipment)).To(BeFalse())
		})

		It("restricts equipment deletion to super admins", func() {
			Expect(auth.HasCapability(auth.RoleSuperAdmin, auth.CapabilityDeleteEquipment)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleManager, auth.CapabilityDeleteEquipment)).To(BeFalse())
			Expect(auth.HasCapability(auth.RoleSupport, auth.CapabilityDeleteEquipment)).To(BeFalse())
		})

		It("lets support resolve tickets but not close them", func() {
			Expect(auth.HasCapability(auth.RoleSupport, auth.CapabilityResolveTicket)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleSupport, auth.CapabilityCloseTicket)).To(BeFalse())
		})

		It("lets managers close and assign tickets", func() {
			Expect(auth.HasCapability(auth.RoleManager, auth.CapabilityCloseTicket)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleManager, auth.CapabilityAssignTicket)).To(BeTrue())
			Expect(auth.HasCapability(auth.RoleDepartmentHead, auth.CapabilityCloseTicket)).To(BeFalse())
		})

		It("lets every role create tickets", func() {
			for _, role := range []auth.Role{
				auth.RoleSuperAdmin, auth.RoleManager, auth.RoleDepartmentHead,
				auth.RoleSupport, auth.RoleDepartmentIncharge,
			} {
				Expect(auth.HasCapability(role, auth.CapabilityCreateTicket)).To(BeTrue(), "role %s", role)
			}
		})

		It("denies department incharge everything except ticket creation", func() {
			capabilities := []auth.Capability{
				auth.CapabilityCreateEquipment,
				auth.CapabilityUpdateEquipmentStatus,
				auth.CapabilityDeleteEquipment,
				auth.CapabilityViewEquipment,
				auth.CapabilityResolveTicket,
				auth.CapabilityCloseTicket,
				auth.CapabilityAssignTicket,
				auth.CapabilityViewAllTickets,
				auth.CapabilityManageUsers,
				auth.CapabilityManageDepartments,
				auth.CapabilityViewDepartments,
				auth.CapabilityManageSuppliers,
				auth.CapabilityManageMaintenance,
				auth.CapabilityExportReports,
				auth.CapabilityViewAnalytics,
			}
			for _, capability := range capabilities {
				Expect(auth.HasCapability(auth.RoleDepartmentIncharge, capability)).To(BeFalse(), "capability %s", capability)
			}
		})

		It("rejects unknown roles", func() {
			Expect(auth.HasCapability(auth.Role("intern"), auth.CapabilityCreateTicket)).To(BeFalse())
		})
	})

	Describe("RequireCapability", func() {
		It("returns nil when the role holds the capability", func() {
			user := &auth.User{ID: "u1", Role: auth.RoleManager}
			Expect(auth.RequireCapability(user, auth.CapabilityCloseTicket)).To(Succeed())
		})

		It("names the missing capability in the error", func() {
			user := &auth.User{ID: "u1", Role: auth.RoleSupport}
			err := auth.RequireCapability(user, auth.CapabilityCloseTicket)

			var appErr *internal.AppError
			Expect(err).To(HaveOccurred())
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			appErr = err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
			Expect(appErr.Details).To(HaveKeyWithValue("required_capability", string(auth.CapabilityCloseTicket)))
		})

		It("returns unauthorized when no user is present", func() {
			err := auth.RequireCapability(nil, auth.CapabilityCreateTicket)

			Expect(err).To(HaveOccurred())
			appErr := err.(*internal.AppError)
			Expect(appErr.Type).To(Equal(internal.ErrorTypeUnauthorized))
		})
	})
})
