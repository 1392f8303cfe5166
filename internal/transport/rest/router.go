package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/biocode-hms/equipment-management/internal/analytics"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/department"
	"github.com/biocode-hms/equipment-management/internal/equipment"
	"github.com/biocode-hms/equipment-management/internal/maintenance"
	"github.com/biocode-hms/equipment-management/internal/notification"
	"github.com/biocode-hms/equipment-management/internal/report"
	"github.com/biocode-hms/equipment-management/internal/supplier"
	"github.com/biocode-hms/equipment-management/internal/ticket"
	"github.com/biocode-hms/equipment-management/internal/transport/middleware"
	"github.com/biocode-hms/equipment-management/internal/transport/swagger"
	"github.com/biocode-hms/equipment-management/internal/user"
)

// Handlers bundles every domain handler the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Department   *department.Handler
	Supplier     *supplier.Handler
	Equipment    *equipment.Handler
	Ticket       *ticket.Handler
	Maintenance  *maintenance.Handler
	Notification *notification.Handler
	Analytics    *analytics.Handler
	Report       *report.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, corsOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(corsOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		// Protected routes that require authentication. Capability checks
		// live in the services, so a route here only needs a valid user.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.GetCurrentUser)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.ListUsers)
				ur.Get("/{id}", h.User.GetUser)
				ur.Patch("/{id}", h.User.UpdateUser)
				ur.Delete("/{id}", h.User.DeleteUser)
				ur.Get("/{id}/stats", h.User.GetUserTicketStats)
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Department.ListDepartments)
				dr.Post("/", h.Department.CreateDepartment)
				dr.Get("/{id}", h.Department.GetDepartment)
				dr.Delete("/{id}", h.Department.DeleteDepartment)
			})

			pr.Route("/suppliers", func(sr chi.Router) {
				sr.Get("/", h.Supplier.ListSuppliers)
				sr.Post("/", h.Supplier.CreateSupplier)
				sr.Get("/{id}", h.Supplier.GetSupplier)
			})

			pr.Route("/equipment", func(er chi.Router) {
				er.Get("/", h.Equipment.ListEquipment)
				er.Post("/", h.Equipment.CreateEquipment)
				er.Get("/{id}", h.Equipment.GetEquipment)
				er.Get("/{id}/logs", h.Equipment.GetEquipmentLogs)
				er.Patch("/{id}/status", h.Equipment.UpdateStatus)
				er.Delete("/{id}", h.Equipment.DeleteEquipment)
			})

			pr.Route("/tickets", func(tr chi.Router) {
				tr.Get("/", h.Ticket.ListTickets)
				tr.Post("/", h.Ticket.CreateTicket)
				tr.Get("/{id}", h.Ticket.GetTicket)
				tr.Patch("/{id}", h.Ticket.UpdateTicket)
				tr.Post("/{id}/service-report", h.Ticket.AddServiceReport)
				tr.Get("/{id}/service-report", h.Ticket.GetServiceReport)
			})

			pr.Route("/maintenance", func(mr chi.Router) {
				mr.Get("/", h.Maintenance.ListSchedules)
				mr.Post("/", h.Maintenance.CreateSchedule)
				mr.Get("/stats/summary", h.Maintenance.GetStats)
				mr.Get("/{id}", h.Maintenance.GetSchedule)
				mr.Patch("/{id}", h.Maintenance.UpdateSchedule)
				mr.Post("/{id}/complete", h.Maintenance.CompleteSchedule)
				mr.Delete("/{id}", h.Maintenance.DeleteSchedule)
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.ListNotifications)
				nr.Get("/unread-count", h.Notification.UnreadCount)
				nr.Patch("/{id}/read", h.Notification.MarkRead)
				nr.Patch("/mark-all-read", h.Notification.MarkAllRead)
				nr.Delete("/{id}", h.Notification.DeleteNotification)
			})

			pr.Route("/analytics", func(ar chi.Router) {
				ar.Get("/equipment/downtime", h.Analytics.EquipmentDowntime)
				ar.Get("/equipment/availability", h.Analytics.EquipmentAvailability)
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/equipment", h.Report.EquipmentReport)
				rr.Get("/tickets", h.Report.TicketReport)
				rr.Get("/maintenance", h.Report.MaintenanceReport)
			})
		})
	})
}
