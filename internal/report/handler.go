package report

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/transport"
)

// ServiceAPI defines the service methods the handler depends on
type ServiceAPI interface {
	EquipmentReport(actor *auth.User) (*excelize.File, error)
	TicketReport(actor *auth.User) (*excelize.File, error)
	MaintenanceReport(actor *auth.User) (*excelize.File, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) EquipmentReport(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	f, err := h.service.EquipmentReport(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeWorkbook(w, f, "equipment")
}

func (h *Handler) TicketReport(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	f, err := h.service.TicketReport(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeWorkbook(w, f, "tickets")
}

func (h *Handler) MaintenanceReport(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	f, err := h.service.MaintenanceReport(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.writeWorkbook(w, f, "maintenance")
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, f *excelize.File, name string) {
	filename := fmt.Sprintf("%s-report-%s.xlsx", name, time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := f.Write(w); err != nil {
		h.Logger.Error("failed to stream report", "error", err, "report", name)
	}
}
