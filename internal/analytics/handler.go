package analytics

import (
	"net/http"
	"strconv"

	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/transport"
)

// ServiceAPI defines the service methods the handler depends on
type ServiceAPI interface {
	EquipmentDowntime(actor *auth.User, limit int) ([]*DowntimeEntry, error)
	EquipmentAvailability(actor *auth.User) (*AvailabilityReport, error)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) EquipmentDowntime(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.EquipmentDowntime(actor, limit)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entries)
}

func (h *Handler) EquipmentAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	report, err := h.service.EquipmentAvailability(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, report)
}
