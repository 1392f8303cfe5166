package department

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/biocode-hms/equipment-management/internal"
	"github.com/biocode-hms/equipment-management/internal/auth"
	"github.com/biocode-hms/equipment-management/internal/transport"
)

// ServiceAPI defines the service methods the handler depends on
type ServiceAPI interface {
	ListDepartments(actor *auth.User) ([]*Department, error)
	GetDepartment(actor *auth.User, id string) (*Department, error)
	CreateDepartment(actor *auth.User, dto CreateDepartmentDTO) (*Department, error)
	DeleteDepartment(actor *auth.User, id string) error
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{BaseHandler: base, service: service}
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	departments, err := h.service.ListDepartments(actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, departments)
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	department, err := h.service.GetDepartment(actor, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, department)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())

	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.HandleServiceError(w, internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed))
		return
	}

	department, err := h.service.CreateDepartment(actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, department)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteDepartment(actor, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "department deleted"})
}
