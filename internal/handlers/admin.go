package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
	"hospital-portal/internal/notify"
)

// AdminHandler is the administrator console: departments and staff accounts.
// Every call is relayed to the backend, which enforces the Administrator role
// again.
type AdminHandler struct {
	api    *apiclient.Client
	notes  *notify.Channel
	logger *zap.Logger
}

func NewAdminHandler(api *apiclient.Client, notes *notify.Channel, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{api: api, notes: notes, logger: logger}
}

// ── Departments ──────────────────────────────────────────────

// ActiveDepartments lists departments offered in the user form.
func (h *AdminHandler) ActiveDepartments(w http.ResponseWriter, r *http.Request) {
	deps, err := h.api.ActiveDepartments(r.Context())
	if err != nil {
		h.fail(w, "Failed to fetch departments", err)
		return
	}
	if deps == nil {
		deps = []models.Department{}
	}
	JSON(w, http.StatusOK, map[string]any{"data": deps})
}

func (h *AdminHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	list, err := h.api.ListDepartments(r.Context())
	if err != nil {
		h.fail(w, "Failed to fetch departments", err)
		return
	}
	JSON(w, http.StatusOK, list)
}

func (h *AdminHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req models.DepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(true); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	dep, err := h.api.CreateDepartment(r.Context(), req)
	if err != nil {
		h.fail(w, "Failed to create department", err)
		return
	}
	h.notes.Success("Department created successfully")
	JSON(w, http.StatusCreated, dep)
}

func (h *AdminHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.DepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(false); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	dep, err := h.api.UpdateDepartment(r.Context(), id, req)
	if err != nil {
		h.fail(w, "Failed to update department", err)
		return
	}
	h.notes.Success("Department updated successfully")
	JSON(w, http.StatusOK, dep)
}

func (h *AdminHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.api.DeleteDepartment(r.Context(), id); err != nil {
		h.fail(w, "Failed to delete department", err)
		return
	}
	h.notes.Success("Department deleted successfully")
	JSON(w, http.StatusOK, map[string]any{"success": true})
}

// fail logs, raises a notification (except for 401, which ends the session)
// and relays the error.
func (h *AdminHandler) fail(w http.ResponseWriter, action string, err error) {
	if !apiclient.IsUnauthorized(err) {
		h.logger.Error(action, zap.Error(err))
		msg := err.Error()
		if apiclient.IsNetwork(err) {
			msg = apiclient.NetworkMessage
		}
		h.notes.Error(action + ": " + msg)
	}
	backendError(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		JSONError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}
