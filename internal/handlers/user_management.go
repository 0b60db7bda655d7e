package handlers

import (
	"net/http"
	"strconv"

	"hospital-portal/internal/ctxkeys"
	"hospital-portal/internal/models"
)

const defaultPageSize = 100

// ListUsers returns a page of staff accounts (?skip=&limit=).
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", defaultPageSize)
	if skip < 0 || limit <= 0 || limit > defaultPageSize {
		JSONError(w, http.StatusBadRequest, "skip must be >= 0 and limit between 1 and 100")
		return
	}

	list, err := h.api.ListUsers(r.Context(), skip, limit)
	if err != nil {
		h.fail(w, "Failed to fetch users", err)
		return
	}
	if list.Users == nil {
		list.Users = []models.UserRecord{}
	}
	JSON(w, http.StatusOK, list)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.api.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to fetch user", err)
		return
	}
	JSON(w, http.StatusOK, u)
}

// CreateUser registers a staff account. Every rule the backend enforces is
// checked first so all problems come back in one response.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	u, err := h.api.CreateUser(r.Context(), req)
	if err != nil {
		h.fail(w, "Failed to create user", err)
		return
	}
	h.notes.Success("User created successfully")
	JSON(w, http.StatusCreated, u)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	u, err := h.api.UpdateUser(r.Context(), id, req)
	if err != nil {
		h.fail(w, "Failed to update user", err)
		return
	}
	h.notes.Success("User updated successfully")
	JSON(w, http.StatusOK, u)
}

func (h *AdminHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.PasswordUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	if err := h.api.UpdatePassword(r.Context(), id, req); err != nil {
		h.fail(w, "Failed to update password", err)
		return
	}
	h.notes.Success("Password updated successfully")
	JSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteUser removes a staff account. Administrators cannot delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if me := ctxkeys.UserFrom(r.Context()); me != nil && me.ID == id {
		JSONError(w, http.StatusBadRequest, "Cannot delete your own account")
		return
	}

	if err := h.api.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, "Failed to delete user", err)
		return
	}
	h.notes.Success("User deleted successfully")
	JSON(w, http.StatusOK, map[string]any{"success": true})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return -1
	}
	return n
}
