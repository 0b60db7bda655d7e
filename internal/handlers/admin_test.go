package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/ctxkeys"
	"hospital-portal/internal/models"
	"hospital-portal/internal/session"
)

func newAdminRouter(t *testing.T, backend http.Handler, me *session.User) (http.Handler, *AdminHandler) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	api := apiclient.New(srv.URL+"/api/v1", 2*time.Second, apiclient.TokenFunc(func() string { return "admin-tok" }), zap.NewNop())
	h := NewAdminHandler(api, newChannel(t), zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), me)))
		})
	})
	r.Get("/users", h.ListUsers)
	r.Post("/users", h.CreateUser)
	r.Delete("/users/{id}", h.DeleteUser)
	r.Get("/departments/active", h.ActiveDepartments)
	r.Post("/departments", h.CreateDepartment)
	r.Put("/departments/{id}", h.UpdateDepartment)
	return r, h
}

var admin = &session.User{ID: 1, EmployeeID: "ADM001", Name: "Admin", Role: session.RoleAdministrator, DepartmentName: "Administration"}

func TestAdmin_ListUsersPassesPaging(t *testing.T) {
	var gotQuery string
	backend := chi.NewRouter()
	backend.Get("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		writeBackend(w, http.StatusOK, models.UserList{Users: []models.UserRecord{{ID: 3, EmployeeID: "NUR001"}}, Total: 1})
	})
	r, _ := newAdminRouter(t, backend, admin)

	rec := do(t, r, http.MethodGet, "/users?skip=20&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "limit=10&skip=20", gotQuery)

	var list models.UserList
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Total)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/users?limit=500", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodGet, "/users?skip=abc", nil).Code)
}

func TestAdmin_CreateUserValidatesLocally(t *testing.T) {
	called := false
	backend := chi.NewRouter()
	backend.Post("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		called = true
		writeBackend(w, http.StatusOK, map[string]any{"success": true})
	})
	r, _ := newAdminRouter(t, backend, admin)

	rec := do(t, r, http.MethodPost, "/users", map[string]any{
		"employee_id":   "x1",
		"name":          "A",
		"role":          "Wizard",
		"department_id": 0,
		"password":      "abc",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Details map[string]string `json:"details"`
	}
	decode(t, rec, &body)
	assert.Len(t, body.Details, 5)
	assert.False(t, called)
}

func TestAdmin_BackendValidationDetailsRelayed(t *testing.T) {
	backend := chi.NewRouter()
	backend.Post("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		writeBackend(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []any{"body", "employee_id"}, "msg": "already registered"}},
		})
	})
	r, _ := newAdminRouter(t, backend, admin)

	rec := do(t, r, http.MethodPost, "/users", map[string]any{
		"employee_id":   "NUR002",
		"name":          "Kamala Silva",
		"role":          "Nurse",
		"department_id": 6,
		"password":      "pass123",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"Validation errors: employee_id: already registered","details":{"employee_id":"already registered"}}`, rec.Body.String())
}

func TestAdmin_CannotDeleteSelf(t *testing.T) {
	r, _ := newAdminRouter(t, chi.NewRouter(), admin)

	rec := do(t, r, http.MethodDelete, "/users/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodDelete, "/users/zero", nil).Code)
}

func TestAdmin_Departments(t *testing.T) {
	var created models.DepartmentRequest
	backend := chi.NewRouter()
	backend.Get("/api/v1/departments/active", func(w http.ResponseWriter, r *http.Request) {
		writeBackend(w, http.StatusOK, []models.Department{{ID: 6, Name: "Ward1", Status: "Active"}})
	})
	backend.Post("/api/v1/departments/", func(w http.ResponseWriter, r *http.Request) {
		decodeJSON(r, &created)
		writeBackend(w, http.StatusOK, models.CreateDepartmentResponse{Success: true, Department: models.Department{ID: 9, Name: created.Name, Status: created.Status}})
	})
	backend.Put("/api/v1/departments/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeBackend(w, http.StatusNotFound, map[string]string{"detail": "Department not found"})
	})
	r, _ := newAdminRouter(t, backend, admin)

	var active struct {
		Data []models.Department `json:"data"`
	}
	decode(t, do(t, r, http.MethodGet, "/departments/active", nil), &active)
	require.Len(t, active.Data, 1)

	rec := do(t, r, http.MethodPost, "/departments", map[string]string{"name": "  Radiology "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Radiology", created.Name)
	assert.Equal(t, "Active", created.Status)

	rec = do(t, r, http.MethodPut, "/departments/42", map[string]string{"status": "Inactive"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Department not found"}`, rec.Body.String())

	assert.Equal(t, http.StatusUnprocessableEntity, do(t, r, http.MethodPut, "/departments/42", map[string]string{"status": "Closed"}).Code)
}
