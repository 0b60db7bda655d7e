package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hospital-portal/internal/models"
	"hospital-portal/internal/report"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, r http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/v1", 2*time.Second, TokenFunc(func() string { return token }), zap.NewNop())
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]any{"id": 3, "employee_id": "NUR001", "name": "Ann", "role": "Nurse", "department_id": 6},
		})
	})

	c := newTestClient(t, r, "tok-123")
	me, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "NUR001", me.EmployeeID)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var present bool
	r := chi.NewRouter()
	r.Get("/api/v1/departments/active", func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, []models.Department{{ID: 1, Name: "Ward1", Status: "Active"}})
	})

	c := newTestClient(t, r, "")
	deps, err := c.ActiveDepartments(context.Background())
	require.NoError(t, err)
	assert.False(t, present)
	assert.Len(t, deps, 1)
}

func TestClient_UnauthorizedFiresObserversOncePerResponse(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
	})

	c := newTestClient(t, r, "expired")
	var first, second int32
	c.OnUnauthorized(func() { atomic.AddInt32(&first, 1) })
	c.OnUnauthorized(func() { atomic.AddInt32(&second, 1) })

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Could not validate credentials", err.Error())
	assert.Equal(t, int32(1), atomic.LoadInt32(&first))
	assert.Equal(t, int32(1), atomic.LoadInt32(&second))

	_, _ = c.Me(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&first))
}

func TestClient_OtherErrorsDoNotFireObservers(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v1/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{})
	})

	c := newTestClient(t, r, "t")
	var fired int32
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	_, err := c.Me(context.Background())
	assert.Equal(t, 500, StatusOf(err))
	assert.Equal(t, "Server error. Please try again later", err.Error())
	assert.Zero(t, atomic.LoadInt32(&fired))
}

func TestClient_LoginSurfacesBackendMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid employee ID or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"message":      "Login successful",
			"user":         map[string]any{"id": 1, "employee_id": req.EmployeeID, "name": "Ann", "role": "Nurse", "department_id": 6, "department_name": "Ward1"},
			"access_token": "abc.def.ghi",
			"token_type":   "bearer",
			"expires_in":   1800,
		})
	})

	c := newTestClient(t, r, "")

	_, err := c.Login(context.Background(), models.LoginRequest{EmployeeID: "NUR001", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Invalid employee ID or password", err.Error())

	resp, err := c.Login(context.Background(), models.LoginRequest{EmployeeID: "NUR001", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", resp.AccessToken)
	assert.Equal(t, "Ward1", resp.User.DepartmentName)
	assert.Equal(t, 1800, resp.ExpiresIn)
}

func TestClient_ValidationErrorMessage(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{
				{"loc": []any{"body", "employee_id"}, "msg": "invalid format", "type": "value_error"},
				{"loc": []any{"body", "password"}, "msg": "too short", "type": "value_error"},
			},
		})
	})

	c := newTestClient(t, r, "t")
	_, err := c.CreateUser(context.Background(), models.CreateUserRequest{})
	require.Error(t, err)

	assert.True(t, IsValidation(err))
	assert.Equal(t, "Validation errors: employee_id: invalid format, password: too short", err.Error())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Len(t, apiErr.Fields, 2)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url+"/api/v1", time.Second, nil, zap.NewNop())
	_, err := c.ActiveDepartments(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.Zero(t, StatusOf(err))
}

func TestClient_MonthlyReportEndpoints(t *testing.T) {
	var saved map[string]any
	var submitted map[string]any
	var approved bool

	r := chi.NewRouter()
	r.Get("/api/v1/ward1/monthly-report/{year}/{month}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "month") == "2" {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No monthly report found for Ward 1 in 02/2025"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"year": 2025, "month": 1, "admissions_male": 45, "admissions_female": 38,
			"status": "submitted", "updated_at": "2025-01-15T14:30:25", "total_admissions": 83,
		})
	})
	r.Post("/api/v1/ward1/monthly-report", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&saved)
		writeJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "saved"})
	})
	r.Post("/api/v1/ward1/monthly-report/submit", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&submitted)
		writeJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "submitted"})
	})
	r.Put("/api/v1/ward1/monthly-report/{year}/{month}/approve", func(w http.ResponseWriter, r *http.Request) {
		approved = true
		writeJSON(w, http.StatusOK, models.MessageResponse{Success: true, Message: "approved"})
	})
	r.Get("/api/v1/ward1/monthly-reports/{year}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"month": 1, "status": "draft"}})
	})

	c := newTestClient(t, r, "t")
	ctx := context.Background()
	jan := report.Key{Ward: "ward1", Year: 2025, Month: 1}

	got, err := c.GetMonthlyReport(ctx, jan)
	require.NoError(t, err)
	assert.Equal(t, 45, got.AdmissionsMale)
	assert.Equal(t, report.StatusSubmitted, got.Status)
	assert.Equal(t, "2025-01-15T14:30:25", got.LastSaved)

	_, err = c.GetMonthlyReport(ctx, report.Key{Ward: "ward1", Year: 2025, Month: 2})
	assert.True(t, IsNotFound(err))

	r1 := report.New()
	r1.ReferralsOthers = 4
	_, err = c.SaveMonthlyReport(ctx, jan, r1)
	require.NoError(t, err)
	assert.Equal(t, float64(2025), saved["year"])
	assert.Equal(t, float64(4), saved["total_referrals"])
	assert.Equal(t, float64(30), saved["total_beds"])

	_, err = c.SubmitMonthlyReport(ctx, jan, "all checked")
	require.NoError(t, err)
	assert.Equal(t, "all checked", submitted["notes"])
	assert.Equal(t, float64(1), submitted["month"])

	_, err = c.ApproveMonthlyReport(ctx, jan)
	require.NoError(t, err)
	assert.True(t, approved)

	list, err := c.ListMonthlyReports(ctx, "ward1", 2025)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
