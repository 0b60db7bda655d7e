package handlers

import (
	"net/http"

	"hospital-portal/internal/ctxkeys"
	"hospital-portal/internal/deptroute"
	"hospital-portal/internal/models"
	"hospital-portal/internal/middleware"
)

// DashboardHandler serves department dashboards and the smart redirect.
type DashboardHandler struct {
	sessions middleware.StateSource
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(sessions middleware.StateSource) *DashboardHandler {
	return &DashboardHandler{sessions: sessions}
}

// Home sends the user to their own dashboard, or to the login page when
// signed out. Used for "/", "/dashboard" and every unknown path.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.State()
	switch {
	case st.Loading:
		w.Header().Set("Retry-After", "1")
		JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	case !st.IsAuthenticated:
		http.Redirect(w, r, deptroute.LoginPath, http.StatusFound)
	default:
		http.Redirect(w, r, deptroute.DashboardPath(st.User), http.StatusFound)
	}
}

// View renders a dashboard for the user admitted by the access guard.
func (h *DashboardHandler) View(dashboard string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.UserFrom(r.Context())
		JSON(w, http.StatusOK, models.DashboardView{
			Dashboard:  dashboard,
			Department: user.DepartmentName,
			User:       user,
			Navigation: deptroute.Navigation(user),
		})
	}
}
