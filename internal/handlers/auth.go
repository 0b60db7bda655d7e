package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/deptroute"
	"hospital-portal/internal/models"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/session"
)

// AuthBackend is the part of the API client used for sign-in.
type AuthBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context)
	Me(ctx context.Context) (*models.UserRecord, error)
}

// AuthHandler signs the workstation in and out.
type AuthHandler struct {
	api    AuthBackend
	store  *session.Store
	notes  *notify.Channel
	logger *zap.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(api AuthBackend, store *session.Store, notes *notify.Channel, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{api: api, store: store, notes: notes, logger: logger}
}

// Login exchanges credentials with the backend and starts the session.
// The backend's failure message is returned verbatim so the operator sees
// exactly why the sign-in was refused.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		validationFailed(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	resp, err := h.api.Login(ctx, req)
	if err != nil {
		h.logger.Info("login refused", zap.String("employee_id", req.EmployeeID), zap.Error(err))
		backendError(w, err)
		return
	}
	if !resp.Success || resp.AccessToken == "" {
		msg := resp.Message
		if msg == "" {
			msg = "Login failed"
		}
		JSONError(w, http.StatusUnauthorized, msg)
		return
	}

	h.store.Login(ctx, resp.User, resp.AccessToken)
	h.notes.Success("Welcome, " + resp.User.Name)

	home := deptroute.DashboardPath(&resp.User)
	if from := safeFrom(r.URL.Query().Get("from")); from != "" {
		home = from
	}

	JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    resp.Message,
		"user":       resp.User,
		"redirectTo": home,
		"navigation": deptroute.Navigation(&resp.User),
	})
}

// Logout tells the backend, then clears the local session whatever the
// backend said.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.store.State().IsAuthenticated {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		h.api.Logout(ctx)
		cancel()
	}
	h.store.Logout()

	JSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Logged out successfully",
		"redirectTo": deptroute.LoginPath,
	})
}

// Session describes the current workstation session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	view := models.SessionView{
		IsAuthenticated: st.IsAuthenticated,
		Loading:         st.Loading,
		User:            st.User,
		Navigation:      deptroute.Navigation(st.User),
	}
	if st.IsAuthenticated {
		view.Home = deptroute.DashboardPath(st.User)
	}
	JSON(w, http.StatusOK, view)
}

// LoginPage sends a signed-in user on to where they were going (or home).
// Everyone else gets the login form description.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	st := h.store.State()
	from := safeFrom(r.URL.Query().Get("from"))

	if st.IsAuthenticated {
		target := from
		if target == "" {
			target = deptroute.DashboardPath(st.User)
		}
		if target != deptroute.LoginPath {
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
	}

	JSON(w, http.StatusOK, map[string]any{
		"page":            "login",
		"from":            from,
		"isAuthenticated": st.IsAuthenticated,
	})
}

// Me returns the backend's view of the signed-in account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.api.Me(r.Context())
	if err != nil {
		if !apiclient.IsUnauthorized(err) {
			h.logger.Error("failed to load profile", zap.Error(err))
		}
		backendError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"success": true, "user": me})
}

// safeFrom accepts only local paths, never the login page itself.
func safeFrom(from string) string {
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, deptroute.LoginPath) {
		return ""
	}
	return from
}
