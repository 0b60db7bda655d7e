package models

import (
	"regexp"
	"strings"

	"hospital-portal/internal/session"
)

// AllowedRoles are the roles the backend accepts for staff accounts.
var AllowedRoles = []string{
	"Doctor", "Nurse", "Lab Technician", "Pharmacist",
	session.RoleAdministrator, "Receptionist", "Radiologist",
	"Physiotherapist", "Dietitian", "Social Worker",
}

var (
	employeeIDPattern = regexp.MustCompile(`^[A-Z]{2,4}\d{3,6}$`)
	namePattern       = regexp.MustCompile(`^[a-zA-Z\s.\-']+$`)
	hasLetter         = regexp.MustCompile(`[A-Za-z]`)
	hasDigit          = regexp.MustCompile(`\d`)
)

// LoginRequest contains the credentials for authentication.
type LoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

// Validate checks that login credentials are present.
func (r *LoginRequest) Validate() map[string]string {
	errors := map[string]string{}

	r.EmployeeID = strings.TrimSpace(r.EmployeeID)
	if r.EmployeeID == "" {
		errors["employee_id"] = "Employee ID is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

// LoginResponse is what the backend returns on a successful login.
type LoginResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	User        session.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"`
}

// MessageResponse is the backend's generic acknowledgement.
type MessageResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// MeResponse wraps GET /auth/me.
type MeResponse struct {
	Success bool       `json:"success"`
	User    UserRecord `json:"user"`
}

// UserRecord is a staff account as managed from the admin console.
type UserRecord struct {
	ID             int    `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

// UserList is a page of staff accounts.
type UserList struct {
	Users   []UserRecord `json:"users"`
	Total   int          `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// CreateUserRequest registers a new staff account.
type CreateUserRequest struct {
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	DepartmentID int    `json:"department_id"`
	Password     string `json:"password"`
}

// Validate mirrors the backend's account rules so the operator gets every
// problem at once instead of one round-trip per field.
func (r *CreateUserRequest) Validate() map[string]string {
	errors := map[string]string{}

	r.EmployeeID = strings.ToUpper(strings.TrimSpace(r.EmployeeID))
	if !employeeIDPattern.MatchString(r.EmployeeID) {
		errors["employee_id"] = "Employee ID must be 2-4 letters followed by 3-6 digits (e.g., EMP001)"
	}
	validateName(errors, r.Name)
	validateRole(errors, r.Role)
	if r.DepartmentID <= 0 {
		errors["department_id"] = "Department is required"
	}
	if msg := passwordProblem(r.Password); msg != "" {
		errors["password"] = msg
	}

	return errors
}

// CreateUserResponse is returned by POST /users/.
type CreateUserResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	User    UserRecord `json:"user"`
}

// UpdateUserRequest changes name, role or department; nil fields are left alone.
type UpdateUserRequest struct {
	Name         *string `json:"name,omitempty"`
	Role         *string `json:"role,omitempty"`
	DepartmentID *int    `json:"department_id,omitempty"`
}

// Validate checks only the fields that are set.
func (r *UpdateUserRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.Name != nil {
		validateName(errors, *r.Name)
	}
	if r.Role != nil {
		validateRole(errors, *r.Role)
	}
	if r.DepartmentID != nil && *r.DepartmentID <= 0 {
		errors["department_id"] = "Department must be a positive ID"
	}
	return errors
}

// PasswordUpdateRequest changes a user's password.
type PasswordUpdateRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *PasswordUpdateRequest) Validate() map[string]string {
	errors := map[string]string{}
	if r.CurrentPassword == "" {
		errors["current_password"] = "Current password is required"
	}
	if msg := passwordProblem(r.NewPassword); msg != "" {
		errors["new_password"] = msg
	}
	return errors
}

func validateName(errors map[string]string, name string) {
	n := strings.TrimSpace(name)
	switch {
	case len(n) < 2:
		errors["name"] = "Name must be at least 2 characters"
	case !namePattern.MatchString(n):
		errors["name"] = "Name can only contain letters, spaces, dots, hyphens, and apostrophes"
	}
}

func validateRole(errors map[string]string, role string) {
	for _, r := range AllowedRoles {
		if r == role {
			return
		}
	}
	errors["role"] = "Role must be one of: " + strings.Join(AllowedRoles, ", ")
}

func passwordProblem(pw string) string {
	switch {
	case len(pw) < 6:
		return "Password must be at least 6 characters long"
	case !hasLetter.MatchString(pw):
		return "Password must contain at least one letter"
	case !hasDigit.MatchString(pw):
		return "Password must contain at least one digit"
	}
	return ""
}
