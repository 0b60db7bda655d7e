package models

import "strings"

// Department is a hospital department as returned by the backend.
type Department struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// DepartmentList is returned by GET /departments/.
type DepartmentList struct {
	Departments []Department `json:"departments"`
	Total       int          `json:"total"`
}

// CreateDepartmentResponse is returned by POST /departments/.
type CreateDepartmentResponse struct {
	Success    bool       `json:"success"`
	Message    string     `json:"message"`
	Department Department `json:"department"`
}

// DepartmentRequest creates or updates a department.
// On update, empty fields are left unchanged.
type DepartmentRequest struct {
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// Validate checks a department for creation (requireName) or update.
func (r *DepartmentRequest) Validate(requireName bool) map[string]string {
	errors := map[string]string{}

	r.Name = strings.TrimSpace(r.Name)
	if requireName && r.Name == "" {
		errors["name"] = "Department name is required"
	}
	if len(r.Name) > 100 {
		errors["name"] = "Department name must be at most 100 characters"
	}

	if requireName && r.Status == "" {
		r.Status = "Active"
	}
	if r.Status != "" && r.Status != "Active" && r.Status != "Inactive" {
		errors["status"] = "Status must be 'Active' or 'Inactive'"
	}

	return errors
}
