// Package deptroute maps a user's department to their home dashboard.
package deptroute

import "hospital-portal/internal/session"

const (
	LoginPath          = "/login"
	AdminDashboardPath = "/admin-dashboard"
	Ward1DashboardPath = "/ward1-dashboard"
)

// departmentRoutes is keyed by the department name carried in the user record.
// Both "Icu" and "ICU" appear in issued tokens.
var departmentRoutes = map[string]string{
	"Administration":    AdminDashboardPath,
	"Clinic":            "/clinic-dashboard",
	"Dialysis":          "/dialysis-dashboard",
	"Icu":               "/icu-dashboard",
	"ICU":               "/icu-dashboard",
	"Operation Theater": "/operation-theater-dashboard",
	"Ward1":             Ward1DashboardPath,
	"Ward2":             "/ward2-dashboard",
}

// DashboardPath returns the user's home dashboard.
// Unmapped departments send administrators to the admin console and everyone
// else to the login page.
func DashboardPath(user *session.User) string {
	if user == nil {
		return LoginPath
	}
	if route, ok := departmentRoutes[user.DepartmentName]; ok {
		return route
	}
	if user.Role == session.RoleAdministrator {
		return AdminDashboardPath
	}
	return LoginPath
}

// Route is a department dashboard and what it requires of the user.
type Route struct {
	Path       string
	Department string
	Roles      []string
}

// Dashboards lists every dashboard route, for route registration.
func Dashboards() []Route {
	return []Route{
		{Path: AdminDashboardPath, Department: "Administration", Roles: []string{session.RoleAdministrator}},
		{Path: "/clinic-dashboard", Department: "Clinic"},
		{Path: "/dialysis-dashboard", Department: "Dialysis"},
		{Path: "/icu-dashboard", Department: "Icu"},
		{Path: "/operation-theater-dashboard", Department: "Operation Theater"},
		{Path: Ward1DashboardPath, Department: "Ward1"},
		{Path: "/ward2-dashboard", Department: "Ward2"},
	}
}

// NavItem is one entry of the role-based navigation menu.
type NavItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

var roleNavigation = map[string][]NavItem{
	session.RoleAdministrator: {
		{"User Management", "/admin/users"},
		{"Department Management", "/admin/departments"},
		{"System Settings", "/admin/settings"},
		{"Reports", "/admin/reports"},
	},
	"Doctor": {
		{"Patients", "/patients"},
		{"Medical Records", "/medical-records"},
		{"Prescriptions", "/prescriptions"},
		{"Appointments", "/appointments"},
	},
	"Nurse": {
		{"Patients", "/patients"},
		{"Medical Records", "/medical-records"},
		{"Appointments", "/appointments"},
	},
	"Lab Technician": {
		{"Lab Results", "/lab-results"},
		{"Patients", "/patients"},
	},
	"Pharmacist": {
		{"Prescriptions", "/prescriptions"},
		{"Medications", "/medications"},
		{"Inventory", "/pharmacy/inventory"},
	},
	"Receptionist": {
		{"Patients", "/patients"},
		{"Appointments", "/appointments"},
		{"Registration", "/registration"},
	},
}

// Navigation returns the menu for user's role, always starting with Dashboard.
func Navigation(user *session.User) []NavItem {
	if user == nil {
		return []NavItem{}
	}
	items := []NavItem{{"Dashboard", "/dashboard"}}
	return append(items, roleNavigation[user.Role]...)
}
