package session

// RoleAdministrator bypasses role and department checks everywhere in the portal.
const RoleAdministrator = "Administrator"

// User is the identity returned by the backend on login.
type User struct {
	ID             int    `json:"id"`
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	DepartmentID   int    `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// HasRole reports whether the user holds exactly role.
func (u *User) HasRole(role string) bool {
	return u != nil && u.Role == role
}

// HasAnyRole reports whether the user's role is one of roles.
func (u *User) HasAnyRole(roles []string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// BelongsToDepartment compares by department ID.
func (u *User) BelongsToDepartment(departmentID int) bool {
	return u != nil && u.DepartmentID == departmentID
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdministrator)
}

// State is a point-in-time copy of the session.
// IsAuthenticated implies User and Token are set; Loading is true only until
// the store has read durable storage once.
type State struct {
	User            *User  `json:"user"`
	Token           string `json:"-"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	Loading         bool   `json:"loading"`
}
