// Package guard decides what a route shows for the current session.
package guard

import (
	"strings"

	"hospital-portal/internal/deptroute"
	"hospital-portal/internal/session"
)

// Outcome is the kind of Decision.
type Outcome int

const (
	Render Outcome = iota
	Loading
	RedirectLogin
	RedirectHome
	Denied
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectHome:
		return "redirect_home"
	case Denied:
		return "denied"
	}
	return "unknown"
}

// Requirement is what a route demands. Empty Roles and Department allow any
// authenticated user. Administrators pass both checks unless NoAdminOverride is set.
type Requirement struct {
	Roles           []string
	Department      string
	NoAdminOverride bool
}

// Decision is the result of Evaluate.
//   - RedirectLogin: From holds the attempted location.
//   - RedirectHome: Target holds the user's own dashboard.
//   - Denied: RequiredRoles and CurrentRole describe the refusal.
type Decision struct {
	Outcome       Outcome
	From          string
	Target        string
	RequiredRoles []string
	CurrentRole   string
}

// Evaluate applies the checks in order: loading, authentication, role,
// department. A department mismatch redirects home; it never denies.
func Evaluate(st session.State, req Requirement, attempted string) Decision {
	if st.Loading {
		return Decision{Outcome: Loading}
	}

	if !st.IsAuthenticated || st.User == nil {
		return Decision{Outcome: RedirectLogin, From: attempted, Target: deptroute.LoginPath}
	}

	user := st.User
	adminOverride := !req.NoAdminOverride && user.IsAdmin()

	if len(req.Roles) > 0 && !user.HasAnyRole(req.Roles) && !adminOverride {
		return Decision{
			Outcome:       Denied,
			RequiredRoles: append([]string(nil), req.Roles...),
			CurrentRole:   user.Role,
		}
	}

	// Department names are compared case-insensitively; tokens carry both "Icu" and "ICU".
	if req.Department != "" && !strings.EqualFold(user.DepartmentName, req.Department) && !adminOverride {
		return Decision{Outcome: RedirectHome, Target: deptroute.DashboardPath(user)}
	}

	return Decision{Outcome: Render}
}
