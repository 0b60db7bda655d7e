package models

import (
	"hospital-portal/internal/deptroute"
	"hospital-portal/internal/session"
)

// ── Dashboard ────────────────────────────────────────────────────

// DashboardView is rendered for every department dashboard route.
type DashboardView struct {
	Dashboard  string              `json:"dashboard"`
	Department string              `json:"department"`
	User       *session.User       `json:"user"`
	Navigation []deptroute.NavItem `json:"navigation"`
}

// SessionView describes the workstation session to the UI.
type SessionView struct {
	IsAuthenticated bool                `json:"isAuthenticated"`
	Loading         bool                `json:"loading"`
	User            *session.User       `json:"user"`
	Home            string              `json:"home"`
	Navigation      []deptroute.NavItem `json:"navigation"`
}

// ── Yearly overview ──────────────────────────────────────────────

// MonthNotStarted marks a month with no backend record.
const MonthNotStarted = "not_started"

// MonthSummary is one row of the yearly completion overview.
type MonthSummary struct {
	Month            int     `json:"month"`
	MonthName        string  `json:"monthName"`
	Status           string  `json:"status"`
	TotalAdmissions  int     `json:"totalAdmissions"`
	Discharges       int     `json:"discharges"`
	BedOccupancyRate float64 `json:"bedOccupancyRate"`
	LastUpdated      string  `json:"lastUpdated,omitempty"`
}

// YearStats aggregates the twelve months of one year.
type YearStats struct {
	Completed         int     `json:"completed"`
	Draft             int     `json:"draft"`
	Submitted         int     `json:"submitted"`
	Approved          int     `json:"approved"`
	NotStarted        int     `json:"notStarted"`
	CompletionPercent float64 `json:"completionPercent"`
}

// YearOverview is the yearly overview returned to the UI.
type YearOverview struct {
	Ward   string         `json:"ward"`
	Year   int            `json:"year"`
	Months []MonthSummary `json:"months"`
	Stats  YearStats      `json:"stats"`
}
