package models

import "hospital-portal/internal/report"

// ReportView is the monthly report screen: the working copy plus everything
// derived from it.
type ReportView struct {
	Ward     string                `json:"ward"`
	Year     int                   `json:"year"`
	Month    int                   `json:"month"`
	Found    bool                  `json:"found"`
	Editable bool                  `json:"editable"`
	Busy     bool                  `json:"busy"`
	Report   *report.MonthlyReport `json:"report"`
	Metrics  report.Metrics        `json:"metrics"`
}

// SubmitRequest carries the optional note sent with a submission.
type SubmitRequest struct {
	Notes string `json:"notes"`
}
