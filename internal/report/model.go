// Package report holds one ward's monthly statistics, their derived metrics and
// the mapping to the backend's wire schema.
package report

import (
	"errors"
	"fmt"
)

// Status is the report's workflow state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
)

// Year range accepted by the backend.
const (
	MinYear = 2020
	MaxYear = 2030
)

var (
	// ErrEditLocked is returned by Set when the report may not be changed.
	ErrEditLocked = errors.New("report is locked for editing")
	// ErrUnknownField is returned by Set for a field name with no binding.
	ErrUnknownField = errors.New("unknown report field")
	// ErrInvalidKey marks a (year, month) the backend can never hold.
	ErrInvalidKey = errors.New("invalid report period")
)

// Key identifies one monthly report.
type Key struct {
	Ward  string `json:"ward"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
}

// Validate checks the period range. The error wraps ErrInvalidKey.
func (k Key) Validate() error {
	if k.Month < 1 || k.Month > 12 {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidKey)
	}
	if k.Year < MinYear || k.Year > MaxYear {
		return fmt.Errorf("%w: year must be between %d and %d", ErrInvalidKey, MinYear, MaxYear)
	}
	return nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s %04d-%02d", k.Ward, k.Year, k.Month)
}

// MonthlyReport is one month of raw inputs plus workflow metadata.
// JSON names are the portal's field names; the backend's names live in Bindings.
type MonthlyReport struct {
	// ── Bed capacity ──
	TotalBeds          int `json:"totalBeds"`
	TotalBedsHDU       int `json:"totalBedsHDU"`
	TotalBedsWard      int `json:"totalBedsWard"`
	TotalBedsIsolation int `json:"totalBedsIsolation"`

	// ── Admissions by gender / category ──
	AdmissionsMale   int `json:"admissionsMale"`
	AdmissionsFemale int `json:"admissionsFemale"`
	AdmissionsAH     int `json:"admissionsAH"`
	AdmissionsAMCA   int `json:"admissionsAMCA"`
	AdmissionsSAMA   int `json:"admissionsSAMA"`

	// ── Admissions by unit ──
	AdmissionsKU        int `json:"admissionsKU"`
	AdmissionsMUNT      int `json:"admissionsMUNT"`
	AdmissionsWard02    int `json:"admissionsWard02"`
	AdmissionsIsolation int `json:"admissionsIsolation"`
	AdmissionsHDUUnit   int `json:"admissionsHDUUnit"`

	// ── Discharges & flow ──
	BedOccupancyRate           float64 `json:"bedOccupancyRate"`
	AvgLengthOfStay            float64 `json:"avgLengthOfStay"`
	MidnightTotal              int     `json:"midnightTotal"`
	Discharges                 int     `json:"discharges"`
	LAMA                       int     `json:"lama"`
	ReAdmissions               int     `json:"reAdmissions"`
	DischargeSameDay           int     `json:"dischargeSameDay"`
	TransferToOtherHospitals   int     `json:"transferToOtherHospitals"`
	TransferFromOtherHospitals int     `json:"transferFromOtherHospitals"`
	WeekdayTransfersIn         int     `json:"weekdayTransfersIn"`
	WeekdayTransfersOut        int     `json:"weekdayTransfersOut"`
	WeekendTransfersIn         int     `json:"weekendTransfersIn"`
	WeekendTransfersOut        int     `json:"weekendTransfersOut"`
	Missing                    int     `json:"missing"`

	// ── Mortality ──
	NumberOfDeath    int     `json:"numberOfDeath"`
	DeathWithin24hrs int     `json:"deathWithin24hrs"`
	DeathWithin48hrs int     `json:"deathWithin48hrs"`
	DeathRate        float64 `json:"deathRate"`

	// ── Diagnostics ──
	NoOfHD           int  `json:"noOfHD"`
	XrayInward       int  `json:"xrayInward"`
	XrayDepartmental int  `json:"xrayDepartmental"`
	ECGInward        int  `json:"ecgInward"`
	ECGDepartmental  int  `json:"ecgDepartmental"`
	ABG              int  `json:"abg"`
	WITMeetings      bool `json:"witMeetings"`

	// ── Referrals ──
	ReferralsCardiology     int `json:"referralsCardiology"`
	ReferralsChestPhysician int `json:"referralsChestPhysician"`
	ReferralsRadiodiagnosis int `json:"referralsRadiodiagnosis"`
	ReferralsHeumatology    int `json:"referralsHeumatology"`
	ReferralsOthers         int `json:"referralsOthers"`

	// ── Metadata ──
	Status      Status `json:"status"`
	LastSaved   string `json:"lastSaved,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	SubmittedAt string `json:"submittedAt,omitempty"`
	ApprovedAt  string `json:"approvedAt,omitempty"`
}

// New returns the default record for a month with no data yet.
// Every field is listed so a newly added field cannot be silently left out.
func New() *MonthlyReport {
	return &MonthlyReport{
		TotalBeds:          30,
		TotalBedsHDU:       2,
		TotalBedsWard:      24,
		TotalBedsIsolation: 4,

		AdmissionsMale:   0,
		AdmissionsFemale: 0,
		AdmissionsAH:     0,
		AdmissionsAMCA:   0,
		AdmissionsSAMA:   0,

		AdmissionsKU:        0,
		AdmissionsMUNT:      0,
		AdmissionsWard02:    0,
		AdmissionsIsolation: 0,
		AdmissionsHDUUnit:   0,

		BedOccupancyRate:           0,
		AvgLengthOfStay:            0,
		MidnightTotal:              0,
		Discharges:                 0,
		LAMA:                       0,
		ReAdmissions:               0,
		DischargeSameDay:           0,
		TransferToOtherHospitals:   0,
		TransferFromOtherHospitals: 0,
		WeekdayTransfersIn:         0,
		WeekdayTransfersOut:        0,
		WeekendTransfersIn:         0,
		WeekendTransfersOut:        0,
		Missing:                    0,

		NumberOfDeath:    0,
		DeathWithin24hrs: 0,
		DeathWithin48hrs: 0,
		DeathRate:        0,

		NoOfHD:           0,
		XrayInward:       0,
		XrayDepartmental: 0,
		ECGInward:        0,
		ECGDepartmental:  0,
		ABG:              0,
		WITMeetings:      false,

		ReferralsCardiology:     0,
		ReferralsChestPhysician: 0,
		ReferralsRadiodiagnosis: 0,
		ReferralsHeumatology:    0,
		ReferralsOthers:         0,

		Status: StatusDraft,
	}
}

// Clone returns an independent copy.
func (r *MonthlyReport) Clone() *MonthlyReport {
	c := *r
	return &c
}

// Editable reports whether field edits are allowed for the report's status.
func (r *MonthlyReport) Editable() bool {
	return r.Status == "" || r.Status == StatusDraft
}

// Set changes one field by its portal name.
// disabled carries the caller's own lock (e.g. a save in flight); when set, or
// when the report is no longer a draft, nothing changes and ErrEditLocked is returned.
func (r *MonthlyReport) Set(field string, value any, disabled bool) error {
	if disabled || !r.Editable() {
		return ErrEditLocked
	}

	b, ok := BindingByField(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	next := r.Clone()
	if err := b.assign(next, value); err != nil {
		return ValidationErrors{field: err.Error()}
	}
	if errs := next.validateField(b); len(errs) > 0 {
		return errs
	}

	*r = *next
	return nil
}

// Get returns one field's value by its portal name.
func (r *MonthlyReport) Get(field string) (any, bool) {
	b, ok := BindingByField(field)
	if !ok {
		return nil, false
	}
	return b.value(r), true
}
