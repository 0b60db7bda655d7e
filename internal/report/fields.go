package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Kind is the value type of a bound field.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
)

// Field groups, in display order.
const (
	GroupBeds        = "beds"
	GroupAdmissions  = "admissions"
	GroupUnits       = "admissions_by_unit"
	GroupFlow        = "discharges_flow"
	GroupMortality   = "mortality"
	GroupDiagnostics = "diagnostics"
	GroupReferrals   = "referrals"
)

// Binding ties one portal field to its backend wire name.
type Binding struct {
	Field string
	Wire  string
	Kind  Kind
	Group string
	Label string

	intPtr   func(*MonthlyReport) *int
	floatPtr func(*MonthlyReport) *float64
	boolPtr  func(*MonthlyReport) *bool
}

func intField(field, wire, group, label string, p func(*MonthlyReport) *int) Binding {
	return Binding{Field: field, Wire: wire, Kind: KindInt, Group: group, Label: label, intPtr: p}
}

func floatField(field, wire, group, label string, p func(*MonthlyReport) *float64) Binding {
	return Binding{Field: field, Wire: wire, Kind: KindFloat, Group: group, Label: label, floatPtr: p}
}

func boolField(field, wire, group, label string, p func(*MonthlyReport) *bool) Binding {
	return Binding{Field: field, Wire: wire, Kind: KindBool, Group: group, Label: label, boolPtr: p}
}

// Bindings lists every editable field exactly once, in wire order.
// Keep it in step with MonthlyReport and New.
var Bindings = []Binding{
	intField("totalBeds", "total_beds", GroupBeds, "Total beds", func(r *MonthlyReport) *int { return &r.TotalBeds }),
	intField("totalBedsHDU", "total_beds_hdu", GroupBeds, "HDU beds", func(r *MonthlyReport) *int { return &r.TotalBedsHDU }),
	intField("totalBedsWard", "total_beds_ward", GroupBeds, "Ward beds", func(r *MonthlyReport) *int { return &r.TotalBedsWard }),
	intField("totalBedsIsolation", "total_beds_isolation", GroupBeds, "Isolation beds", func(r *MonthlyReport) *int { return &r.TotalBedsIsolation }),

	intField("admissionsMale", "admissions_male", GroupAdmissions, "Male admissions", func(r *MonthlyReport) *int { return &r.AdmissionsMale }),
	intField("admissionsFemale", "admissions_female", GroupAdmissions, "Female admissions", func(r *MonthlyReport) *int { return &r.AdmissionsFemale }),
	intField("admissionsAH", "admissions_ah", GroupAdmissions, "AH admissions", func(r *MonthlyReport) *int { return &r.AdmissionsAH }),
	intField("admissionsAMCA", "admissions_amca", GroupAdmissions, "AMCA admissions", func(r *MonthlyReport) *int { return &r.AdmissionsAMCA }),
	intField("admissionsSAMA", "admissions_sama", GroupAdmissions, "SAMA admissions", func(r *MonthlyReport) *int { return &r.AdmissionsSAMA }),

	intField("admissionsKU", "admissions_ku", GroupUnits, "KU admissions", func(r *MonthlyReport) *int { return &r.AdmissionsKU }),
	intField("admissionsMUNT", "admissions_munt", GroupUnits, "MUNT admissions", func(r *MonthlyReport) *int { return &r.AdmissionsMUNT }),
	intField("admissionsWard02", "admissions_ward02", GroupUnits, "Ward 02 admissions", func(r *MonthlyReport) *int { return &r.AdmissionsWard02 }),
	intField("admissionsIsolation", "admissions_isolation", GroupUnits, "Isolation admissions", func(r *MonthlyReport) *int { return &r.AdmissionsIsolation }),
	intField("admissionsHDUUnit", "admissions_hdu_unit", GroupUnits, "HDU unit admissions", func(r *MonthlyReport) *int { return &r.AdmissionsHDUUnit }),

	floatField("bedOccupancyRate", "bed_occupancy_rate", GroupFlow, "Bed occupancy rate (%)", func(r *MonthlyReport) *float64 { return &r.BedOccupancyRate }),
	floatField("avgLengthOfStay", "avg_length_of_stay", GroupFlow, "Average length of stay (days)", func(r *MonthlyReport) *float64 { return &r.AvgLengthOfStay }),
	intField("midnightTotal", "midnight_total", GroupFlow, "Midnight total", func(r *MonthlyReport) *int { return &r.MidnightTotal }),
	intField("discharges", "discharges", GroupFlow, "Discharges", func(r *MonthlyReport) *int { return &r.Discharges }),
	intField("lama", "lama", GroupFlow, "LAMA", func(r *MonthlyReport) *int { return &r.LAMA }),
	intField("reAdmissions", "re_admissions", GroupFlow, "Re-admissions", func(r *MonthlyReport) *int { return &r.ReAdmissions }),
	intField("dischargeSameDay", "discharge_same_day", GroupFlow, "Same day discharges", func(r *MonthlyReport) *int { return &r.DischargeSameDay }),
	intField("transferToOtherHospitals", "transfer_to_other_hospitals", GroupFlow, "Transfers to other hospitals", func(r *MonthlyReport) *int { return &r.TransferToOtherHospitals }),
	intField("transferFromOtherHospitals", "transfer_from_other_hospitals", GroupFlow, "Transfers from other hospitals", func(r *MonthlyReport) *int { return &r.TransferFromOtherHospitals }),
	intField("weekdayTransfersIn", "weekday_transfers_in", GroupFlow, "Weekday transfers in", func(r *MonthlyReport) *int { return &r.WeekdayTransfersIn }),
	intField("weekdayTransfersOut", "weekday_transfers_out", GroupFlow, "Weekday transfers out", func(r *MonthlyReport) *int { return &r.WeekdayTransfersOut }),
	intField("weekendTransfersIn", "weekend_transfers_in", GroupFlow, "Weekend transfers in", func(r *MonthlyReport) *int { return &r.WeekendTransfersIn }),
	intField("weekendTransfersOut", "weekend_transfers_out", GroupFlow, "Weekend transfers out", func(r *MonthlyReport) *int { return &r.WeekendTransfersOut }),
	intField("missing", "missing", GroupFlow, "Missing patients", func(r *MonthlyReport) *int { return &r.Missing }),

	intField("numberOfDeath", "number_of_death", GroupMortality, "Number of deaths", func(r *MonthlyReport) *int { return &r.NumberOfDeath }),
	intField("deathWithin24hrs", "death_within_24hrs", GroupMortality, "Deaths within 24 hours", func(r *MonthlyReport) *int { return &r.DeathWithin24hrs }),
	intField("deathWithin48hrs", "death_within_48hrs", GroupMortality, "Deaths within 48 hours", func(r *MonthlyReport) *int { return &r.DeathWithin48hrs }),
	floatField("deathRate", "death_rate", GroupMortality, "Death rate (%)", func(r *MonthlyReport) *float64 { return &r.DeathRate }),

	intField("noOfHD", "no_of_hd", GroupDiagnostics, "Hemodialysis procedures", func(r *MonthlyReport) *int { return &r.NoOfHD }),
	intField("xrayInward", "xray_inward", GroupDiagnostics, "X-ray (inward)", func(r *MonthlyReport) *int { return &r.XrayInward }),
	intField("xrayDepartmental", "xray_departmental", GroupDiagnostics, "X-ray (departmental)", func(r *MonthlyReport) *int { return &r.XrayDepartmental }),
	intField("ecgInward", "ecg_inward", GroupDiagnostics, "ECG (inward)", func(r *MonthlyReport) *int { return &r.ECGInward }),
	intField("ecgDepartmental", "ecg_departmental", GroupDiagnostics, "ECG (departmental)", func(r *MonthlyReport) *int { return &r.ECGDepartmental }),
	intField("abg", "abg", GroupDiagnostics, "Arterial blood gas", func(r *MonthlyReport) *int { return &r.ABG }),
	boolField("witMeetings", "wit_meetings", GroupDiagnostics, "WIT meeting held", func(r *MonthlyReport) *bool { return &r.WITMeetings }),

	intField("referralsCardiology", "referrals_cardiology", GroupReferrals, "Cardiology", func(r *MonthlyReport) *int { return &r.ReferralsCardiology }),
	intField("referralsChestPhysician", "referrals_chest_physician", GroupReferrals, "Chest physician", func(r *MonthlyReport) *int { return &r.ReferralsChestPhysician }),
	intField("referralsRadiodiagnosis", "referrals_radiodiagnosis", GroupReferrals, "Radiodiagnosis", func(r *MonthlyReport) *int { return &r.ReferralsRadiodiagnosis }),
	intField("referralsHeumatology", "referrals_heumatology", GroupReferrals, "Heumatology", func(r *MonthlyReport) *int { return &r.ReferralsHeumatology }),
	intField("referralsOthers", "referrals_others", GroupReferrals, "Other referrals", func(r *MonthlyReport) *int { return &r.ReferralsOthers }),
}

// Derived and metadata wire names outside Bindings.
const (
	WireYear           = "year"
	WireMonth          = "month"
	WireTotalReferrals = "total_referrals"
	WireStatus         = "status"
	WireUpdatedAt      = "updated_at"
	WireCreatedAt      = "created_at"
	WireSubmittedAt    = "submitted_at"
	WireApprovedAt     = "approved_at"
)

var (
	byField = map[string]*Binding{}
	byWire  = map[string]*Binding{}
)

func init() {
	for i := range Bindings {
		b := &Bindings[i]
		if _, dup := byField[b.Field]; dup {
			panic("report: duplicate field binding " + b.Field)
		}
		if _, dup := byWire[b.Wire]; dup {
			panic("report: duplicate wire binding " + b.Wire)
		}
		byField[b.Field] = b
		byWire[b.Wire] = b
	}
}

// BindingByField looks a binding up by portal name.
func BindingByField(field string) (*Binding, bool) {
	b, ok := byField[field]
	return b, ok
}

// BindingByWire looks a binding up by backend name.
func BindingByWire(wire string) (*Binding, bool) {
	b, ok := byWire[wire]
	return b, ok
}

func (b *Binding) value(r *MonthlyReport) any {
	switch b.Kind {
	case KindInt:
		return *b.intPtr(r)
	case KindFloat:
		return *b.floatPtr(r)
	default:
		return *b.boolPtr(r)
	}
}

func (b *Binding) assign(r *MonthlyReport, v any) error {
	switch b.Kind {
	case KindInt:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		*b.intPtr(r) = n
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return err
		}
		*b.floatPtr(r) = f
	default:
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("must be true or false")
		}
		*b.boolPtr(r) = bv
	}
	return nil
}

// ToAPI renders r in the backend's upsert shape for the given period.
// total_referrals is always the computed sum.
func ToAPI(r *MonthlyReport, year, month int) map[string]any {
	out := make(map[string]any, len(Bindings)+3)
	out[WireYear] = year
	out[WireMonth] = month
	for i := range Bindings {
		b := &Bindings[i]
		out[b.Wire] = b.value(r)
	}
	out[WireTotalReferrals] = r.Metrics().TotalReferrals
	return out
}

// FromAPI builds a report from a backend record. Absent or null fields keep
// their defaults; a value of the wrong type is an error.
func FromAPI(payload map[string]any) (*MonthlyReport, error) {
	r := New()
	errs := ValidationErrors{}

	for i := range Bindings {
		b := &Bindings[i]
		v, ok := payload[b.Wire]
		if !ok || v == nil {
			continue
		}
		if err := b.assign(r, v); err != nil {
			errs[b.Wire] = err.Error()
		}
	}

	if s, ok := payload[WireStatus].(string); ok && s != "" {
		r.Status = Status(s)
	}
	r.LastSaved = stringOr(payload[WireUpdatedAt])
	r.CreatedAt = stringOr(payload[WireCreatedAt])
	r.SubmittedAt = stringOr(payload[WireSubmittedAt])
	r.ApprovedAt = stringOr(payload[WireApprovedAt])

	if len(errs) > 0 {
		return nil, errs
	}
	return r, nil
}

// DecodeAPI is FromAPI over raw JSON.
func DecodeAPI(data []byte) (*MonthlyReport, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return FromAPI(payload)
}

func stringOr(v any) string {
	s, _ := v.(string)
	return s
}

var errNotInteger = errors.New("must be a whole number")

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, errNotInteger
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errNotInteger
		}
		return int(i), nil
	}
	return 0, errNotInteger
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		if math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, errors.New("must be a number")
		}
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errors.New("must be a number")
		}
		return f, nil
	}
	return 0, errors.New("must be a number")
}
