package report

import "math"

// Severity is a presentation band for a mortality rate.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityNormal   Severity = "normal"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// occupancyTolerance is how far, in percentage points, the entered occupancy
// rate may drift from the midnight-census suggestion before it is flagged.
const occupancyTolerance = 0.5

// Metrics are derived from the raw inputs on every call and never stored.
type Metrics struct {
	TotalAdmissions    int `json:"totalAdmissions"`
	TotalReferrals     int `json:"totalReferrals"`
	TotalTransfersIn   int `json:"totalTransfersIn"`
	TotalTransfersOut  int `json:"totalTransfersOut"`
	NetTransferBalance int `json:"netTransferBalance"`
	TotalXrays         int `json:"totalXrays"`
	TotalECGs          int `json:"totalEcgs"`

	SuggestedOccupancyRate float64 `json:"suggestedOccupancyRate"`
	OccupancyDiverges      bool    `json:"occupancyDiverges"`

	MortalityRateDischarges float64  `json:"mortalityRateDischarges"`
	MortalityRateAdmissions float64  `json:"mortalityRateAdmissions"`
	DischargeSeverity       Severity `json:"dischargeSeverity"`
	AdmissionSeverity       Severity `json:"admissionSeverity"`
	SurvivalRate            float64  `json:"survivalRate"`
}

// Metrics computes every derived figure.
func (r *MonthlyReport) Metrics() Metrics {
	m := Metrics{
		TotalAdmissions: r.AdmissionsMale + r.AdmissionsFemale,
		TotalReferrals: r.ReferralsCardiology + r.ReferralsChestPhysician +
			r.ReferralsRadiodiagnosis + r.ReferralsHeumatology + r.ReferralsOthers,
		TotalTransfersIn:  r.WeekdayTransfersIn + r.WeekendTransfersIn,
		TotalTransfersOut: r.WeekdayTransfersOut + r.WeekendTransfersOut,
		TotalXrays:        r.XrayInward + r.XrayDepartmental,
		TotalECGs:         r.ECGInward + r.ECGDepartmental,
	}
	m.NetTransferBalance = m.TotalTransfersIn - m.TotalTransfersOut

	m.SuggestedOccupancyRate = SuggestedOccupancyRate(r.MidnightTotal, r.BedCapacity())
	m.OccupancyDiverges = r.BedOccupancyRate > 0 && m.SuggestedOccupancyRate > 0 &&
		math.Abs(r.BedOccupancyRate-m.SuggestedOccupancyRate) > occupancyTolerance

	m.MortalityRateDischarges = MortalityRate(r.NumberOfDeath, r.Discharges)
	m.MortalityRateAdmissions = MortalityRate(r.NumberOfDeath, m.TotalAdmissions)
	m.DischargeSeverity = SeverityFor(m.MortalityRateDischarges)
	m.AdmissionSeverity = SeverityFor(m.MortalityRateAdmissions)

	m.SurvivalRate = 100
	if r.Discharges > 0 {
		m.SurvivalRate = 100 - m.MortalityRateDischarges
	}
	return m
}

// BedCapacity is the sum of the unit capacities, or TotalBeds when no unit
// capacity has been entered.
func (r *MonthlyReport) BedCapacity() int {
	units := r.TotalBedsWard + r.TotalBedsIsolation + r.TotalBedsHDU
	if units > 0 {
		return units
	}
	return r.TotalBeds
}

// SuggestedOccupancyRate is midnight census over capacity as a percentage,
// rounded to two decimals; 0 unless both are positive.
func SuggestedOccupancyRate(midnightTotal, beds int) float64 {
	if beds <= 0 || midnightTotal <= 0 {
		return 0
	}
	return round2(float64(midnightTotal) / float64(beds) * 100)
}

// MortalityRate is deaths per 100 of base; 0 when base is not positive.
func MortalityRate(deaths, base int) float64 {
	if base <= 0 {
		return 0
	}
	return float64(deaths) * 100 / float64(base)
}

// SeverityFor bands a mortality rate: ≤2 low, ≤5 normal, ≤10 high, else critical.
func SeverityFor(rate float64) Severity {
	switch {
	case rate <= 2:
		return SeverityLow
	case rate <= 5:
		return SeverityNormal
	case rate <= 10:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
