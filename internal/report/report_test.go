package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	r := New()

	assert.Equal(t, 30, r.TotalBeds)
	assert.Equal(t, 24, r.TotalBedsWard)
	assert.Equal(t, 4, r.TotalBedsIsolation)
	assert.Equal(t, 2, r.TotalBedsHDU)
	assert.Equal(t, StatusDraft, r.Status)
	assert.False(t, r.WITMeetings)
	assert.Empty(t, r.Validate())

	for _, b := range Bindings {
		if b.Group == GroupBeds {
			continue
		}
		v, ok := r.Get(b.Field)
		require.True(t, ok)
		switch b.Kind {
		case KindInt:
			assert.Equal(t, 0, v, b.Field)
		case KindFloat:
			assert.Equal(t, 0.0, v, b.Field)
		case KindBool:
			assert.Equal(t, false, v, b.Field)
		}
	}
}

func TestNew_ReturnsIndependentRecords(t *testing.T) {
	a := New()
	b := New()
	a.AdmissionsMale = 9
	assert.Equal(t, 0, b.AdmissionsMale)
}

func TestBindings_AreExhaustive(t *testing.T) {
	assert.Len(t, Bindings, 44)

	var portal map[string]any
	data, err := json.Marshal(New())
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &portal))

	metadata := map[string]bool{"status": true, "lastSaved": true, "createdAt": true, "submittedAt": true, "approvedAt": true}
	for field := range portal {
		if metadata[field] {
			continue
		}
		_, ok := BindingByField(field)
		assert.True(t, ok, "portal field %s has no wire binding", field)
	}

	for _, b := range Bindings {
		_, ok := portal[b.Field]
		assert.True(t, ok, "binding %s has no struct field", b.Field)
	}
}

func TestToAPI_EveryWireKeyExactlyOnce(t *testing.T) {
	payload := ToAPI(New(), 2025, 3)

	assert.Len(t, payload, len(Bindings)+3)
	assert.Equal(t, 2025, payload[WireYear])
	assert.Equal(t, 3, payload[WireMonth])
	assert.Contains(t, payload, WireTotalReferrals)
	for _, b := range Bindings {
		assert.Contains(t, payload, b.Wire)
	}
}

func filledReport() *MonthlyReport {
	r := New()
	for i, b := range Bindings {
		switch b.Kind {
		case KindInt:
			*b.intPtr(r) = i + 1
		case KindFloat:
			*b.floatPtr(r) = float64(i) + 0.25
		case KindBool:
			*b.boolPtr(r) = true
		}
	}
	return r
}

func TestRoundTrip_ThroughWireFormat(t *testing.T) {
	r := filledReport()
	r.Status = StatusSubmitted

	payload := ToAPI(r, 2024, 11)
	payload[WireStatus] = string(r.Status)

	// Go through JSON so numbers arrive as float64, as they do from the backend.
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	got, err := DecodeAPI(data)
	require.NoError(t, err)

	assert.Equal(t, r, got)
}

func TestToAPI_TotalReferralsIsComputed(t *testing.T) {
	r := New()
	r.ReferralsCardiology = 1
	r.ReferralsChestPhysician = 2
	r.ReferralsRadiodiagnosis = 3
	r.ReferralsHeumatology = 4
	r.ReferralsOthers = 5

	assert.Equal(t, 15, ToAPI(r, 2025, 1)[WireTotalReferrals])
}

func TestFromAPI_MetadataAndMissingFields(t *testing.T) {
	r, err := FromAPI(map[string]any{
		"admissions_male":    float64(45),
		"bed_occupancy_rate": 75.5,
		"wit_meetings":       true,
		"midnight_total":     nil,
		"status":             "approved",
		"updated_at":         "2025-01-15T14:30:25",
		"created_at":         "2025-01-02T08:00:00",
		"approved_at":        "2025-02-01T09:00:00",
	})
	require.NoError(t, err)

	assert.Equal(t, 45, r.AdmissionsMale)
	assert.Equal(t, 75.5, r.BedOccupancyRate)
	assert.True(t, r.WITMeetings)
	assert.Equal(t, 0, r.MidnightTotal)
	assert.Equal(t, 30, r.TotalBeds)
	assert.Equal(t, StatusApproved, r.Status)
	assert.Equal(t, "2025-01-15T14:30:25", r.LastSaved)
	assert.Equal(t, "2025-01-02T08:00:00", r.CreatedAt)
	assert.Equal(t, "2025-02-01T09:00:00", r.ApprovedAt)
	assert.Empty(t, r.SubmittedAt)
}

func TestFromAPI_RejectsWrongTypes(t *testing.T) {
	_, err := FromAPI(map[string]any{"discharges": "twelve", "wit_meetings": 1.0})

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "discharges")
	assert.Contains(t, verrs, "wit_meetings")
}

// ── Edit lock ──────────────────────────────────────────────

func TestSet_Draft(t *testing.T) {
	r := New()
	require.NoError(t, r.Set("admissionsMale", 12, false))
	require.NoError(t, r.Set("bedOccupancyRate", 82.5, false))
	require.NoError(t, r.Set("witMeetings", true, false))
	require.NoError(t, r.Set("discharges", float64(40), false))

	assert.Equal(t, 12, r.AdmissionsMale)
	assert.Equal(t, 82.5, r.BedOccupancyRate)
	assert.True(t, r.WITMeetings)
	assert.Equal(t, 40, r.Discharges)
}

func TestSet_RejectedWhenLocked(t *testing.T) {
	for _, status := range []Status{StatusSubmitted, StatusApproved} {
		r := New()
		r.Status = status
		before := *r

		err := r.Set("admissionsMale", 5, false)
		assert.ErrorIs(t, err, ErrEditLocked)
		assert.Equal(t, before, *r)
	}

	r := New()
	before := *r
	assert.ErrorIs(t, r.Set("admissionsMale", 5, true), ErrEditLocked)
	assert.Equal(t, before, *r)
}

func TestSet_InvalidValuesLeaveReportUnchanged(t *testing.T) {
	tests := []struct {
		field string
		value any
	}{
		{"admissionsMale", -1},
		{"admissionsMale", 1.5},
		{"totalBeds", 0},
		{"bedOccupancyRate", 100.5},
		{"deathRate", -0.1},
		{"avgLengthOfStay", -2.0},
		{"witMeetings", "yes"},
		{"discharges", "10"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			r := New()
			before := *r
			err := r.Set(tt.field, tt.value, false)

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
			assert.Equal(t, before, *r)
		})
	}
}

func TestSet_UnknownField(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Set("totalAdmissions", 3, false), ErrUnknownField)
}

func TestAvgLengthOfStayMayExceed100(t *testing.T) {
	r := New()
	assert.NoError(t, r.Set("avgLengthOfStay", 120.0, false))
}

// ── Key ────────────────────────────────────────────────────

func TestKeyValidate(t *testing.T) {
	assert.NoError(t, Key{Ward: "ward1", Year: 2025, Month: 1}.Validate())
	assert.NoError(t, Key{Ward: "ward1", Year: 2030, Month: 12}.Validate())

	for _, k := range []Key{
		{Ward: "ward1", Year: 2025, Month: 0},
		{Ward: "ward1", Year: 2025, Month: 13},
		{Ward: "ward1", Year: 2019, Month: 5},
		{Ward: "ward1", Year: 2031, Month: 5},
	} {
		assert.ErrorIs(t, k.Validate(), ErrInvalidKey, k.String())
	}
}

func TestValidationErrors_Message(t *testing.T) {
	err := ValidationErrors{"total_beds": "must be at least 1", "abg": "must be 0 or greater"}
	assert.Equal(t, "Validation errors: abg: must be 0 or greater, total_beds: must be at least 1", err.Error())
}
