package report

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors maps a field name to its message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v[k]))
	}
	return "Validation errors: " + strings.Join(parts, ", ")
}

// Validate checks every bound field. An empty map means the report is valid.
func (r *MonthlyReport) Validate() ValidationErrors {
	errs := ValidationErrors{}
	for i := range Bindings {
		for k, msg := range r.validateField(&Bindings[i]) {
			errs[k] = msg
		}
	}

	switch r.Status {
	case StatusDraft, StatusSubmitted, StatusApproved:
	default:
		errs["status"] = "Status must be 'draft', 'submitted', or 'approved'"
	}
	return errs
}

func (r *MonthlyReport) validateField(b *Binding) ValidationErrors {
	errs := ValidationErrors{}
	switch b.Kind {
	case KindInt:
		n := *b.intPtr(r)
		if b.Field == "totalBeds" {
			if n < 1 {
				errs[b.Field] = "Total beds must be at least 1"
			}
		} else if n < 0 {
			errs[b.Field] = "Must be 0 or greater"
		}
	case KindFloat:
		f := *b.floatPtr(r)
		switch {
		case f < 0:
			errs[b.Field] = "Must be 0 or greater"
		case isPercentage(b.Field) && f > 100:
			errs[b.Field] = "Must be between 0 and 100"
		}
	}
	return errs
}

func isPercentage(field string) bool {
	return field == "bedOccupancyRate" || field == "deathRate"
}
