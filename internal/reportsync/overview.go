package reportsync

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"hospital-portal/internal/models"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/report"
)

// ListByYear returns all twelve months of a year; months without a record are
// reported as not started. On failure the overview is still complete (every
// month not started) and one notification is raised.
func (s *Service) ListByYear(ctx context.Context, ward string, year int) (*models.YearOverview, error) {
	overview, err := s.YearOverview(ctx, ward, year)
	switch {
	case err == nil:
	case errors.Is(err, report.ErrInvalidKey):
		s.notes.Notify(err.Error(), notify.Warning, 0)
	default:
		s.logger.Error("failed to load yearly overview", zap.String("ward", ward), zap.Int("year", year), zap.Error(err))
		s.notifyFailure("Failed to load yearly overview data", err)
	}
	return overview, err
}

// YearOverview is ListByYear without notifications, for background callers
// that only log.
func (s *Service) YearOverview(ctx context.Context, ward string, year int) (*models.YearOverview, error) {
	overview := emptyOverview(ward, year)

	if year < report.MinYear || year > report.MaxYear {
		return overview, fmt.Errorf("%w: year must be between %d and %d", report.ErrInvalidKey, report.MinYear, report.MaxYear)
	}

	records, err := s.backend.ListMonthlyReports(ctx, ward, year)
	if err != nil {
		return overview, err
	}

	for _, rec := range records {
		month, ok := intValue(rec[report.WireMonth])
		if !ok || month < 1 || month > 12 {
			continue
		}
		overview.Months[month-1] = summarize(month, rec)
	}
	overview.Stats = computeStats(overview.Months)
	return overview, nil
}

func emptyOverview(ward string, year int) *models.YearOverview {
	months := make([]models.MonthSummary, 12)
	for i := range months {
		months[i] = models.MonthSummary{
			Month:     i + 1,
			MonthName: time.Month(i + 1).String(),
			Status:    models.MonthNotStarted,
		}
	}
	return &models.YearOverview{
		Ward:   ward,
		Year:   year,
		Months: months,
		Stats:  computeStats(months),
	}
}

func summarize(month int, rec map[string]any) models.MonthSummary {
	sum := models.MonthSummary{
		Month:     month,
		MonthName: time.Month(month).String(),
		Status:    string(report.StatusDraft),
	}
	if s, ok := rec[report.WireStatus].(string); ok && s != "" {
		sum.Status = s
	}
	sum.LastUpdated, _ = rec[report.WireUpdatedAt].(string)

	if n, ok := intValue(rec["total_admissions"]); ok {
		sum.TotalAdmissions = n
	} else {
		male, _ := intValue(rec["admissions_male"])
		female, _ := intValue(rec["admissions_female"])
		sum.TotalAdmissions = male + female
	}
	sum.Discharges, _ = intValue(rec["discharges"])
	if f, ok := rec["bed_occupancy_rate"].(float64); ok {
		sum.BedOccupancyRate = f
	}
	return sum
}

func computeStats(months []models.MonthSummary) models.YearStats {
	var st models.YearStats
	for _, m := range months {
		switch m.Status {
		case models.MonthNotStarted:
			st.NotStarted++
			continue
		case string(report.StatusDraft):
			st.Draft++
		case string(report.StatusSubmitted):
			st.Submitted++
		case string(report.StatusApproved):
			st.Approved++
		}
		st.Completed++
	}
	if len(months) > 0 {
		st.CompletionPercent = math.Round(float64(st.Completed)/float64(len(months))*1000) / 10
	}
	return st
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}
