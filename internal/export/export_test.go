package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hospital-portal/internal/models"
	"hospital-portal/internal/report"
)

func sampleOverview() *models.YearOverview {
	months := make([]models.MonthSummary, 12)
	for i := range months {
		months[i] = models.MonthSummary{Month: i + 1, MonthName: time.Month(i + 1).String(), Status: models.MonthNotStarted}
	}
	months[0] = models.MonthSummary{Month: 1, MonthName: "January", Status: "approved", TotalAdmissions: 40, Discharges: 35, BedOccupancyRate: 82.5}
	months[1] = models.MonthSummary{Month: 2, MonthName: "February", Status: "draft", TotalAdmissions: 10, Discharges: 5}

	return &models.YearOverview{
		Ward:   "ward1",
		Year:   2025,
		Months: months,
		Stats:  models.YearStats{Completed: 2, Draft: 1, Approved: 1, NotStarted: 10, CompletionPercent: 16.7},
	}
}

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	require.NoError(t, err)
	return v
}

func TestYearWorkbook(t *testing.T) {
	data, err := YearWorkbook(sampleOverview())
	require.NoError(t, err)
	f := open(t, data)

	assert.Equal(t, []string{overviewSheet}, f.GetSheetList())
	assert.Equal(t, "ward1 monthly data 2025", cell(t, f, overviewSheet, "A1"))
	assert.Equal(t, "Month", cell(t, f, overviewSheet, "A3"))
	assert.Equal(t, "January", cell(t, f, overviewSheet, "A4"))
	assert.Equal(t, "40", cell(t, f, overviewSheet, "C4"))
	assert.Equal(t, "not_started", cell(t, f, overviewSheet, "B15"))
	assert.Empty(t, cell(t, f, overviewSheet, "C15"))

	// totals follow the twelve month rows
	assert.Equal(t, "Total", cell(t, f, overviewSheet, "A16"))
	assert.Equal(t, "16.7% complete", cell(t, f, overviewSheet, "B16"))
	assert.Equal(t, "50", cell(t, f, overviewSheet, "C16"))
	assert.Equal(t, "40", cell(t, f, overviewSheet, "D16"))
}

func TestReportWorkbook(t *testing.T) {
	r := report.New()
	r.AdmissionsMale = 6
	r.AdmissionsFemale = 4
	r.WITMeetings = true
	k := report.Key{Ward: "ward1", Year: 2025, Month: 3}

	data, err := ReportWorkbook(k, r)
	require.NoError(t, err)
	f := open(t, data)

	assert.Equal(t, []string{reportSheet, metricsSheet}, f.GetSheetList())
	assert.Equal(t, "ward1 2025-03 (draft)", cell(t, f, reportSheet, "A1"))

	rows, err := f.GetRows(reportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3+len(report.Bindings))

	var wit string
	for _, row := range rows {
		if len(row) == 3 && row[1] == "WIT meeting held" {
			wit = row[2]
		}
	}
	assert.Equal(t, "Yes", wit)

	assert.Equal(t, "Total admissions", cell(t, f, metricsSheet, "A2"))
	assert.Equal(t, "10", cell(t, f, metricsSheet, "B2"))
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "ward1/ward1_2025_overview.xlsx", YearFileName("ward1", 2025))
	assert.Equal(t, "ward1/ward1_2025_03.xlsx", ReportFileName(report.Key{Ward: "ward1", Year: 2025, Month: 3}))
}
