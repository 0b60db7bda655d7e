// Package export renders monthly reports and yearly overviews as Excel workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hospital-portal/internal/models"
	"hospital-portal/internal/report"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	overviewSheet = "Overview"
	reportSheet   = "Report"
	metricsSheet  = "Metrics"
)

var overviewHeader = []string{
	"Month",
	"Status",
	"Total Admissions",
	"Discharges",
	"Bed Occupancy Rate (%)",
	"Last Updated",
}

var overviewWidths = []float64{14, 14, 18, 14, 22, 22}

// YearFileName is the export path for a yearly overview.
func YearFileName(ward string, year int) string {
	return fmt.Sprintf("%s/%s_%d_overview.xlsx", ward, ward, year)
}

// ReportFileName is the export path for one monthly report.
func ReportFileName(k report.Key) string {
	return fmt.Sprintf("%s/%s_%d_%02d.xlsx", k.Ward, k.Ward, k.Year, k.Month)
}

// YearWorkbook renders the twelve-month overview with a totals row.
func YearWorkbook(ov *models.YearOverview) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := initSheet(f, overviewSheet); err != nil {
		return nil, err
	}
	header, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s monthly data %d", ov.Ward, ov.Year)
	if err := f.SetCellValue(overviewSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := writeRow(f, overviewSheet, 3, toAny(overviewHeader), header); err != nil {
		return nil, err
	}

	var admissions, discharges int
	row := 4
	for _, m := range ov.Months {
		values := []any{m.MonthName, m.Status, m.TotalAdmissions, m.Discharges, m.BedOccupancyRate, m.LastUpdated}
		if m.Status == models.MonthNotStarted {
			values = []any{m.MonthName, m.Status}
		}
		if err := writeRow(f, overviewSheet, row, values, 0); err != nil {
			return nil, err
		}
		admissions += m.TotalAdmissions
		discharges += m.Discharges
		row++
	}

	totals := []any{"Total", fmt.Sprintf("%.1f%% complete", ov.Stats.CompletionPercent), admissions, discharges}
	if err := writeRow(f, overviewSheet, row, totals, header); err != nil {
		return nil, err
	}

	for i, w := range overviewWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(overviewSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetPanes(overviewSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      3,
		TopLeftCell: "A4",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze panes: %w", err)
	}

	return write(f)
}

// ReportWorkbook renders every field of one monthly report, grouped as on the
// entry form, plus a sheet of derived metrics.
func ReportWorkbook(k report.Key, r *report.MonthlyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := initSheet(f, reportSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(metricsSheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	header, err := headerStyle(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetCellValue(reportSheet, "A1", fmt.Sprintf("%s %s (%s)", k.Ward, periodLabel(k), r.Status)); err != nil {
		return nil, err
	}
	if err := writeRow(f, reportSheet, 3, []any{"Group", "Field", "Value"}, header); err != nil {
		return nil, err
	}

	row := 4
	for _, b := range report.Bindings {
		v, _ := r.Get(b.Field)
		if flag, ok := v.(bool); ok {
			v = yesNo(flag)
		}
		if err := writeRow(f, reportSheet, row, []any{b.Group, b.Label, v}, 0); err != nil {
			return nil, err
		}
		row++
	}

	m := r.Metrics()
	metrics := [][]any{
		{"Total admissions", m.TotalAdmissions},
		{"Total referrals", m.TotalReferrals},
		{"Transfers in", m.TotalTransfersIn},
		{"Transfers out", m.TotalTransfersOut},
		{"Net transfer balance", m.NetTransferBalance},
		{"Total X-rays", m.TotalXrays},
		{"Total ECGs", m.TotalECGs},
		{"Suggested occupancy rate (%)", m.SuggestedOccupancyRate},
		{"Mortality rate per discharges (%)", m.MortalityRateDischarges},
		{"Mortality rate per admissions (%)", m.MortalityRateAdmissions},
		{"Survival rate (%)", m.SurvivalRate},
	}
	if err := writeRow(f, metricsSheet, 1, []any{"Metric", "Value"}, header); err != nil {
		return nil, err
	}
	for i, values := range metrics {
		if err := writeRow(f, metricsSheet, i+2, values, 0); err != nil {
			return nil, err
		}
	}

	for sheet, widths := range map[string][]float64{reportSheet: {18, 36, 14}, metricsSheet: {36, 14}} {
		for i, w := range widths {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, col, col, w); err != nil {
				return nil, fmt.Errorf("set column width: %w", err)
			}
		}
	}

	return write(f)
}

func initSheet(f *excelize.File, name string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("find sheet: %w", err)
	}
	f.SetActiveSheet(index)
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return 0, fmt.Errorf("create header style: %w", err)
	}
	return style, nil
}

// writeRow writes values from column A. A non-zero style is applied to every written cell.
func writeRow(f *excelize.File, sheet string, row int, values []any, style int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
		if style != 0 {
			if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
				return fmt.Errorf("style cell %s: %w", cell, err)
			}
		}
	}
	return nil
}

func write(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func periodLabel(k report.Key) string {
	return fmt.Sprintf("%d-%02d", k.Year, k.Month)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
