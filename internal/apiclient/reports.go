package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"hospital-portal/internal/models"
	"hospital-portal/internal/report"
)

func reportPath(k report.Key) string {
	return fmt.Sprintf("/%s/monthly-report/%d/%d", k.Ward, k.Year, k.Month)
}

// GetMonthlyReport fetches one report. A missing report is an *APIError with
// status 404; use IsNotFound.
func (c *Client) GetMonthlyReport(ctx context.Context, k report.Key) (*report.MonthlyReport, error) {
	var payload map[string]any
	if err := c.do(ctx, http.MethodGet, reportPath(k), nil, &payload); err != nil {
		return nil, err
	}
	r, err := report.FromAPI(payload)
	if err != nil {
		return nil, fmt.Errorf("decode report %s: %w", k, err)
	}
	return r, nil
}

// SaveMonthlyReport upserts the report for k.
func (c *Client) SaveMonthlyReport(ctx context.Context, k report.Key, r *report.MonthlyReport) (*models.MessageResponse, error) {
	var out models.MessageResponse
	path := fmt.Sprintf("/%s/monthly-report", k.Ward)
	if err := c.do(ctx, http.MethodPost, path, report.ToAPI(r, k.Year, k.Month), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitMonthlyReport moves a saved report to "submitted".
func (c *Client) SubmitMonthlyReport(ctx context.Context, k report.Key, notes string) (*models.MessageResponse, error) {
	body := map[string]any{
		"year":  k.Year,
		"month": k.Month,
		"notes": notes,
	}
	var out models.MessageResponse
	path := fmt.Sprintf("/%s/monthly-report/submit", k.Ward)
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveMonthlyReport moves a submitted report to "approved". Administrators only.
func (c *Client) ApproveMonthlyReport(ctx context.Context, k report.Key) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(ctx, http.MethodPut, reportPath(k)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMonthlyReport removes a draft report.
func (c *Client) DeleteMonthlyReport(ctx context.Context, k report.Key) (*models.MessageResponse, error) {
	var out models.MessageResponse
	if err := c.do(ctx, http.MethodDelete, reportPath(k), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMonthlyReports returns the raw backend records for a year. Each record
// carries the report fields plus computed totals such as total_admissions.
func (c *Client) ListMonthlyReports(ctx context.Context, ward string, year int) ([]map[string]any, error) {
	var out []map[string]any
	path := fmt.Sprintf("/%s/monthly-reports/%d", ward, year)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
