package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hospital-portal/internal/export"
	"hospital-portal/internal/models"
	"hospital-portal/internal/report"
	"hospital-portal/internal/reportsync"
	"hospital-portal/internal/storage"
)

// ReportHandler runs the monthly report workflow for one ward.
type ReportHandler struct {
	ward   string
	ws     *reportsync.Workspace
	svc    *reportsync.Service
	files  storage.Store
	logger *zap.Logger
}

// NewReportHandler creates a ReportHandler for ward.
func NewReportHandler(ward string, ws *reportsync.Workspace, svc *reportsync.Service, files storage.Store, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{ward: ward, ws: ws, svc: svc, files: files, logger: logger}
}

// Get returns the working copy for the month, loading it on first access.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}
	rep, found, err := h.ws.Open(r.Context(), k)
	if err != nil {
		h.reportError(w, err)
		return
	}
	JSON(w, http.StatusOK, h.view(k, rep, found))
}

// Reload discards local edits and fetches the month again.
func (h *ReportHandler) Reload(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}
	rep, found, err := h.ws.Reload(r.Context(), k)
	if err != nil {
		h.reportError(w, err)
		return
	}
	JSON(w, http.StatusOK, h.view(k, rep, found))
}

// Update applies field edits, e.g. {"admissionsMale": 12, "witMeetings": true}.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}

	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(fields) == 0 {
		JSONError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	rep, err := h.ws.Update(r.Context(), k, fields)
	if err != nil {
		h.reportError(w, err)
		return
	}
	JSON(w, http.StatusOK, h.view(k, rep, true))
}

// Save stores the working copy as a draft.
func (h *ReportHandler) Save(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}
	rep, err := h.ws.Save(r.Context(), k)
	if err != nil {
		h.reportError(w, err)
		return
	}
	JSON(w, http.StatusOK, h.view(k, rep, true))
}

// Submit saves and submits the working copy for review.
func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}

	var req models.SubmitRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			JSONError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	}

	rep, err := h.ws.Submit(r.Context(), k, req.Notes)
	if err != nil {
		h.reportError(w, err)
		return
	}
	JSON(w, http.StatusOK, h.view(k, rep, true))
}

// Delete removes a draft and forgets the working copy.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), k); err != nil {
		h.reportError(w, err)
		return
	}
	h.ws.Discard(k)
	JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Draft deleted"})
}

// Year returns the twelve-month overview.
func (h *ReportHandler) Year(w http.ResponseWriter, r *http.Request) {
	ward, year, ok := h.wardYear(w, r)
	if !ok {
		return
	}
	ov, err := h.svc.ListByYear(r.Context(), ward, year)
	if err != nil {
		h.reportError(w, err)
		return
	}
	JSON(w, http.StatusOK, ov)
}

// ExportYear returns the overview as a workbook. With ?save=true the file is
// kept in export storage and its location returned instead.
func (h *ReportHandler) ExportYear(w http.ResponseWriter, r *http.Request) {
	ward, year, ok := h.wardYear(w, r)
	if !ok {
		return
	}
	ov, err := h.svc.ListByYear(r.Context(), ward, year)
	if err != nil {
		h.reportError(w, err)
		return
	}
	data, err := export.YearWorkbook(ov)
	if err != nil {
		h.logger.Error("failed to build yearly workbook", zap.Error(err))
		JSONError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}
	h.deliver(w, r, export.YearFileName(ward, year), data)
}

// ExportMonth returns the working copy of one month as a workbook.
func (h *ReportHandler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}
	rep, _, err := h.ws.Open(r.Context(), k)
	if err != nil {
		h.reportError(w, err)
		return
	}
	data, err := export.ReportWorkbook(k, rep)
	if err != nil {
		h.logger.Error("failed to build report workbook", zap.Error(err))
		JSONError(w, http.StatusInternalServerError, "Failed to build export")
		return
	}
	h.deliver(w, r, export.ReportFileName(k), data)
}

// Approve marks a submitted report approved. Mounted on administrator routes.
func (h *ReportHandler) Approve(w http.ResponseWriter, r *http.Request) {
	k, ok := h.key(w, r)
	if !ok {
		return
	}
	if err := h.svc.Approve(r.Context(), k); err != nil {
		h.reportError(w, err)
		return
	}
	h.ws.Discard(k)
	JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Report approved"})
}

func (h *ReportHandler) deliver(w http.ResponseWriter, r *http.Request, dest string, data []byte) {
	if r.URL.Query().Get("save") == "true" {
		info, err := h.files.Save(r.Context(), dest, data, export.ContentType)
		if err != nil {
			h.logger.Error("failed to store export", zap.String("path", dest), zap.Error(err))
			JSONError(w, http.StatusInternalServerError, "Failed to save export")
			return
		}
		JSON(w, http.StatusOK, info)
		return
	}

	name := path.Base(dest)
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *ReportHandler) view(k report.Key, rep *report.MonthlyReport, found bool) models.ReportView {
	return models.ReportView{
		Ward:     k.Ward,
		Year:     k.Year,
		Month:    k.Month,
		Found:    found,
		Editable: rep.Editable() && !h.svc.Busy(k),
		Busy:     h.svc.Busy(k),
		Report:   rep,
		Metrics:  rep.Metrics(),
	}
}

// key reads {year}/{month} and, on admin routes, {ward}.
func (h *ReportHandler) key(w http.ResponseWriter, r *http.Request) (report.Key, bool) {
	ward, year, ok := h.wardYear(w, r)
	if !ok {
		return report.Key{}, false
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Month must be a number")
		return report.Key{}, false
	}
	return report.Key{Ward: ward, Year: year, Month: month}, true
}

func (h *ReportHandler) wardYear(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	ward := h.ward
	if p := chi.URLParam(r, "ward"); p != "" {
		ward = p
	}
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		JSONError(w, http.StatusBadRequest, "Year must be a number")
		return "", 0, false
	}
	return ward, year, true
}

func (h *ReportHandler) reportError(w http.ResponseWriter, err error) {
	var verrs report.ValidationErrors
	switch {
	case errors.Is(err, reportsync.ErrBusy):
		JSONError(w, http.StatusConflict, "A save or submit is already in progress")
	case errors.Is(err, reportsync.ErrDiscarded):
		JSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, report.ErrEditLocked):
		JSONError(w, http.StatusConflict, "Report is locked for editing")
	case errors.Is(err, report.ErrInvalidKey):
		JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrUnknownField):
		validationFailed(w, map[string]string{"field": err.Error()})
	case errors.As(err, &verrs):
		validationFailed(w, verrs)
	default:
		backendError(w, err)
	}
}
