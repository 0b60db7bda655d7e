// Package reportsync moves monthly reports between the portal and the backend
// and turns failures into operator notifications.
package reportsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hospital-portal/internal/apiclient"
	"hospital-portal/internal/models"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/report"
)

// ErrBusy is returned when a save or submit for the same report is in flight.
var ErrBusy = errors.New("a save or submit is already in progress for this report")

// Backend is the subset of the API client the service needs.
type Backend interface {
	GetMonthlyReport(ctx context.Context, k report.Key) (*report.MonthlyReport, error)
	SaveMonthlyReport(ctx context.Context, k report.Key, r *report.MonthlyReport) (*models.MessageResponse, error)
	SubmitMonthlyReport(ctx context.Context, k report.Key, notes string) (*models.MessageResponse, error)
	ApproveMonthlyReport(ctx context.Context, k report.Key) (*models.MessageResponse, error)
	DeleteMonthlyReport(ctx context.Context, k report.Key) (*models.MessageResponse, error)
	ListMonthlyReports(ctx context.Context, ward string, year int) ([]map[string]any, error)
}

// Notifier receives operator-facing messages.
type Notifier interface {
	Notify(text string, severity notify.Severity, duration time.Duration) string
}

// Service is safe for concurrent use.
type Service struct {
	backend Backend
	notes   Notifier
	logger  *zap.Logger
	now     func() time.Time

	mu   sync.Mutex
	busy map[report.Key]bool
}

// NewService wires the service.
func NewService(backend Backend, notes Notifier, logger *zap.Logger) *Service {
	return &Service{
		backend: backend,
		notes:   notes,
		logger:  logger,
		now:     time.Now,
		busy:    make(map[report.Key]bool),
	}
}

// Busy reports whether a save or submit for k is in flight.
func (s *Service) Busy(k report.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[k]
}

func (s *Service) acquire(k report.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[k] {
		return false
	}
	s.busy[k] = true
	return true
}

func (s *Service) release(k report.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, k)
}

// Fetch loads the report for k.
//   - no record: defaults, found=false, nil error, no notification
//   - out-of-range period: defaults and an error wrapping report.ErrInvalidKey, one warning
//   - any other failure: defaults and the error, one error notification (none for 401)
func (s *Service) Fetch(ctx context.Context, k report.Key) (*report.MonthlyReport, bool, error) {
	if err := k.Validate(); err != nil {
		s.notes.Notify("Invalid report period: select a month between 1 and 12 and a year between 2020 and 2030", notify.Warning, 0)
		return report.New(), false, err
	}

	r, err := s.backend.GetMonthlyReport(ctx, k)
	switch {
	case err == nil:
		return r, true, nil

	case apiclient.IsNotFound(err):
		s.logger.Debug("no report yet", zap.String("key", k.String()))
		return report.New(), false, nil

	case apiclient.IsValidation(err):
		s.notes.Notify(err.Error(), notify.Warning, 0)
		return report.New(), false, fmt.Errorf("%w: %s", report.ErrInvalidKey, err.Error())
	}

	s.logger.Error("failed to load report", zap.String("key", k.String()), zap.Error(err))
	s.notifyFailure("Failed to load report data", err)
	return report.New(), false, err
}

// Save upserts r. On success LastSaved is stamped with the local clock and the
// status is left as it was. Only drafts can be saved.
func (s *Service) Save(ctx context.Context, k report.Key, r *report.MonthlyReport) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if !s.acquire(k) {
		return ErrBusy
	}
	defer s.release(k)

	return s.saveHeld(ctx, k, r)
}

// saveHeld is Save for a caller that already holds the busy flag for k.
func (s *Service) saveHeld(ctx context.Context, k report.Key, r *report.MonthlyReport) error {
	if err := s.save(ctx, k, r); err != nil {
		return err
	}

	r.LastSaved = s.now().Format(time.RFC3339)
	s.notes.Notify("Data saved as draft", notify.Success, 0)
	s.logger.Info("report saved", zap.String("key", k.String()))
	return nil
}

// Submit saves r and then asks the backend to mark it submitted. r is changed
// only when both steps succeed.
func (s *Service) Submit(ctx context.Context, k report.Key, r *report.MonthlyReport, notes string) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if !s.acquire(k) {
		return ErrBusy
	}
	defer s.release(k)

	return s.submitHeld(ctx, k, r, notes)
}

func (s *Service) submitHeld(ctx context.Context, k report.Key, r *report.MonthlyReport, notes string) error {
	if err := s.save(ctx, k, r); err != nil {
		return err
	}

	if _, err := s.backend.SubmitMonthlyReport(ctx, k, notes); err != nil {
		s.logger.Error("failed to submit report", zap.String("key", k.String()), zap.Error(err))
		s.notifyFailure("Failed to submit data", err)
		return err
	}

	stamp := s.now().Format(time.RFC3339)
	r.LastSaved = stamp
	r.SubmittedAt = stamp
	r.Status = report.StatusSubmitted
	s.notes.Notify("Data submitted for review", notify.Success, 0)
	s.logger.Info("report submitted", zap.String("key", k.String()))
	return nil
}

func (s *Service) save(ctx context.Context, k report.Key, r *report.MonthlyReport) error {
	if !r.Editable() {
		s.notes.Notify("This report has been "+string(r.Status)+" and can no longer be edited", notify.Warning, 0)
		return report.ErrEditLocked
	}
	if errs := r.Validate(); len(errs) > 0 {
		s.notes.Notify(errs.Error(), notify.Error, 0)
		return errs
	}

	if _, err := s.backend.SaveMonthlyReport(ctx, k, r); err != nil {
		s.logger.Error("failed to save report", zap.String("key", k.String()), zap.Error(err))
		s.notifyFailure("Failed to save data", err)
		return err
	}
	return nil
}

// Approve marks a submitted report approved. Only reachable from
// administrator routes; the backend enforces the role as well.
func (s *Service) Approve(ctx context.Context, k report.Key) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if _, err := s.backend.ApproveMonthlyReport(ctx, k); err != nil {
		s.logger.Error("failed to approve report", zap.String("key", k.String()), zap.Error(err))
		s.notifyFailure("Failed to approve report", err)
		return err
	}
	s.notes.Notify("Report approved", notify.Success, 0)
	return nil
}

// Delete removes a draft report.
func (s *Service) Delete(ctx context.Context, k report.Key) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if !s.acquire(k) {
		return ErrBusy
	}
	defer s.release(k)

	if _, err := s.backend.DeleteMonthlyReport(ctx, k); err != nil {
		s.logger.Error("failed to delete report", zap.String("key", k.String()), zap.Error(err))
		s.notifyFailure("Failed to delete draft", err)
		return err
	}
	s.notes.Notify("Draft deleted", notify.Success, 0)
	return nil
}

// notifyFailure turns err into one error notification. 401s are left to the
// session, which logs out.
func (s *Service) notifyFailure(action string, err error) {
	if apiclient.IsUnauthorized(err) || errors.Is(err, context.Canceled) {
		return
	}
	s.notes.Notify(failureText(action, err), notify.Error, 0)
}

func failureText(action string, err error) string {
	var verrs report.ValidationErrors
	var apiErr *apiclient.APIError
	switch {
	case apiclient.IsNetwork(err):
		return apiclient.NetworkMessage
	case errors.As(err, &verrs):
		return verrs.Error()
	case errors.As(err, &apiErr) && apiErr.Status == 422:
		return apiErr.Message
	case errors.As(err, &apiErr):
		return action + ": " + apiErr.Message
	}
	return action
}
