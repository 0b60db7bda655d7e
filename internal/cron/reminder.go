// Package cron runs the portal's background jobs.
package cron

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"hospital-portal/internal/models"
	"hospital-portal/internal/notify"
	"hospital-portal/internal/report"
	"hospital-portal/internal/session"
)

// Overview is the part of the report sync service the reminder reads. It must
// not raise notifications of its own; reminder failures are only logged.
type Overview interface {
	YearOverview(ctx context.Context, ward string, year int) (*models.YearOverview, error)
}

// Sessions exposes who is signed in.
type Sessions interface {
	State() session.State
}

// Notifier receives the reminder.
type Notifier interface {
	Notify(text string, severity notify.Severity, duration time.Duration) string
}

const reminderDuration = 10 * time.Second

// Reminder warns the ward when last month's report has not been submitted.
// It only speaks to users of the ward's own department and says it at most
// once per day per month.
type Reminder struct {
	ward       string
	department string
	overview   Overview
	sessions   Sessions
	notes      Notifier
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	lastSent map[string]string // "2025-02" -> "2025-03-04"
}

// NewReminder creates a reminder for ward, shown to users of department.
func NewReminder(ward, department string, overview Overview, sessions Sessions, notes Notifier, logger *zap.Logger) *Reminder {
	return &Reminder{
		ward:       ward,
		department: department,
		overview:   overview,
		sessions:   sessions,
		notes:      notes,
		logger:     logger,
		now:        time.Now,
		lastSent:   make(map[string]string),
	}
}

// Start runs a check immediately and then every interval until ctx is done.
func (r *Reminder) Start(ctx context.Context, interval time.Duration) {
	go func() {
		r.RunOnce(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RunOnce(ctx)
			}
		}
	}()

	r.logger.Info("submission reminder started", zap.String("ward", r.ward), zap.Duration("interval", interval))
}

// RunOnce performs one check and reports whether a reminder was raised.
func (r *Reminder) RunOnce(ctx context.Context) bool {
	st := r.sessions.State()
	if !st.IsAuthenticated || st.User == nil || !strings.EqualFold(st.User.DepartmentName, r.department) {
		return false
	}

	now := r.now()
	due := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	if due.Year() < report.MinYear || due.Year() > report.MaxYear {
		return false
	}

	period := due.Format("2006-01")
	today := now.Format("2006-01-02")
	r.mu.Lock()
	sent := r.lastSent[period] == today
	r.mu.Unlock()
	if sent {
		return false
	}

	cctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ov, err := r.overview.YearOverview(cctx, r.ward, due.Year())
	if err != nil {
		r.logger.Warn("reminder check failed", zap.Error(err))
		return false
	}

	m := ov.Months[int(due.Month())-1]
	if m.Status == string(report.StatusSubmitted) || m.Status == string(report.StatusApproved) {
		return false
	}

	r.notes.Notify(
		fmt.Sprintf("The %s %d report has not been submitted yet", due.Month(), due.Year()),
		notify.Warning,
		reminderDuration,
	)

	r.mu.Lock()
	r.lastSent[period] = today
	r.mu.Unlock()
	r.logger.Info("submission reminder raised", zap.String("period", period), zap.String("status", m.Status))
	return true
}
