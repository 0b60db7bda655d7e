package reportsync

import (
	"context"
	"errors"
	"sync"

	"hospital-portal/internal/report"
)

// ErrDiscarded is returned when the working copy was dropped (deleted or
// approved) while an edit or save was starting.
var ErrDiscarded = errors.New("the report was closed while it was being edited; open it again")

// Workspace holds the report currently being edited for each period. Edits
// apply to the working copy; nothing reaches the backend until Save or Submit.
type Workspace struct {
	svc *Service

	mu     sync.Mutex
	drafts map[report.Key]*entry
}

type entry struct {
	report *report.MonthlyReport
	found  bool
}

// NewWorkspace returns an empty workspace backed by svc.
func NewWorkspace(svc *Service) *Workspace {
	return &Workspace{svc: svc, drafts: make(map[report.Key]*entry)}
}

// Open returns a copy of the working report for k, loading it from the backend
// on first use. found is false when the backend had no record.
func (w *Workspace) Open(ctx context.Context, k report.Key) (*report.MonthlyReport, bool, error) {
	w.mu.Lock()
	e, ok := w.drafts[k]
	w.mu.Unlock()
	if ok {
		return e.report.Clone(), e.found, nil
	}
	return w.Reload(ctx, k)
}

// Reload discards local edits and fetches k again. Failed fetches are not cached.
func (w *Workspace) Reload(ctx context.Context, k report.Key) (*report.MonthlyReport, bool, error) {
	r, found, err := w.svc.Fetch(ctx, k)
	if err != nil {
		return r, found, err
	}

	w.mu.Lock()
	w.drafts[k] = &entry{report: r.Clone(), found: found}
	w.mu.Unlock()
	return r, found, nil
}

// Update applies field edits to the working copy. Edits are refused while a
// save or submit for k is running and once the report has left draft. Either
// every edit applies or none does.
func (w *Workspace) Update(ctx context.Context, k report.Key, fields map[string]any) (*report.MonthlyReport, error) {
	for attempt := 0; ; attempt++ {
		if _, _, err := w.Open(ctx, k); err != nil {
			return nil, err
		}

		w.mu.Lock()
		e := w.drafts[k]
		if e == nil {
			// discarded between Open and Lock
			w.mu.Unlock()
			if attempt > 0 {
				return nil, ErrDiscarded
			}
			continue
		}

		// read under w.mu: push marks k busy before copying the draft
		disabled := w.svc.Busy(k)
		next := e.report.Clone()
		for field, value := range fields {
			if err := next.Set(field, value, disabled); err != nil {
				w.mu.Unlock()
				return nil, err
			}
		}
		e.report = next
		w.mu.Unlock()
		return next.Clone(), nil
	}
}

// Save pushes the working copy for k.
func (w *Workspace) Save(ctx context.Context, k report.Key) (*report.MonthlyReport, error) {
	return w.push(ctx, k, func(r *report.MonthlyReport) error {
		return w.svc.saveHeld(ctx, k, r)
	})
}

// Submit saves and submits the working copy for k.
func (w *Workspace) Submit(ctx context.Context, k report.Key, notes string) (*report.MonthlyReport, error) {
	return w.push(ctx, k, func(r *report.MonthlyReport) error {
		return w.svc.submitHeld(ctx, k, r, notes)
	})
}

// Discard forgets the working copy for k.
func (w *Workspace) Discard(k report.Key) {
	w.mu.Lock()
	delete(w.drafts, k)
	w.mu.Unlock()
}

func (w *Workspace) push(ctx context.Context, k report.Key, fn func(*report.MonthlyReport) error) (*report.MonthlyReport, error) {
	if _, _, err := w.Open(ctx, k); err != nil {
		return nil, err
	}
	if !w.svc.acquire(k) {
		return nil, ErrBusy
	}
	defer w.svc.release(k)

	w.mu.Lock()
	e := w.drafts[k]
	if e == nil {
		w.mu.Unlock()
		return nil, ErrDiscarded
	}
	current := e.report.Clone()
	w.mu.Unlock()

	if err := fn(current); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.drafts[k] = &entry{report: current.Clone(), found: true}
	w.mu.Unlock()
	return current, nil
}
