package reportsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/report"
)

func TestWorkspace_EditSaveSubmit(t *testing.T) {
	svc, be, _ := newTestService()
	ws := NewWorkspace(svc)
	ctx := context.Background()

	r, found, err := ws.Open(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 24, r.TotalBedsWard)

	r, err = ws.Update(ctx, key, map[string]any{"admissionsMale": 7, "witMeetings": true})
	require.NoError(t, err)
	assert.Equal(t, 7, r.AdmissionsMale)
	assert.Nil(t, be.stored[key])

	saved, err := ws.Save(ctx, key)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.LastSaved)
	assert.Equal(t, 7, be.stored[key].AdmissionsMale)

	submitted, err := ws.Submit(ctx, key, "")
	require.NoError(t, err)
	assert.Equal(t, report.StatusSubmitted, submitted.Status)

	_, err = ws.Update(ctx, key, map[string]any{"admissionsMale": 8})
	assert.ErrorIs(t, err, report.ErrEditLocked)
}

func TestWorkspace_UpdateIsAllOrNothing(t *testing.T) {
	svc, _, _ := newTestService()
	ws := NewWorkspace(svc)
	ctx := context.Background()

	_, err := ws.Update(ctx, key, map[string]any{"discharges": 3, "bedOccupancyRate": 140.0})
	require.Error(t, err)

	r, _, err := ws.Open(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, r.Discharges)
	assert.Zero(t, r.BedOccupancyRate)
}

func TestWorkspace_UnknownField(t *testing.T) {
	svc, _, _ := newTestService()
	ws := NewWorkspace(svc)

	_, err := ws.Update(context.Background(), key, map[string]any{"favouriteColour": "blue"})
	assert.ErrorIs(t, err, report.ErrUnknownField)
}

func TestWorkspace_ReloadDiscardsEdits(t *testing.T) {
	svc, _, _ := newTestService()
	ws := NewWorkspace(svc)
	ctx := context.Background()

	_, err := ws.Update(ctx, key, map[string]any{"missing": 2})
	require.NoError(t, err)

	r, _, err := ws.Reload(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, r.Missing)
}

func TestWorkspace_EditRefusedWhileSaveInFlight(t *testing.T) {
	svc, be, _ := newTestService()
	be.saveGate = make(chan struct{})
	ws := NewWorkspace(svc)
	ctx := context.Background()

	_, err := ws.Update(ctx, key, map[string]any{"discharges": 4})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ws.Save(ctx, key)
		done <- err
	}()
	require.Eventually(t, func() bool { return svc.Busy(key) }, time.Second, 5*time.Millisecond)

	_, err = ws.Update(ctx, key, map[string]any{"discharges": 9})
	assert.ErrorIs(t, err, report.ErrEditLocked)
	_, err = ws.Save(ctx, key)
	assert.ErrorIs(t, err, ErrBusy)

	close(be.saveGate)
	require.NoError(t, <-done)

	r, _, err := ws.Open(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Discharges)
	assert.Equal(t, 4, be.stored[key].Discharges)
}

func TestWorkspace_UpdateAfterDiscardReloads(t *testing.T) {
	svc, _, _ := newTestService()
	ws := NewWorkspace(svc)
	ctx := context.Background()

	_, err := ws.Update(ctx, key, map[string]any{"missing": 2})
	require.NoError(t, err)
	ws.Discard(key)

	r, err := ws.Update(ctx, key, map[string]any{"discharges": 1})
	require.NoError(t, err)
	assert.Zero(t, r.Missing)
	assert.Equal(t, 1, r.Discharges)
}

func TestWorkspace_ConcurrentUpdateAndDiscard(t *testing.T) {
	svc, _, _ := newTestService()
	ws := NewWorkspace(svc)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ws.Discard(key)
		}()
		go func(n int) {
			defer wg.Done()
			_, err := ws.Update(ctx, key, map[string]any{"discharges": n})
			if err != nil {
				assert.ErrorIs(t, err, ErrDiscarded)
			}
		}(i)
	}
	wg.Wait()
}
