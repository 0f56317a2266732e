package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type countingReconciler struct {
	calls  atomic.Int32
	drifts []model.SeatDrift
	err    error
}

func (r *countingReconciler) ReconcileSeats(context.Context) ([]model.SeatDrift, error) {
	r.calls.Add(1)
	return r.drifts, r.err
}

func TestSchedulerReconcileLogsDrift(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	reconciler := &countingReconciler{drifts: []model.SeatDrift{
		{ScheduleID: 3, Capacity: 10, AvailableSeats: 4, BookedSeats: 3},
	}}
	s := NewScheduler(reconciler, time.Hour, zap.New(core))

	drifts := s.Reconcile(context.Background())
	require.Len(t, drifts, 1)

	warned := logs.FilterMessage("Seat counter drift").All()
	require.Len(t, warned, 1)
	require.EqualValues(t, 3, warned[0].ContextMap()["delta"])
	require.EqualValues(t, 3, warned[0].ContextMap()["schedule_id"])
}

func TestSchedulerReconcileError(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	s := NewScheduler(&countingReconciler{err: errors.New("db down")}, time.Hour, zap.New(core))

	require.Nil(t, s.Reconcile(context.Background()))
	require.Equal(t, 1, logs.FilterMessage("Seat reconciliation failed").Len())
}

func TestSchedulerRunsUntilStopped(t *testing.T) {
	t.Parallel()

	reconciler := &countingReconciler{}
	s := NewScheduler(reconciler, 10*time.Millisecond, zaptest.NewLogger(t))
	s.Start(context.Background())

	require.Eventually(t, func() bool { return reconciler.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()
	s.Stop()

	calls := reconciler.calls.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, calls, reconciler.calls.Load())
}

func TestSchedulerDisabled(t *testing.T) {
	t.Parallel()

	reconciler := &countingReconciler{}
	s := NewScheduler(reconciler, 0, zaptest.NewLogger(t))
	s.Start(context.Background())
	s.Stop()
	require.Zero(t, reconciler.calls.Load())
}
