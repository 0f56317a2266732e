package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/model"
	"go.uber.org/zap"
)

// SeatReconciler reports schedules whose seat counter drifted from their bookings.
type SeatReconciler interface {
	ReconcileSeats(ctx context.Context) ([]model.SeatDrift, error)
}

// Scheduler runs the periodic seat reconciliation report.
type Scheduler struct {
	reconciler SeatReconciler
	interval   time.Duration
	logger     *zap.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewScheduler(reconciler SeatReconciler, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the background task. A non-positive interval disables it.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info("Seat reconciliation disabled")
		close(s.done)
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("reconcile_interval", s.interval))
	go s.runReconcileTask(ctx)
}

// Stop ends the background task and waits for it to return.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	<-s.done
}

func (s *Scheduler) runReconcileTask(ctx context.Context) {
	defer close(s.done)

	s.Reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Reconcile(ctx)
		case <-s.stopChan:
			s.logger.Info("Seat reconciliation stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Seat reconciliation cancelled")
			return
		}
	}
}

// Reconcile runs one pass and logs every drift found. It never changes data.
func (s *Scheduler) Reconcile(ctx context.Context) []model.SeatDrift {
	drifts, err := s.reconciler.ReconcileSeats(ctx)
	if err != nil {
		s.logger.Error("Seat reconciliation failed", zap.Error(err))
		return nil
	}

	for _, d := range drifts {
		s.logger.Warn("Seat counter drift",
			zap.Int64("schedule_id", d.ScheduleID),
			zap.Time("departure_time", d.DepartureTime),
			zap.Int("capacity", d.Capacity),
			zap.Int("available_seats", d.AvailableSeats),
			zap.Int("booked_seats", d.BookedSeats),
			zap.Int("delta", d.Delta()),
		)
	}
	s.logger.Info("Seat reconciliation completed", zap.Int("drifted_schedules", len(drifts)))
	return drifts
}
