package postgres

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/boat_booking/internal/repository"
	"github.com/Freeeeeet/boat_booking/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements repository.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	db   base.DBTX
	inTx bool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, db: pool}
}

// WithTx runs fn inside a transaction. Nested calls reuse the open transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &Store{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) Routes() repository.RouteRepository {
	return &RouteRepository{base.NewRepository(s.db)}
}

func (s *Store) Boats() repository.BoatRepository {
	return &BoatRepository{base.NewRepository(s.db)}
}

func (s *Store) Schedules() repository.ScheduleRepository {
	return &ScheduleRepository{base.NewRepository(s.db)}
}

func (s *Store) Bookings() repository.BookingRepository {
	return &BookingRepository{base.NewRepository(s.db)}
}

func (s *Store) Payments() repository.PaymentRepository {
	return &PaymentRepository{base.NewRepository(s.db)}
}
