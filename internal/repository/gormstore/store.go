// Package gormstore implements the repositories with GORM. It backs the
// embedded SQLite mode and runs the same contract as the pgx store.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/boat_booking/internal/repository"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19
)

// Store implements repository.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) Routes() repository.RouteRepository       { return &routeRepository{db: store.db} }
func (store *Store) Boats() repository.BoatRepository         { return &boatRepository{db: store.db} }
func (store *Store) Schedules() repository.ScheduleRepository { return &scheduleRepository{db: store.db} }
func (store *Store) Bookings() repository.BookingRepository   { return &bookingRepository{db: store.db} }
func (store *Store) Payments() repository.PaymentRepository   { return &paymentRepository{db: store.db} }

type sqlSum struct {
	Total int64
}

func now() time.Time {
	return time.Now().UTC()
}

func isUniqueConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
