package base

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestWhereNumbersPlaceholdersInOrder(t *testing.T) {
	t.Parallel()

	var where Where
	require.Empty(t, where.SQL())

	where.Add("s.status = ?", "active")
	where.Add("s.departure_time >= ? AND s.departure_time < ?", 1, 2)
	where.Add("(b.name ILIKE ? OR r.departure_port ILIKE ?)", "%x%", "%x%")
	limit := where.Next(15)

	require.Equal(t,
		"WHERE s.status = $1 AND s.departure_time >= $2 AND s.departure_time < $3 AND (b.name ILIKE $4 OR r.departure_port ILIKE $5)",
		where.SQL())
	require.Equal(t, "$6", limit)
	require.Equal(t, []any{"active", 1, 2, "%x%", "%x%", 15}, where.Args())
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	require.True(t, IsNotFound(fmt.Errorf("get schedule: %w", pgx.ErrNoRows)))
	require.False(t, IsNotFound(errors.New("boom")))

	conflict := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bookings_booking_code_key"})
	require.True(t, IsUniqueViolation(conflict, ""))
	require.True(t, IsUniqueViolation(conflict, "bookings_booking_code_key"))
	require.False(t, IsUniqueViolation(conflict, "other_key"))
	require.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
}
