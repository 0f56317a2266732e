package base

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolationCode = "23505"

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository is embedded by table repositories; db is either the pool or the current transaction.
type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) Repository {
	return Repository{db: db}
}

// DB returns the executor bound to this repository.
func (r Repository) DB() DBTX {
	return r.db
}

// ExecAffected runs a command and returns the number of affected rows.
func (r Repository) ExecAffected(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// IsNotFound reports whether err is "no rows in result set".
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err violates the named unique constraint,
// or any unique constraint when constraint is empty.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolationCode {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// Where accumulates AND-ed conditions with numbered placeholders.
type Where struct {
	clauses []string
	args    []any
}

// Add appends a condition; every "?" in clause becomes the next $n placeholder.
func (w *Where) Add(clause string, args ...any) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
}

// SQL returns the WHERE clause, or an empty string when there are no conditions.
func (w *Where) SQL() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}

// Next returns the placeholder for an argument appended after the conditions.
func (w *Where) Next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}
