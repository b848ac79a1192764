package repos

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is the repo-level sentinel for missing rows.
	ErrNotFound = errors.New("not found")
	// ErrConflict maps Postgres unique violations (e.g. duplicate contact
	// email per owner) for handler-level 409s.
	ErrConflict = errors.New("conflict")
)

const pgUniqueViolation = "23505"

// MapError normalizes gorm/pgx errors to repo sentinels, passing everything
// else through untouched.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrConflict
	}
	return err
}
