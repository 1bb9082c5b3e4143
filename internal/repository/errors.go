package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a conditional update lost its precondition race
	// (e.g. the service left "open" between read and write).
	ErrConflict = errors.New("state conflict")

	// ErrDuplicate maps the storage-level unique constraint (rating
	// uniqueness, one application per assembler per service).
	ErrDuplicate = errors.New("duplicate record")
)

// isUniqueViolation classifies constraint errors from both backends:
// PostgreSQL reports SQLSTATE 23505, the SQLite driver a message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
