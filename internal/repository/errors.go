package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrStaleStatus reports a conditional status update that matched no row:
// the aggregate's status changed after the caller read it.
var ErrStaleStatus = errors.New("status changed concurrently")

// IsUniqueViolation recognizes duplicate-key failures from both backing
// stores: pgconn error code 23505 on Postgres, message matching on SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
