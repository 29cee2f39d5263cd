package errors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// IsRetryableTx reports whether a transaction failed because of a concurrent
// conflicting write and can be replayed from scratch.
func IsRetryableTx(err error) bool {
	if err == nil {
		return false
	}
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return isRetryableState(pgxErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isRetryableState(string(pqErr.Code))
	}
	return false
}

func isRetryableState(code string) bool {
	return code == sqlStateSerializationFailure || code == sqlStateDeadlockDetected
}
