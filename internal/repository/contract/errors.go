package contract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

type ErrorKind string

const (
	ErrorKindOther       ErrorKind = "other"
	ErrorKindAuth        ErrorKind = "auth"
	ErrorKindConflict    ErrorKind = "conflict"
	ErrorKindUnavailable ErrorKind = "unavailable"
)

// DBError tags a persistence failure with a kind callers can branch on.
type DBError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *DBError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *DBError) Unwrap() error { return e.Err }

// Classify wraps err with the kind derived from its SQLSTATE. Nil stays nil.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *DBError
	if errors.As(err, &existing) {
		return err
	}
	return &DBError{Kind: kindFromError(err), Op: op, Err: err}
}

func kindFromError(err error) ErrorKind {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "28"), pgErr.Code == "42501":
			// invalid authorization / insufficient_privilege
			return ErrorKindAuth
		case pgErr.Code == "23505":
			return ErrorKindConflict
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return ErrorKindUnavailable
		}
		return ErrorKindOther
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return ErrorKindUnavailable
	}
	return ErrorKindOther
}

func KindOf(err error) ErrorKind {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}
	return ErrorKindOther
}

func IsAuth(err error) bool {
	return KindOf(err) == ErrorKindAuth
}
