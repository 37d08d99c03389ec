package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/371050/study-pwa/internal/domain"
	"github.com/371050/study-pwa/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// uniqueIndexErrors maps the columns or index names of each unique
// constraint to the store error reported for it. SQLite reports columns
// ("reviews.review_no"), PostgreSQL reports the index name.
var uniqueIndexErrors = []struct {
	sqliteColumn string
	pgIndex      string
	err          error
}{
	{"reviews.review_no", "reviews_unit_no_key", store.ErrReviewNoExists},
	{"reviews.done_date", "reviews_unit_date_key", store.ErrReviewDateExists},
	{"units.unit_code", "units_subject_code_key", store.ErrUnitCodeExists},
	{"subjects.name", "subjects_name_key", store.ErrSubjectNameExists},
}

// MapError maps a database error to the matching store error, wrapping the
// original so the driver detail survives for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", uniqueError(pgErr.ConstraintName, ""), err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidReference, pgErr.ConstraintName, err)
		case checkViolationCode, notNullViolationCode:
			return fmt.Errorf("%w: constraint violation (%s): %v",
				domain.ErrValidation, pgErr.ConstraintName, err)
		}
		return err
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.Code == sqlite3.ErrConstraint {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %v", uniqueError("", liteErr.Error()), err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: foreign key violation: %v", store.ErrInvalidReference, err)
		default:
			return fmt.Errorf("%w: constraint violation: %v", domain.ErrValidation, err)
		}
	}

	return err
}

func uniqueError(pgIndex, sqliteMessage string) error {
	for _, u := range uniqueIndexErrors {
		if pgIndex != "" && pgIndex == u.pgIndex {
			return u.err
		}
		if sqliteMessage != "" && strings.Contains(sqliteMessage, u.sqliteColumn) {
			return u.err
		}
	}
	return store.ErrDuplicate
}

// IsUniqueViolation reports whether err is a unique constraint violation from
// either engine.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
