package db

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Kind is the storage-failure taxonomy the engines branch on. The decision is
// made here, at the storage boundary, so callers never inspect message text.
type Kind int

const (
	KindNone Kind = iota
	KindCollectionAbsent
	KindColumnAbsent
	KindPermissionDenied
	KindUnclassified
)

const (
	pgUndefinedTable     = "42P01"
	pgUndefinedColumn    = "42703"
	pgInsufficientPrivil = "42501"
)

var (
	missingTableRe  = regexp.MustCompile(`(?i)relation .* does not exist|no such table`)
	missingColumnRe = regexp.MustCompile(`(?i)column .* does not exist|has no column named|no such column`)
	deniedRe        = regexp.MustCompile(`(?i)permission denied|row.level security|not allowed`)
)

// Classify maps a storage error onto the taxonomy. Driver error codes are
// authoritative; the message patterns only cover drivers that expose no code
// (the sqlite test dialect among them).
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	if code := sqlState(err); code != "" {
		switch code {
		case pgUndefinedTable:
			return KindCollectionAbsent
		case pgUndefinedColumn:
			return KindColumnAbsent
		case pgInsufficientPrivil:
			return KindPermissionDenied
		}
		return KindUnclassified
	}

	msg := err.Error()
	switch {
	case missingTableRe.MatchString(msg):
		return KindCollectionAbsent
	case missingColumnRe.MatchString(msg):
		return KindColumnAbsent
	case deniedRe.MatchString(msg):
		return KindPermissionDenied
	}
	return KindUnclassified
}

// IsColumnAbsent reports whether err is a missing-column failure naming col.
// Used to keep the tenant-column fallback from masking unrelated drift.
func IsColumnAbsent(err error, col string) bool {
	if Classify(err) != KindColumnAbsent {
		return false
	}
	if col == "" {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), strings.ToLower(col))
}

// IsUniqueViolation reports whether the provided error references a unique or
// exclusion constraint. When constraintName is provided the match is exact.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if code := sqlState(err); code == "23505" || code == "23P01" {
		if constraintName == "" {
			return true
		}
		return strings.Contains(err.Error(), constraintName)
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}

func sqlState(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
