package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrTableMissing = errors.New("table missing")
)

// ValidationError maps field names to the rule they failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func invalid(field, rule string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

// fromValidator converts validator/v10 output into a ValidationError keyed by json field name.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = fe.Tag()
	}
	return out
}

// dbError classifies a gorm error for the given table. Missing tables become
// ErrTableMissing with a hint to run migrations, unique violations become
// ErrConflict. Record-not-found and malformed uuid keys become ErrNotFound.
func dbError(table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) || isMalformedKey(err) {
		return fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	if isMissingTable(err) {
		return fmt.Errorf("%w: %s does not exist, run database migrations (AUTO_MIGRATE=true): %v", ErrTableMissing, table, err)
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", table, ErrConflict)
	}
	return fmt.Errorf("%s: %w", table, err)
}

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"))
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate key")
}

// isMalformedKey reports postgres rejecting a value for a typed column, which
// here means a path id that is not a uuid.
func isMalformedKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
