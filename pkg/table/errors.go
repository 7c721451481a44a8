package table

import (
	"errors"
	"fmt"
)

// ErrDataIntegrity marks malformed or empty input tables.
var ErrDataIntegrity = errors.New("data integrity violation")

// DataIntegrityError describes which table, column and row failed a check.
type DataIntegrityError struct {
	Op     string // operation that rejected the data, e.g. "build", "drop_nans"
	Table  string
	Column string
	Row    int // -1 when not row specific
	Reason string
}

// Error implements the error interface.
func (e *DataIntegrityError) Error() string {
	switch {
	case e.Column != "" && e.Row >= 0:
		return fmt.Sprintf("%s %s: column %s row %d: %s", e.Op, e.Table, e.Column, e.Row, e.Reason)
	case e.Column != "":
		return fmt.Sprintf("%s %s: column %s: %s", e.Op, e.Table, e.Column, e.Reason)
	case e.Row >= 0:
		return fmt.Sprintf("%s %s: row %d: %s", e.Op, e.Table, e.Row, e.Reason)
	default:
		return fmt.Sprintf("%s %s: %s", e.Op, e.Table, e.Reason)
	}
}

// Unwrap returns ErrDataIntegrity so callers can use errors.Is.
func (e *DataIntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

// IntegrityError builds a DataIntegrityError that is not row specific.
func IntegrityError(op, table, column, reason string) error {
	return &DataIntegrityError{Op: op, Table: table, Column: column, Row: -1, Reason: reason}
}
