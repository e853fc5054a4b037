package exchange

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecordFormat marks a line that does not match its kind's
	// line pattern.
	ErrInvalidRecordFormat = errors.New("invalid record format")

	// ErrInvalidFieldValue marks a field that failed a business or
	// referential rule.
	ErrInvalidFieldValue = errors.New("invalid field value")

	// ErrInflation marks a line whose sub-fields could not be parsed.
	ErrInflation = errors.New("record inflation failed")
)

// FormatError reports a line rejected by the line pattern. Record is
// 1-based and counts the header.
type FormatError struct {
	Record int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("Invalid record format at line %d", e.Record)
}

func (e *FormatError) Unwrap() error { return ErrInvalidRecordFormat }

// FieldError reports the first failed validation rule of a record.
type FieldError struct {
	Field  string
	Record int
	Value  string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("Invalid value for '%s' at record %d : %s", e.Field, e.Record, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrInvalidFieldValue }

// InflationError wraps a parse failure of a line that matched its pattern.
// Record is 0 when the line was inflated outside an import.
type InflationError struct {
	Record int
	Line   string
	Err    error
}

func (e *InflationError) Error() string {
	if e.Record > 0 {
		return fmt.Sprintf("cannot inflate record %d: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("cannot inflate record: %v", e.Err)
}

func (e *InflationError) Unwrap() []error { return []error{ErrInflation, e.Err} }
