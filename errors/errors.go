package errors

import (
	"errors"
	"fmt"
)

// Category errors. Field-level errors below wrap one of these so callers
// can match with errors.Is at either granularity.
var (
	ErrValidation    = fmt.Errorf("validation error")
	ErrIntegrity     = fmt.Errorf("integrity error")
	ErrEmptyDataset  = fmt.Errorf("empty dataset")
	ErrInvalidRange  = fmt.Errorf("invalid range")
	ErrDataNotLoaded = fmt.Errorf("data not loaded")
)

// Define specific error types for better error handling
var (
	ErrInvalidFieldCount = fmt.Errorf("%w: invalid field count", ErrValidation)
	ErrInvalidID         = fmt.Errorf("%w: invalid identifier", ErrValidation)
	ErrInvalidDate       = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidStartTime  = fmt.Errorf("%w: invalid start time", ErrValidation)
	ErrInvalidEndTime    = fmt.Errorf("%w: invalid end time", ErrValidation)
	ErrInvalidDuration   = fmt.Errorf("%w: invalid duration", ErrValidation)
	ErrStartAfterEnd     = fmt.Errorf("%w: start time not before end time", ErrValidation)
	ErrDurationMismatch  = fmt.Errorf("%w: duration inconsistent with start/end times", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidCurrency   = fmt.Errorf("%w: invalid currency code", ErrValidation)
	ErrDuplicateID       = fmt.Errorf("%w: duplicate identifier", ErrValidation)
	ErrEmptyName         = fmt.Errorf("%w: empty name", ErrValidation)
	ErrMissingHourlyRate = fmt.Errorf("%w: missing hourly rate", ErrValidation)
	ErrUnknownAgent      = fmt.Errorf("%w: unknown agent reference", ErrIntegrity)
	ErrUnknownMetric     = fmt.Errorf("%w: unknown metric", ErrValidation)
)

// RowError wraps a specific error with context about where in the source
// table it occurred.
type RowError struct {
	Line   int
	Record []string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// Category maps an error to its taxonomy label, used as a metric
// dimension.
func Category(err error) string {
	switch {
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrEmptyDataset):
		return "empty_dataset"
	case errors.Is(err, ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, ErrDataNotLoaded):
		return "not_loaded"
	default:
		return "other"
	}
}
