package models

import "errors"

// Custom errors
var (
	ErrEmptyTable     = errors.New("table is empty")
	ErrEmptySeries    = errors.New("series is empty")
	ErrLengthMismatch = errors.New("prediction and target lengths differ")
	ErrShapeMismatch  = errors.New("feature column count mismatch")
	ErrNonFiniteValue = errors.New("non-finite value in features or target")
	ErrUnorderedDates = errors.New("rows are not strictly ordered by date")
	ErrNoInstruments  = errors.New("instrument list is empty")
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key violation")
)
