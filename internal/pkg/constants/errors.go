package constants

import (
	"fmt"
	"net/http"
	"strings"
)

// CodedError is a sentinel carrying the HTTP status the API answers with.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string { return e.msg }

func (e *CodedError) Code() int { return e.code }

var (
	ErrLoad             = NewCodedError(http.StatusBadGateway, "source cannot be loaded")
	ErrSchema           = NewCodedError(http.StatusUnprocessableEntity, "expected column is missing")
	ErrDateParse        = NewCodedError(http.StatusUnprocessableEntity, "date cannot be parsed")
	ErrEmptyGroup       = NewCodedError(http.StatusUnprocessableEntity, "mean over empty group")
	ErrInvalidCount     = NewCodedError(http.StatusBadRequest, "invalid row count")
	ErrDuplicateEntry   = NewCodedError(http.StatusUnprocessableEntity, "duplicate pivot entry")
	ErrDatasetNotLoaded = NewCodedError(http.StatusServiceUnavailable, "dataset is not loaded")
	ErrInsightNotFound  = NewCodedError(http.StatusNotFound, "insight task not found")
	ErrUnauthorized     = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrDatePolicyUnset  = NewCodedError(http.StatusInternalServerError, "date policy must be set explicitly")
	ErrBadRequest       = NewCodedError(http.StatusBadRequest, "bad request")
	ErrShortSeries      = NewCodedError(http.StatusUnprocessableEntity, "at least two observations are required")
	ErrInsightDisabled  = NewCodedError(http.StatusServiceUnavailable, "insight generator is not configured")
)

// LoadError reports a source that could not be opened, fetched or parsed.
// Line is the 1-based source line, zero when the whole source failed.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// SchemaError lists every expected column absent from a source or table.
type SchemaError struct {
	Source  string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing columns: %s", e.Source, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// DateParseError is raised per record. Row is the 0-based record index.
type DateParseError struct {
	Row   int
	Value string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q", e.Row, e.Value)
}

func (e *DateParseError) Unwrap() error { return ErrDateParse }

type EmptyGroupError struct {
	Key    []string
	Column string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("mean of %s over empty group (%s)", e.Column, strings.Join(e.Key, ", "))
}

func (e *EmptyGroupError) Unwrap() error { return ErrEmptyGroup }

type InvalidCountError struct {
	N int
}

func (e *InvalidCountError) Error() string {
	return fmt.Sprintf("top-n count must be positive, got %d", e.N)
}

func (e *InvalidCountError) Unwrap() error { return ErrInvalidCount }

type DuplicateEntryError struct {
	Index  []string
	Column string
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate entry for (%s) in column %q", strings.Join(e.Index, ", "), e.Column)
}

func (e *DuplicateEntryError) Unwrap() error { return ErrDuplicateEntry }
